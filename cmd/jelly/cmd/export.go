package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/internal/wire"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <stream-id> [file]",
	Short: "Write a stored stream as length-delimited Jelly frames",
	Long: `Writes every frame of a stored stream to a file (or stdout when the
file is omitted or "-") in the delimited Jelly format: each frame is
prefixed by its varint-encoded length.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Store a length-delimited Jelly file as a new stream",
	Long: `Reads delimited Jelly frames from a file (or stdin when the file is
omitted or "-") and stores them unchanged as a new stream. The stream id is
printed on success.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("name", "", "Stream name (defaults to the stream name in the options row, then the file name)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	id, err := parseStreamID(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 2 && args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)

	frames := 0
	err = a.store.ForEachFrame(id, func(frame jelly.Frame) error {
		frames++
		return wire.WriteDelimited(bw, frame)
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	a.log.Info("stream exported", zap.Stringer("stream", id), zap.Int("frames", frames))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	in := io.Reader(cmd.InOrStdin())
	source := "stdin"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in, source = f, args[0]
	}
	br := bufio.NewReader(in)

	// The stream record is created from the first frame's options row.
	first, err := wire.ReadDelimited(br)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: no frames", source)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	meta := store.StreamMeta{Name: filepath.Base(source)}
	if len(first.Rows) > 0 {
		if o, ok := first.Rows[0].(*jelly.StreamOptions); ok {
			meta.PhysicalType = o.PhysicalType.String()
			meta.LogicalType = o.LogicalType.String()
			if o.StreamName != "" {
				meta.Name = o.StreamName
			}
		}
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		meta.Name = name
	}

	id, err := a.store.CreateStream(meta)
	if err != nil {
		return err
	}
	frames, frame := 0, first
	for {
		if err := a.store.AppendFrame(id, frame); err != nil {
			return cleanupStream(a, id, err)
		}
		frames++
		frame, err = wire.ReadDelimited(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cleanupStream(a, id, fmt.Errorf("%s: frame %d: %w", source, frames+1, err))
		}
	}

	a.log.Info("stream imported", zap.Stringer("stream", id), zap.String("source", source), zap.Int("frames", frames))
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

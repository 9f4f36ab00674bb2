package cmd

import (
	"fmt"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/store"
	"github.com/aleksaelezovic/jelly/pkg/transcoding"
)

var transcodeCmd = &cobra.Command{
	Use:   "transcode <stream-id> [stream-id...]",
	Short: "Rewrite stored streams into a new stream with different options",
	Long: `Concatenates one or more stored streams and rewrites them into a
single new stream using the configured (or --preset) lookup table sizes.
Terms are remapped between ID spaces without being decoded. All inputs must
share the physical type of the first one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranscode,
}

func init() {
	transcodeCmd.Flags().String("preset", "", "Output options preset (overrides the config): "+strings.Join(jelly.PresetNames(), ", "))
	transcodeCmd.Flags().String("name", "", "Name of the new stream")
	rootCmd.AddCommand(transcodeCmd)
}

func runTranscode(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)

	inputs := make([]store.StreamInfo, 0, len(args))
	for _, arg := range args {
		id, err := parseStreamID(arg)
		if err != nil {
			return err
		}
		info, err := a.store.Stream(id)
		if err != nil {
			return err
		}
		inputs = append(inputs, info)
	}

	opts, err := streamOptions(cmd, a)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = inputs[0].Name + " (transcoded)"
	}

	out, err := a.store.CreateStream(store.StreamMeta{
		Name:         name,
		PhysicalType: inputs[0].PhysicalType,
		LogicalType:  inputs[0].LogicalType,
		Labels:       map[string]string{"source": inputs[0].ID.String()},
	})
	if err != nil {
		return err
	}

	w := a.store.NewFrameWriter(out, a.cfg.Frames.MaxRows)
	tc, err := transcoding.New(transcoding.Config{Output: opts, Logger: a.log}, w)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		if err := a.store.ForEachFrame(in.ID, tc.IngestFrame); err != nil {
			return cleanupStream(a, out, fmt.Errorf("stream %s: %w", in.ID, err))
		}
	}
	if err := w.Flush(); err != nil {
		return cleanupStream(a, out, err)
	}

	info, err := a.store.Stream(out)
	if err != nil {
		return err
	}
	a.log.Info("stream transcoded",
		zap.Stringer("stream", out),
		zap.Int("inputs", len(inputs)),
		zap.Stringer("options", tc.Options()),
		zap.Uint64("frames", info.Frames),
		zap.Uint64("rows", info.Rows))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// cleanupStream removes a partially written stream and returns cause.
func cleanupStream(a *app, id ksuid.KSUID, cause error) error {
	if err := a.store.DeleteStream(id); err != nil {
		a.log.Warn("failed to remove incomplete stream", zap.Stringer("stream", id), zap.Error(err))
	}
	return cause
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/pkg/decoding"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/rdf"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <stream-id>",
	Short: "Decode a stored stream to N-Quads on stdout",
	Long: `Decodes every frame of a stored stream and writes the statements as
N-Quads. Triples are written without a graph label; GRAPHS streams are
flattened into quads.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().String("logical", "", "Require this logical stream type (or a subtype of it)")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	id, err := parseStreamID(args[0])
	if err != nil {
		return err
	}
	logicalFlag, _ := cmd.Flags().GetString("logical")
	logical, err := jelly.ParseLogicalStreamType(logicalFlag)
	if err != nil {
		return err
	}

	h := &nquadsHandler{w: rdf.NewNQuadsWriter(cmd.OutOrStdout()), log: a.log}
	opts, err := decodeStream(a, id, h, decoding.Config{ExpectedLogicalType: logical})
	if ferr := h.w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return fmt.Errorf("stream %s: %w", id, err)
	}

	fields := []zap.Field{zap.Stringer("stream", id), zap.Int("statements", h.statements)}
	if opts != nil {
		fields = append(fields, zap.Stringer("options", opts))
	}
	a.log.Info("stream decoded", fields...)
	return nil
}

package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List stored streams",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		streams, err := a.store.Streams()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := gojson.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(streams)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPHYSICAL\tLOGICAL\tFRAMES\tROWS\tBYTES\tCREATED")
		for _, s := range streams {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				s.ID, s.Name, s.PhysicalType, s.LogicalType,
				s.Frames, s.Rows, s.Bytes, s.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <stream-id>...",
	Short: "Delete stored streams and their frames",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		for _, arg := range args {
			id, err := parseStreamID(arg)
			if err != nil {
				return err
			}
			if err := a.store.DeleteStream(id); err != nil {
				return err
			}
			a.log.Info("stream deleted", zap.Stringer("stream", id))
		}
		return nil
	},
}

func init() {
	streamsCmd.Flags().Bool("json", false, "Print the stream records as JSON")
	rootCmd.AddCommand(streamsCmd)
	rootCmd.AddCommand(deleteCmd)
}

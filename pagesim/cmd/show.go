package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/tracing"
)

func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show <db.sqlite3>",
		Short: "Print the replays recorded in a database.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}

			reader := datarecording.NewReader(args[0])
			defer reader.Close()

			reader.MapTable(tracing.RankingTable, tracing.RankingEntry{})

			file, _ := cmd.Flags().GetString("file")

			return showRuns(cmd.Context(), cmd, reader, file)
		},
	}

	showCmd.Flags().String("file", "", "Only show the runs of this file")

	return showCmd
}

func showRuns(
	ctx context.Context,
	cmd *cobra.Command,
	reader datarecording.DataReader,
	file string,
) error {
	params := datarecording.QueryParams{OrderBy: "File, Position"}
	if file != "" {
		params.Where = "File = ?"
		params.Args = []any{file}
	}

	rankings, _, err := reader.Query(ctx, tracing.RankingTable, params)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tRANK\tPOLICY\tFAULTS")

	for _, r := range rankings {
		entry := r.(*tracing.RankingEntry)
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n",
			entry.File, entry.Position, entry.Policy, entry.Faults)
	}

	return tw.Flush()
}

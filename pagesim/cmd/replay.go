package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/config"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/simulation"
)

func newReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay [files...]",
		Short: "Replay request files and rank the policies.",
		Long: "`replay` reads each request file, replays it with every " +
			"selected policy and prints the annotated references and the " +
			"ranking. Files that cannot be read or parsed are logged and " +
			"skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			b, err := makeBuilder(cmd, c)
			if err != nil {
				return err
			}

			s, err := b.Build()
			if err != nil {
				return err
			}

			results := s.Run(args)

			if err := s.Terminate(); err != nil {
				return err
			}

			return failedFiles(results)
		},
	}

	addReplayFlags(replayCmd)

	return replayCmd
}

func addReplayFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("policy", nil,
		"Policies to replay, any of FIFO, LRU, OPT (default all)")
	cmd.Flags().String("db", "",
		"Record the replays into <db>.sqlite3")
	cmd.Flags().String("trace", "",
		"Write every reference into <trace>.csv")
	cmd.Flags().String("compress", "none",
		"Compression of the trace file: none, snappy or lz4")
	cmd.Flags().Bool("parallel", false,
		"Replay the files concurrently")
	cmd.Flags().String("log-dir", "logs",
		"Directory of the log file")
	cmd.Flags().Bool("steps", false,
		"Write every reference into the log file")
}

func parsePolicies(names []string) ([]replacement.Kind, error) {
	if len(names) == 0 {
		return replacement.AllKinds(), nil
	}

	kinds := make([]replacement.Kind, 0, len(names))
	for _, name := range names {
		kind, err := replacement.ParseKind(name)
		if err != nil {
			return nil, err
		}

		kinds = append(kinds, kind)
	}

	return kinds, nil
}

func makeBuilder(
	cmd *cobra.Command,
	c *config.Config,
) (simulation.Builder, error) {
	policyNames, _ := cmd.Flags().GetStringSlice("policy")

	kinds, err := parsePolicies(policyNames)
	if err != nil {
		return simulation.Builder{}, err
	}

	b := simulation.MakeBuilder().
		WithPolicies(kinds...).
		WithLogDir(c.LogDir).
		WithOutput(cmd.OutOrStdout())

	if c.Parallel {
		b = b.WithParallel()
	}

	if c.DBPath != "" {
		b = b.WithDatabase(c.DBPath)
	}

	if c.TraceCSV != "" {
		b = b.WithTraceFile(c.TraceCSV, c.Compression())
	}

	if steps, _ := cmd.Flags().GetBool("steps"); steps {
		b = b.WithStepLogging()
	}

	return b, nil
}

func withMonitor(b simulation.Builder, c *config.Config) (
	simulation.Builder,
	*monitoring.Monitor,
) {
	m := monitoring.NewMonitor()
	if c.MonitorPort != 0 {
		m.WithPortNumber(c.MonitorPort)
	}

	return b.WithMonitor(m), m
}

func failedFiles(results []simulation.FileResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed, see the log file",
			failed, len(results))
	}

	return nil
}

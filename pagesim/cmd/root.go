// Package cmd provides the command-line interface of pagesim.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/config"
)

// NewRootCmd creates the pagesim command with all its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagesim",
		Short: "pagesim compares page replacement policies.",
		Long: `pagesim replays request files with the FIFO, LRU and OPT ` +
			`page replacement policies and ranks them by page faults.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("env", "",
		"File with PAGESIM_* variables to load (default .env if present)")

	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShowCmd())

	return rootCmd
}

// Execute runs the pagesim command and exits with 1 on failure.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration from the environment and lets the
// flags that were set on the command line override it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")

	c, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("log-dir") {
		c.LogDir, _ = flags.GetString("log-dir")
	}

	if flags.Changed("db") {
		c.DBPath, _ = flags.GetString("db")
	}

	if flags.Changed("trace") {
		c.TraceCSV, _ = flags.GetString("trace")
	}

	if flags.Changed("compress") {
		c.TraceCompression, _ = flags.GetString("compress")
	}

	if flags.Changed("parallel") {
		c.Parallel, _ = flags.GetBool("parallel")
	}

	if flags.Changed("port") {
		c.MonitorPort, _ = flags.GetInt("port")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/monitoring"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve [files...]",
		Short: "Replay request files and serve the results over HTTP.",
		Long: "`serve` starts the monitor, replays the request files like " +
			"`replay` does and keeps serving the results until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			b, err := makeBuilder(cmd, c)
			if err != nil {
				return err
			}

			b, m := withMonitor(b, c)

			s, err := b.Build()
			if err != nil {
				return err
			}

			url := m.StartServer()
			defer m.StopServer()

			if open, _ := cmd.Flags().GetBool("open"); open {
				if err := monitoring.OpenInBrowser(url); err != nil {
					fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
				}
			}

			s.Run(args)

			if err := s.Terminate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Fprintf(os.Stderr, "Serving %s, press Ctrl+C to stop\n", url)
			<-ctx.Done()

			return nil
		},
	}

	addReplayFlags(serveCmd)
	serveCmd.Flags().Int("port", 0,
		"Port of the monitor (default a free port)")
	serveCmd.Flags().Bool("open", false,
		"Open the monitor in the browser")

	return serveCmd
}

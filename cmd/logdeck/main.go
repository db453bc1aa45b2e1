package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/logdeck/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logdeck: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. The root command runs the viewer.
func newRootCmd() *cobra.Command {
	opts := app.Options{}

	root := &cobra.Command{
		Use:   "logdeck",
		Short: "Live log viewer with level and source filters",
		Long: `logdeck reads log lines from stdin or a file, classifies each line by
severity, pretty-prints JSON lines and keeps the newest lines in memory.

Examples:
  tail -F /var/log/app.log | logdeck
  logdeck --source /var/log/app.log --level error
  kubectl logs -f deploy/api | logdeck serve --listen :9191`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Mode = app.ModeView
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ~/.config/logdeck/config.toml)")
	flags.IntVar(&opts.MaxLines, "max-lines", 0, "number of lines kept in memory (overrides max_lines)")
	flags.StringVarP(&opts.Source, "source", "s", "", `line source: "stdin" or a file path (overrides source)`)
	flags.StringVarP(&opts.Level, "level", "l", "", "initial level filter: all, error, warning, info, debug, success")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the buffer over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Mode = app.ModeServe
			return app.Run(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides listen)")
	root.AddCommand(serve)

	return root
}

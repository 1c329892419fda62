package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/usestring/malort/pkg/mcpsrv"
)

func (a *app) serveCmd() *cobra.Command {
	var dataRoot, logFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the malort MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The server installs its own logger; release the CLI one first.
			if a.logCleanup != nil {
				_ = a.logCleanup()
				a.logCleanup = nil
			}

			opts := []mcpsrv.Option{mcpsrv.WithConfig(a.cfg)}
			if dataRoot != "" {
				opts = append(opts, mcpsrv.WithDataRoot(dataRoot))
			}
			if logFile != "" {
				opts = append(opts, mcpsrv.WithLogFile(logFile))
			}
			if a.logLevel != "" {
				opts = append(opts, mcpsrv.WithLogLevel(a.logLevel))
			}

			server, err := mcpsrv.NewServer(opts...)
			if err != nil {
				return err
			}
			defer server.Close()

			slog.Info("starting malort MCP server on stdio", slog.String("data_root", a.cfg.DataRoot))
			if err := server.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&dataRoot, "data-root", "", "directory the analysis tools may read (default from MALORT_DATA_ROOT)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "log to this file instead of stderr (default from LOG_FILE)")
	return cmd
}

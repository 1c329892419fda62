// Command malort infers per-field statistics and warehouse column types from
// directories of JSON documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/usestring/malort/internal/config"
	"github.com/usestring/malort/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(afero.NewOsFs(), config.Load()).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "malort:", err)
		}
		os.Exit(1)
	}
}

// app carries what every subcommand shares.
type app struct {
	fs  afero.Fs
	cfg *config.Config

	logLevel   string
	logCleanup func() error
}

func newRootCmd(fsys afero.Fs, cfg *config.Config) *cobra.Command {
	a := &app{fs: fsys, cfg: cfg}

	root := &cobra.Command{
		Use:           "malort",
		Short:         "infer field statistics and column types from JSON documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg := logging.FromConfig(a.cfg)
			if a.logLevel != "" {
				logCfg.Level = a.logLevel
			}
			logCfg.Output = cmd.ErrOrStderr()
			cleanup, err := logging.Setup(logCfg)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			a.logCleanup = cleanup
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCleanup != nil {
				return a.logCleanup()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")

	root.AddCommand(
		a.analyzeCmd(),
		a.mergeCmd(),
		a.ddlCmd(),
		a.validateCmd(),
		a.serveCmd(),
	)
	return root
}

// writeTo runs fn against path on the command's filesystem, or against the
// command's stdout when path is empty or "-".
func (a *app) writeTo(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(cmd.OutOrStdout())
	}
	f, err := a.fs.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	slog.Debug("wrote output", slog.String("path", path))
	return f.Close()
}

package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/api"
	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import/export HTTP API",
		Long: `Serve the logbook over HTTP until interrupted.

Routes:
  GET  /healthz
  GET  /api/tables
  GET  /api/export[?format=xlsx]
  POST /api/import?mode=merge|replace|ignore|fail&clear=true&dry_run=true

Example:
  tirelog serve --addr 127.0.0.1:8080 --db ./garage.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				return runServe(opts, s, cmd)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from server.addr)")

	return cmd
}

func runServe(opts *ServeOptions, s *store.Store, cmd *cobra.Command) error {
	cfg := opts.Config.Server
	addr := opts.Addr
	if addr == "" {
		addr = cfg.Addr
	}
	mode, err := transfer.ParseMode(opts.Config.Import.Mode)
	if err != nil {
		return err
	}

	srv := api.NewServer(
		api.Config{
			Addr:            addr,
			AllowedOrigins:  cfg.AllowedOrigins,
			ShutdownTimeout: cfg.ShutdownTimeout,
			DefaultMode:     mode,
		},
		s,
		transfer.NewImporter(s, importerOptions(opts.RootOptions)...),
		transfer.NewExporter(s,
			transfer.WithExportClock(opts.Now),
			transfer.WithVersion(opts.Config.Export.Version),
		),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "server error", err)
	}
	slog.Info("server stopped")
	return nil
}

// Package cli implements the tirelog command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/config"
	"github.com/OscarFredriksson/tire-logger/internal/logging"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigFile string

	// Config is loaded before any subcommand runs.
	Config config.Config

	// Now and IDs override the clock and id generator (for testing).
	Now func() time.Time
	IDs store.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tirelog CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cmd := &cobra.Command{
		Use:   "tirelog",
		Short: "tirelog - tire usage logbook",
		Long: `Track cars, tracks, tires and stints, and move the whole logbook
between machines with JSON exports that merge back in without losing data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides database.path)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default is ./tirelog.yaml)")

	// Add subcommands
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewUsageCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// load reads configuration, applies flag overrides and sets up logging.
func (o *RootOptions) load(cmd *cobra.Command) error {
	home, _ := os.UserHomeDir()
	cfg, err := config.Load(config.New(o.ConfigFile, home))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.Database != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = o.Database
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	logging.Setup(level, cfg.Log.Format, cmd.ErrOrStderr())
	return nil
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured backend.
func (o *RootOptions) openStore(ctx context.Context) (*store.Store, error) {
	var opts []store.Option
	if o.IDs != nil {
		opts = append(opts, store.WithIDGenerator(o.IDs))
	}

	db := o.Config.Database
	var (
		s   *store.Store
		err error
	)
	switch db.Driver {
	case "postgres":
		s, err = store.OpenPostgres(ctx, db.DSN, opts...)
	default:
		s, err = store.Open(db.Path, opts...)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return s, nil
}

// withStore opens the store, runs fn and closes the store. Any error is
// reported through the formatter.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(s *store.Store, f *OutputFormatter) error) error {
	f := o.formatter(cmd)
	s, err := o.openStore(cmd.Context())
	if err != nil {
		return f.Fail(ExitCommandError, err)
	}
	defer s.Close()

	if err := fn(s, f); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Reported {
			return err
		}
		return f.Fail(exitCodeFor(err), err)
	}
	return nil
}

// Execute runs the CLI with signal handling and returns the process exit
// code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		if exitErr == nil {
			return ExitCommandError
		}
		return exitErr.Code
	}
	return ExitSuccess
}

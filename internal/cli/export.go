package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	XLSX bool
}

// ExportSummary is the JSON payload of the export command.
type ExportSummary struct {
	Path   string `json:"path"`
	Tables int    `json:"tables"`
	Rows   int    `json:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the whole logbook to a file",
		Long: `Export every table to a JSON document that "tirelog import" accepts.

Without a file argument the export is written to
tire-logger-export-YYYY-MM-DD.json in the current directory. Use "-" for
stdout. --xlsx writes a spreadsheet with one sheet per table instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runExport(opts, path, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.XLSX, "xlsx", false, "write an Excel workbook")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
		exporter := transfer.NewExporter(s,
			transfer.WithExportClock(opts.Now),
			transfer.WithVersion(opts.Config.Export.Version),
		)
		doc, err := exporter.Export(cmd.Context())
		if err != nil {
			return err
		}

		if path == "" {
			path = transfer.DefaultExportName(opts.Now())
			if opts.XLSX {
				path = strings.TrimSuffix(path, ".json") + ".xlsx"
			}
		}

		write := transfer.WriteJSON
		if opts.XLSX {
			write = transfer.WriteXLSX
		}
		if path == "-" {
			return write(cmd.OutOrStdout(), doc)
		}
		if err := writeFile(path, func(w io.Writer) error { return write(w, doc) }); err != nil {
			return WrapExitError(ExitCommandError, "failed to write export", err)
		}

		summary := ExportSummary{Path: path, Tables: len(doc.Tables), Rows: doc.RowCount()}
		if f.Format == "json" {
			return f.Success(summary)
		}
		fmt.Fprintf(f.Writer, "Exported %d rows from %d tables to %s\n", summary.Rows, summary.Tables, path)
		return nil
	})
}

// writeFile writes through a temp file and renames it into place so a
// failed export never leaves a truncated file behind.
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tirelog-export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/store"
	"github.com/OscarFredriksson/tire-logger/internal/transfer"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Mode   string
	Clear  bool
	DryRun bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an export file into the logbook",
		Long: `Import a tire-logger export (or a bare {"table": [rows]} mapping).

In merge mode, rows whose primary key already exists are updated field by
field: null or empty incoming values never overwrite stored data. Rows that
do not exist are inserted. The whole import is one transaction.

Example:
  tirelog import tire-logger-export-2025-03-15.json
  tirelog import backup.json --mode replace --dry-run
  cat backup.json | tirelog import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "conflict mode: merge|replace|ignore|fail (default from import.mode)")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete existing rows of the imported tables first")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report what would change without saving")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	return opts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
		modeName := opts.Mode
		if modeName == "" {
			modeName = opts.Config.Import.Mode
		}
		mode, err := transfer.ParseMode(modeName)
		if err != nil {
			return err
		}

		raw, err := readInput(cmd, path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read import file", err)
		}
		f.VerboseLog("Read %d bytes from %s", len(raw), path)

		importer := transfer.NewImporter(s, importerOptions(opts.RootOptions)...)
		res, err := importer.ImportJSON(cmd.Context(), raw, transfer.Options{
			Mode:          mode,
			ClearExisting: opts.Clear,
			DryRun:        opts.DryRun,
		})
		if err != nil {
			return err
		}

		if f.Format == "json" {
			return f.Success(res)
		}
		printImportResult(f, path, res)
		return nil
	})
}

func importerOptions(o *RootOptions) []transfer.ImporterOption {
	opts := []transfer.ImporterOption{transfer.WithClock(o.Now)}
	if o.IDs != nil {
		opts = append(opts, transfer.WithImportIDs(o.IDs))
	}
	return opts
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printImportResult(f *OutputFormatter, path string, res *transfer.Result) {
	fmt.Fprintf(f.Writer, "Imported %s (mode %s, import %s)\n", path, res.Mode, res.ImportID)
	for table, n := range res.Cleared {
		f.VerboseLog("Cleared %d rows from %s", n, table)
	}

	rows := make([][]string, 0, len(res.Tables)+1)
	for _, tr := range res.Tables {
		rows = append(rows, countRow(tr.Table, tr))
	}
	rows = append(rows, countRow("total", res.Totals()))
	f.Table([]string{"TABLE", "INSERTED", "UPDATED", "UNCHANGED", "SKIPPED"}, rows)

	if res.DryRun {
		fmt.Fprintln(f.Writer, "Dry run: no changes were saved.")
	}
}

func countRow(name string, tr transfer.TableResult) []string {
	return []string{
		name,
		strconv.Itoa(tr.Inserted),
		strconv.Itoa(tr.Updated),
		strconv.Itoa(tr.Unchanged),
		strconv.Itoa(tr.Skipped),
	}
}

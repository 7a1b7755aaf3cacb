// =============================================================================
// internal/cli/commands.go - Export and import commands
// =============================================================================
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AndrewSav/mktool/internal/export"
	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/output"
	"github.com/AndrewSav/mktool/internal/reconcile"
	"github.com/AndrewSav/mktool/internal/record"
	"github.com/AndrewSav/mktool/internal/watch"
	"github.com/spf13/cobra"
)

// newExportCommand creates the export subcommand
func (a *app) newExportCommand() *cobra.Command {
	var (
		fileFlag   string
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export provisioning configuration from Mikrotik",
		Long: `Read DHCP leases, static DNS entries and WiFi access list entries from the
router and write them as one record per host.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			s, err := a.prepare(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.connect(cmd.Context()); err != nil {
				return err
			}

			snapshot, err := export.Fetch(s.router)
			if err != nil {
				return err
			}
			records, err := export.Records(snapshot, s.log)
			if err != nil {
				return err
			}
			s.log.Info().Int("records", len(records)).Msg("Writing output")

			return writeOutput(fileFlag, func(w io.Writer) error {
				return output.NewFormatter(format).WriteRecords(records, w)
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Write to specified file instead of stdout")
	cmd.Flags().StringVarP(&formatFlag, "format", "o", string(output.FormatCSV), "Export format (csv, toml, yaml, json, table)")

	return cmd
}

// writeOutput runs write against the named file, or stdout when no file is given
func writeOutput(path string, write func(io.Writer) error, stdout io.Writer) error {
	if path == "" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return failure.Wrapf(failure.FileWrite, err, "cannot write to %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return failure.Wrapf(failure.FileWrite, err, "cannot write to %s", path)
	}
	return nil
}

// newImportCommand creates the import subcommand
func (a *app) newImportCommand() *cobra.Command {
	var (
		fileFlag         string
		formatFlag       string
		executeFlag      bool
		continueOnErrors bool
		skipExisting     bool
		watchFlag        bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import (apply) provisioning configuration from file to Mikrotik",
		Long: `Compare the records in a file with the router and create or update the
DHCP leases, static DNS entries and WiFi access list entries they describe.
Runs as a dry run unless --execute is given.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileFlag == "" {
				return usageError("option '--file' is required")
			}
			format, err := importFormat(fileFlag, formatFlag)
			if err != nil {
				return err
			}

			s, err := a.prepare(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			if err := s.connect(ctx); err != nil {
				return err
			}

			if !executeFlag {
				s.report.Printf("DRY RUN\n")
			}

			reconciler := reconcile.New(s.router, reconcile.Options{
				Execute:          executeFlag,
				ContinueOnErrors: continueOnErrors,
				SkipExisting:     skipExisting,
			}, s.report, s.log)

			pass := func(ctx context.Context) error {
				records, err := readRecordFile(fileFlag, format)
				if err != nil {
					return err
				}
				s.log.Info().Int("records", len(records)).Msg("Import pass started")
				_, err = reconciler.Import(ctx, records)
				return err
			}

			if !watchFlag {
				return pass(ctx)
			}
			return watch.New(fileFlag, s.log).
				OnError(func(err error) { s.report.Error("%v", err) }).
				Run(ctx, pass)
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read from specified file")
	cmd.Flags().StringVarP(&formatFlag, "format", "o", "", "Import format (csv, toml, yaml, json), inferred from the file extension by default")
	cmd.Flags().BoolVarP(&executeFlag, "execute", "e", false, "By default this command is run in dry-run mode. Specify this to actually apply changes to Mikrotik")
	cmd.Flags().BoolVarP(&continueOnErrors, "continue-on-errors", "k", false, "Does not stop execution when there was an error writing a record to Mikrotik")
	cmd.Flags().BoolVarP(&skipExisting, "skip-existing", "s", false, "Reduce output verbosity by not printing already existing records that will not be updated")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep running and import again whenever the file changes")

	return cmd
}

func importFormat(path, name string) (output.OutputFormat, error) {
	if name == "" {
		return output.FormatFromExtension(path)
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if format == output.FormatTable {
		return "", usageError("format %s cannot be imported", format)
	}
	return format, nil
}

func readRecordFile(path string, format output.OutputFormat) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.Wrapf(failure.ImportFile, err, "cannot read %s", path)
	}
	defer f.Close()

	records, err := output.NewFormatter(format).ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

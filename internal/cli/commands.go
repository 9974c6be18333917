package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// NewExportCommand builds `patientlog export`. configPath is read when the command runs.
func NewExportCommand(configPath *string) *cobra.Command {
	options := ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's daily logs to a file",
		Long: `Renders the daily logs of one account as csv, json or xlsx.

Example:
  patientlog export --subject auth0|123 --format xlsx --from 2026-01-01 --to 2026-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := OpenRuntime(*configPath)
			if err != nil {
				return err
			}
			defer runtime.Close()

			_, err = RunExport(runtime.Database, options, time.Now().In(runtime.Location), runtime.Location, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&options.Subject, "subject", "", "identity provider subject of the account")
	cmd.Flags().StringVar(&options.Format, "format", "csv", "export format: csv, json or xlsx")
	cmd.Flags().StringVar(&options.Out, "out", "", "output file (defaults to the generated file name)")
	cmd.Flags().StringVar(&options.From, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&options.To, "to", "", "last day to include (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func NewPurgeCommand(configPath *string) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete an account, its records and its stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := OpenRuntime(*configPath)
			if err != nil {
				return err
			}
			defer runtime.Close()

			return RunPurge(cmd.Context(), runtime.Database, runtime.Mirror, subject, runtime.Logger, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "identity provider subject of the account")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/relc/internal/cli/ui"
	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/verify"
)

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Apply the SQLite DDL to a scratch in-memory database",
		Long: `Compile the model for SQLite and execute the generated statements against
an in-memory database inside a transaction that is rolled back. Every
statement must apply and every foreign key must reference a created table.

The configured dialect is ignored: verification always uses SQLite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			opts, err := compileOptions(cfg, dialect.SQLite.String(), logger)
			if err != nil {
				return err
			}
			_, res, err := compileModel(cfg, opts)
			if err != nil {
				return err
			}

			db, err := verify.OpenScratch()
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := verify.NewRunner(db, logger).Apply(cmd.Context(), res.DDL)
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			out := cmd.OutOrStdout()
			summary := ui.NewKeyValueTable(out, noColor)
			summary.AddRow("Statements", fmt.Sprint(report.Statements))
			summary.AddRow("Tables", strings.Join(report.Tables, ", "))
			summary.AddRow("Foreign keys", fmt.Sprint(len(report.ForeignKeys)))
			summary.AddRow("Duration", report.Duration.String())
			summary.Render()

			ui.WriteSuccess(out, "Schema applies cleanly", noColor)
			return nil
		},
	}
}

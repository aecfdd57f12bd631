package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/relc/internal/cli/ui"
	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
)

// validateReport is the --json output of validate
type validateReport struct {
	Valid     bool                  `json:"valid"`
	Dialect   string                `json:"dialect"`
	Lists     int                   `json:"lists"`
	Relations int                   `json:"relations"`
	Error     *relerrors.Diagnostic `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	var (
		jsonOutput  bool
		dialectFlag string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the model without writing anything",
		Long: `Compile the model file for the configured dialect and report the first
error, if any. No file is written.`,
		Example: `  relc validate
  relc validate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			opts, err := compileOptions(cfg, dialectFlag, logger)
			if err != nil {
				return err
			}

			model, res, err := compileModel(cfg, opts)
			if !jsonOutput {
				if err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s is valid: %d list(s), %d relation(s)",
					cfg.Model, len(model.Lists), len(res.Graph.Relations)), noColor)
				return nil
			}

			report := validateReport{Valid: err == nil, Dialect: opts.Dialect.String()}
			if model != nil {
				report.Lists = len(model.Lists)
			}
			if err != nil {
				d := relerrors.ToDiagnostic(err)
				report.Error = &d
			} else {
				report.Relations = len(res.Graph.Relations)
			}

			data, merr := json.MarshalIndent(report, "", "  ")
			if merr != nil {
				return merr
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			if err != nil {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result in JSON format")
	cmd.Flags().StringVarP(&dialectFlag, "dialect", "d", "", "Storage dialect (default: from relc.yaml)")

	return cmd
}

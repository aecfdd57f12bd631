package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/relc/internal/cli/config"
	"github.com/conduit-lang/relc/internal/cli/ui"
	"github.com/conduit-lang/relc/internal/compiler"
	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Global flags shared by every subcommand
var (
	configPath string
	verbose    bool
	noColor    bool
)

// errReported is returned when a command has already written its own report
var errReported = errors.New("error already reported")

// compileFailure carries the model an error was found in, so that the
// report can suggest corrections.
type compileFailure struct {
	err   error
	model *schema.Model
}

func (f *compileFailure) Error() string { return f.err.Error() }
func (f *compileFailure) Unwrap() error { return f.err }

// configFailure marks an error loading relc.yaml
type configFailure struct{ err error }

func (f *configFailure) Error() string { return f.err.Error() }
func (f *configFailure) Unwrap() error { return f.err }

// checkFailure marks a generated file that does not match the model
type checkFailure struct {
	path string
	diff *ui.FileDiff
}

func (f *checkFailure) Error() string { return fmt.Sprintf("%s is out of date", f.path) }

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relc",
		Short: "Relationship compiler for list models",
		Long: color.CyanString(`relc - relationship compiler

relc reads a model of lists and fields, pairs the relationship fields that
point at each other, decides the cardinality, foreign-key owner and name of
every relation, and emits:
  • a Prisma schema
  • SQL DDL for PostgreSQL, SQLite or MySQL
  • a JSON manifest of the resolved relations`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./relc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log each compilation stage")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewExplainCommand())
	rootCmd.AddCommand(NewVerifyCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the relc version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)
			out := cmd.OutOrStdout()

			for _, row := range [][2]string{
				{"relc version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, row[0])
				valueColor.Fprintln(out, row[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if err != nil {
		renderError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// renderError writes the report of a failed command
func renderError(w io.Writer, err error) {
	var (
		compile *compileFailure
		cfg     *configFailure
		check   *checkFailure
	)
	switch {
	case errors.Is(err, errReported):
	case errors.As(err, &compile):
		fmt.Fprint(w, ui.CompileError(compile.err, ui.SuggestRef(compile.err, compile.model), noColor))
	case errors.As(err, &cfg):
		fmt.Fprint(w, ui.ConfigError(cfg.err.Error(), noColor))
	case errors.As(err, &check):
		fmt.Fprint(w, ui.CheckFailed(check.path, noColor))
		if check.diff != nil {
			fmt.Fprint(w, "\n"+check.diff.String(noColor))
		}
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(w, "Error: %v\n", err)
	}
}

// newLogger returns a development logger with --verbose, and a no-op logger
// otherwise.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadConfig loads relc.yaml, or the file named by --config
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, &configFailure{err: err}
	}
	return cfg, nil
}

// compileOptions maps the configuration onto compiler options. A non-empty
// override replaces the configured dialect.
func compileOptions(cfg *config.Config, override string, logger *zap.Logger) (compiler.Options, error) {
	d := cfg.ParsedDialect()
	if override != "" {
		parsed, err := dialect.Parse(override)
		if err != nil {
			return compiler.Options{}, err
		}
		d = parsed
	}
	return compiler.Options{
		Dialect:      d,
		URLEnv:       cfg.Datasource.URLEnv,
		ShadowURLEnv: cfg.Datasource.ShadowURLEnv,
		SortLists:    cfg.SortLists,
		Logger:       logger,
	}, nil
}

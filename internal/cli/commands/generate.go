package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/relc/internal/cli/config"
	"github.com/conduit-lang/relc/internal/cli/ui"
	"github.com/conduit-lang/relc/internal/compiler"
	"github.com/conduit-lang/relc/internal/loader"
	"github.com/conduit-lang/relc/internal/orm/schema"
	"github.com/conduit-lang/relc/internal/watch"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var (
		check       bool
		watchModel  bool
		dialectFlag string
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Compile the model and write the generated files",
		Long: `Compile the model file and write the Prisma schema, and optionally the SQL
DDL and the JSON manifest, to the paths configured in relc.yaml.

Files whose content would not change are left untouched. Nothing is written
when the model has an error.`,
		Example: `  # Write every configured output
  relc generate

  # Fail when a generated file is out of date (for CI)
  relc generate --check

  # Regenerate whenever the model file changes
  relc generate --watch

  # Emit MySQL DDL regardless of relc.yaml
  relc generate --dialect mysql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && watchModel {
				return fmt.Errorf("--check and --watch cannot be combined")
			}

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

			if check {
				return runCheck(cmd, cfg, opts)
			}

			if err := runGenerate(cmd, cfg, opts); err != nil {
				if !watchModel {
					return err
				}
				renderError(cmd.ErrOrStderr(), err)
			}

			if watchModel {
				return runWatch(cmd, cfg, opts, logger)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Exit non-zero when a generated file differs from the model")
	cmd.Flags().BoolVarP(&watchModel, "watch", "w", false, "Regenerate when the model file changes")
	cmd.Flags().StringVarP(&dialectFlag, "dialect", "d", "", "Storage dialect: postgresql, sqlite or mysql (default: from relc.yaml)")

	return cmd
}

// output is one generated file
type output struct {
	path    string
	content string
}

// outputs lists the generated files with a configured path
func outputs(cfg *config.Config, res *compiler.Result) []output {
	var out []output
	if cfg.Output.Prisma != "" {
		out = append(out, output{cfg.Output.Prisma, res.Schema})
	}
	if cfg.Output.SQL != "" {
		out = append(out, output{cfg.Output.SQL, strings.Join(res.DDL, "\n\n") + "\n"})
	}
	if cfg.Output.JSON != "" {
		out = append(out, output{cfg.Output.JSON, res.Manifest})
	}
	return out
}

// compileModel loads and compiles the configured model file
func compileModel(cfg *config.Config, opts compiler.Options) (*schema.Model, *compiler.Result, error) {
	model, err := loader.LoadFile(cfg.Model)
	if err != nil {
		return nil, nil, err
	}
	res, err := compiler.Compile(model, opts)
	if err != nil {
		return model, nil, &compileFailure{err: err, model: model}
	}
	return model, res, nil
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, opts compiler.Options) error {
	_, res, err := compileModel(cfg, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	infoColor := color.New(color.FgCyan)
	for _, o := range outputs(cfg, res) {
		written, err := writeIfChanged(o.path, o.content)
		if err != nil {
			return err
		}
		if written {
			ui.WriteSuccess(out, "Wrote "+o.path, noColor)
		} else {
			infoColor.Fprintf(out, "  %s unchanged\n", o.path)
		}
	}
	return nil
}

// writeIfChanged writes content to path unless the file already holds it
func writeIfChanged(path, content string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, []byte(content)) {
		return false, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func runCheck(cmd *cobra.Command, cfg *config.Config, opts compiler.Options) error {
	_, res, err := compileModel(cfg, opts)
	if err != nil {
		return err
	}

	files := outputs(cfg, res)
	for _, o := range files {
		existing, err := os.ReadFile(o.path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read %s: %w", o.path, err)
			}
			return &checkFailure{path: o.path}
		}
		diff := &ui.FileDiff{Path: o.path, Current: string(existing), Generated: o.content}
		if diff.Changed() {
			return &checkFailure{path: o.path, diff: diff}
		}
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%d generated file(s) up to date", len(files)), noColor)
	return nil
}

// runWatch regenerates on every change of the model file until interrupted
func runWatch(cmd *cobra.Command, cfg *config.Config, opts compiler.Options, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watch.NewFileWatcher(cfg.Model, watch.DefaultDelay, logger, func(path string) error {
		if err := runGenerate(cmd, cfg, opts); err != nil {
			renderError(cmd.ErrOrStderr(), err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := fw.Start(); err != nil {
		return err
	}

	infoColor := color.New(color.FgCyan)
	infoColor.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.Model)

	<-ctx.Done()
	if err := fw.Stop(); err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

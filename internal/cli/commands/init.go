package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/relc/internal/cli/config"
	"github.com/conduit-lang/relc/internal/cli/ui"
	"github.com/conduit-lang/relc/internal/orm/dialect"
)

// exampleModel is written by init when the model file does not exist yet
const exampleModel = `lists:
  User:
    fields:
      name: { type: text }
      email: { type: text, unique: true }
      posts: { type: relationship, ref: Post.author, many: true }
  Post:
    fields:
      title: { type: text, default: '""' }
      publishedAt: { type: timestamp, optional: true }
      author: { type: relationship, ref: User.posts }
      tags: { type: relationship, ref: Tag.posts, many: true }
  Tag:
    fields:
      label: { type: text, unique: true }
      posts: { type: relationship, ref: Post.tags, many: true }
`

// initAnswers holds the prompted settings
type initAnswers struct {
	Dialect string
	Model   string
	Prisma  string
	SQL     string
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		interactive bool
		force       bool
		answers     initAnswers
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create relc.yaml and an example model",
		Long: `Create relc.yaml in the current directory, or at the path given by
--config, and an example model file when none exists yet. An existing
relc.yaml is kept unless --force is given; an existing model is never
overwritten.`,
		Example: `  relc init
  relc init --dialect sqlite --model models.yaml
  relc init --interactive`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				if err := promptInit(&answers); err != nil {
					return err
				}
			}
			return runInit(cmd, answers, force)
		},
	}

	defaults := config.Default()
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for each setting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing relc.yaml")
	cmd.Flags().StringVarP(&answers.Dialect, "dialect", "d", defaults.Dialect, "Storage dialect: postgresql, sqlite or mysql")
	cmd.Flags().StringVar(&answers.Model, "model", defaults.Model, "Model file path")
	cmd.Flags().StringVar(&answers.Prisma, "prisma", defaults.Output.Prisma, "Prisma schema output path")
	cmd.Flags().StringVar(&answers.SQL, "sql", defaults.Output.SQL, "SQL DDL output path (empty to skip)")

	return cmd
}

// promptInit asks for every setting, offering the flag values as defaults
func promptInit(a *initAnswers) error {
	// The select default must be a canonical name
	if d, err := dialect.Parse(a.Dialect); err == nil {
		a.Dialect = d.String()
	}

	questions := []*survey.Question{
		{
			Name: "Dialect",
			Prompt: &survey.Select{
				Message: "Storage dialect:",
				Options: dialect.Names(),
				Default: a.Dialect,
			},
		},
		{
			Name:     "Model",
			Prompt:   &survey.Input{Message: "Model file:", Default: a.Model},
			Validate: survey.Required,
		},
		{
			Name:     "Prisma",
			Prompt:   &survey.Input{Message: "Prisma schema output:", Default: a.Prisma},
			Validate: survey.Required,
		},
		{
			Name:   "SQL",
			Prompt: &survey.Input{Message: "SQL DDL output (empty to skip):", Default: a.SQL},
		},
	}
	return survey.Ask(questions, a)
}

func runInit(cmd *cobra.Command, a initAnswers, force bool) error {
	d, err := dialect.Parse(a.Dialect)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.Dialect = d.String()
	cfg.Model = a.Model
	cfg.Output.Prisma = a.Prisma
	cfg.Output.SQL = a.SQL

	path := configPath
	if path == "" {
		path = config.FileName + ".yaml"
	}

	out := cmd.OutOrStdout()
	infoColor := color.New(color.FgCyan)

	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if exists && !force {
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("%s already exists, use --force to overwrite it", path), noColor))
	} else {
		if err := config.Write(path, cfg); err != nil {
			return err
		}
		ui.WriteSuccess(out, "Created "+path, noColor)
	}

	exists, err = fileExists(cfg.Model)
	if err != nil {
		return err
	}
	if exists {
		infoColor.Fprintf(out, "  %s already exists, keeping it\n", cfg.Model)
		return nil
	}
	if dir := filepath.Dir(cfg.Model); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(cfg.Model, []byte(exampleModel), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Model, err)
	}
	ui.WriteSuccess(out, "Created "+cfg.Model, noColor)

	infoColor.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  relc explain")
	fmt.Fprintln(out, "  relc generate")
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
}

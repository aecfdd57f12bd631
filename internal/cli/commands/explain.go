package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/relc/internal/cli/ui"
	"github.com/conduit-lang/relc/internal/compiler"
	"github.com/conduit-lang/relc/internal/loader"
	"github.com/conduit-lang/relc/internal/orm/relationships"
)

// NewExplainCommand creates the explain command
func NewExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain",
		Short: "Show how every relation was resolved",
		Long: `Resolve the model and print one row per relation: its name and where the
name came from, its cardinality, the fields on each side, the field holding
the foreign key, and the join table of many to many relations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			opts, err := compileOptions(cfg, "", logger)
			if err != nil {
				return err
			}

			model, err := loader.LoadFile(cfg.Model)
			if err != nil {
				return err
			}
			graph, err := compiler.Resolve(model, opts)
			if err != nil {
				return &compileFailure{err: err, model: model}
			}

			out := cmd.OutOrStdout()
			ui.Header(out, fmt.Sprintf("Relations of %s", cfg.Model), noColor)
			table := ui.NewTable(out, []string{"Relation", "Name from", "Cardinality", "Sides", "Foreign key", "Join table"}, &ui.TableOptions{NoColor: noColor})
			for _, row := range explainRows(graph) {
				table.AddRow(row...)
			}
			table.Render()
			fmt.Fprintln(out)

			summary := ui.NewKeyValueTable(out, noColor)
			summary.AddRow("Lists", fmt.Sprint(graph.Registry.Count()))
			summary.AddRow("Relations", fmt.Sprint(len(graph.Relations)))
			summary.AddRow("Join tables", fmt.Sprint(len(graph.ManyToMany())))
			summary.Render()
			return nil
		},
	}
}

// explainRows returns one table row per relation, sorted by relation name
func explainRows(graph *relationships.Graph) [][]string {
	rels := make([]*relationships.Relation, len(graph.Relations))
	copy(rels, graph.Relations)
	sort.Slice(rels, func(i, j int) bool {
		return rels[i].Name() < rels[j].Name()
	})

	rows := make([][]string, 0, len(rels))
	for _, rel := range rels {
		canonical := rel.CanonicalSides()
		sides := make([]string, 0, len(canonical))
		for _, side := range canonical {
			sides = append(sides, side.Path().String())
		}

		fk := "-"
		switch {
		case rel.Owner != nil:
			fk = rel.Owner.Path().String()
		case rel.ForeignKeyOnTarget():
			fk = rel.Target.Name + "." + rel.BackReference()
		}

		join := rel.JoinTable()
		if join == "" {
			join = "-"
		}

		rows = append(rows, []string{
			rel.Name(),
			rel.Naming.Provenance.String(),
			rel.CardinalityOf(canonical[0]).String(),
			strings.Join(sides, " <-> "),
			fk,
			join,
		})
	}
	return rows
}

package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/relationships"
)

// DDLGenerator generates the DDL statements of a resolved graph for one dialect
type DDLGenerator struct {
	dialect    dialect.Dialect
	typeMapper *TypeMapper
	// SortLists emits tables sorted by list name instead of declaration order
	SortLists bool
}

// NewDDLGenerator creates a new DDL generator
func NewDDLGenerator(d dialect.Dialect) *DDLGenerator {
	return &DDLGenerator{
		dialect:    d,
		typeMapper: NewTypeMapper(d),
	}
}

// Generate returns every statement needed to create the schema: one CREATE
// TABLE per list, one per join table sorted by relation name, then indexes,
// then foreign keys for dialects that add them after the fact.
func (g *DDLGenerator) Generate(graph *relationships.Graph) ([]string, error) {
	var tables []*tableLayout
	for _, list := range orderedLists(graph, g.SortLists) {
		t, err := layoutTable(graph, list)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	for _, rel := range graph.ManyToMany() {
		tables = append(tables, layoutJoinTable(rel))
	}

	var stmts []string
	for _, t := range tables {
		stmt, err := g.generateCreateTable(t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	for _, t := range tables {
		stmts = append(stmts, g.generateIndexes(t)...)
	}
	if !g.dialect.InlineForeignKeys() {
		for _, t := range tables {
			stmts = append(stmts, g.generateForeignKeys(t)...)
		}
	}
	return stmts, nil
}

// GenerateSchema joins the statements of Generate into one script
func (g *DDLGenerator) GenerateSchema(graph *relationships.Graph) (string, error) {
	stmts, err := g.Generate(graph)
	if err != nil {
		return "", err
	}
	return strings.Join(stmts, "\n\n") + "\n", nil
}

// generateCreateTable generates a CREATE TABLE statement
func (g *DDLGenerator) generateCreateTable(t *tableLayout) (string, error) {
	var b strings.Builder
	q := g.typeMapper.QuoteIdentifier

	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", q(t.Name)))

	defs := make([]string, 0, len(t.Columns)+len(t.ForeignKeys))
	for _, c := range t.Columns {
		def, err := g.generateColumnDefinition(c)
		if err != nil {
			return "", fmt.Errorf("table %s: column %s: %w", t.Name, c.Name, err)
		}
		defs = append(defs, def)
	}
	if g.dialect.InlineForeignKeys() {
		for _, fk := range t.ForeignKeys {
			defs = append(defs, fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) %s",
				q(fk.Name), q(fk.Column), q(fk.RefTable), q("id"), fk.Action))
		}
	}

	for i, def := range defs {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(defs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString(");")

	return b.String(), nil
}

// generateColumnDefinition generates a column definition
func (g *DDLGenerator) generateColumnDefinition(c columnLayout) (string, error) {
	parts := []string{g.typeMapper.QuoteIdentifier(c.Name)}

	switch c.Kind {
	case columnID:
		parts = append(parts, g.typeMapper.MapIDColumn(c.IDKind))

	case columnForeignKey:
		parts = append(parts, g.typeMapper.MapReferenceType(c.IDKind), g.typeMapper.MapNullability(c.Nullable))

	case columnScalar:
		columnType, err := g.typeMapper.MapType(c.Scalar.Type)
		if err != nil {
			return "", fmt.Errorf("mapping type: %w", err)
		}
		parts = append(parts, columnType, g.typeMapper.MapNullability(c.Nullable))

		defaultValue, err := g.typeMapper.MapDefault(c.Scalar)
		if err != nil {
			return "", fmt.Errorf("mapping default value: %w", err)
		}
		if defaultValue != "" {
			parts = append(parts, "DEFAULT "+defaultValue)
		}
	}

	return strings.Join(parts, " "), nil
}

// generateIndexes generates the CREATE INDEX statements of a table
func (g *DDLGenerator) generateIndexes(t *tableLayout) []string {
	q := g.typeMapper.QuoteIdentifier
	// MySQL has no CREATE INDEX IF NOT EXISTS
	ifNotExists := " IF NOT EXISTS"
	if g.dialect == dialect.MySQL {
		ifNotExists = ""
	}

	stmts := make([]string, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		cols := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			cols[i] = q(c)
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %s%s %s ON %s (%s);",
			kind, ifNotExists, q(idx.Name), q(t.Name), strings.Join(cols, ", ")))
	}
	return stmts
}

// generateForeignKeys generates ALTER TABLE ADD CONSTRAINT statements
func (g *DDLGenerator) generateForeignKeys(t *tableLayout) []string {
	q := g.typeMapper.QuoteIdentifier
	stmts := make([]string, 0, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) %s;",
			q(t.Name), q(fk.Name), q(fk.Column), q(fk.RefTable), q("id"), fk.Action))
	}
	return stmts
}

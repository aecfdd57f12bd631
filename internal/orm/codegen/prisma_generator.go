package codegen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// Banner heads every generated Prisma schema
const Banner = `// This file is automatically generated by relc, do not modify it manually.
// Modify your relc model when you want to change this.
`

// DefaultURLEnv is the environment variable holding the database URL
const DefaultURLEnv = "DATABASE_URL"

// Datasource configures the datasource block of the Prisma schema
type Datasource struct {
	Dialect dialect.Dialect
	// URLEnv names the environment variable holding the database URL
	URLEnv string
	// ShadowURLEnv names the environment variable holding the shadow database
	// URL. The key is omitted when empty.
	ShadowURLEnv string
}

// PrismaGenerator generates a Prisma schema from a resolved graph
type PrismaGenerator struct {
	datasource Datasource
	// SortLists emits models sorted by list name instead of declaration order
	SortLists bool
}

// NewPrismaGenerator creates a new Prisma schema generator
func NewPrismaGenerator(ds Datasource) *PrismaGenerator {
	if ds.Dialect == "" {
		ds.Dialect = dialect.Default
	}
	if ds.URLEnv == "" {
		ds.URLEnv = DefaultURLEnv
	}
	return &PrismaGenerator{datasource: ds}
}

// prismaRow is one aligned line of a block
type prismaRow struct {
	name, typ, attrs string
}

// modelBlock collects the rows of one model
type modelBlock struct {
	list    string
	rows    []prismaRow
	indexes []string
	names   map[string]string
}

func (m *modelBlock) add(owner string, row prismaRow) error {
	if other, exists := m.names[row.name]; exists {
		return &relerrors.DuplicateFieldError{
			List:   m.list,
			Field:  row.name,
			Reason: "it is also generated for " + other,
		}
	}
	m.names[row.name] = owner
	m.rows = append(m.rows, row)
	return nil
}

func (m *modelBlock) index(field string) {
	m.indexes = append(m.indexes, fmt.Sprintf("@@index([%s])", field))
}

// Generate returns the complete Prisma schema text
func (pg *PrismaGenerator) Generate(g *relationships.Graph) (string, error) {
	var b strings.Builder

	b.WriteString(Banner)
	b.WriteString("\n")
	pg.writeDatasource(&b)
	b.WriteString("\n")
	b.WriteString("generator client {\n  provider = \"prisma-client-js\"\n}\n")

	for _, list := range orderedLists(g, pg.SortLists) {
		block, err := pg.generateModel(g, list)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		writeModel(&b, block)
	}

	return b.String(), nil
}

func (pg *PrismaGenerator) writeDatasource(b *strings.Builder) {
	ds := pg.datasource
	keys := []string{"url"}
	values := []string{fmt.Sprintf("env(%q)", ds.URLEnv)}
	if ds.ShadowURLEnv != "" {
		keys = append(keys, "shadowDatabaseUrl")
		values = append(values, fmt.Sprintf("env(%q)", ds.ShadowURLEnv))
	}
	keys = append(keys, "provider")
	values = append(values, fmt.Sprintf("%q", ds.Dialect.Provider()))

	width := 0
	for _, k := range keys {
		width = max(width, utf8.RuneCountInString(k))
	}

	fmt.Fprintf(b, "datasource %s {\n", ds.Dialect.Provider())
	for i, k := range keys {
		fmt.Fprintf(b, "  %s = %s\n", pad(k, width), values[i])
	}
	b.WriteString("}\n")
}

// generateModel lays out one model: id, scalars and relation fields in field
// order, each owning relation field followed by its foreign-key scalar, then
// the synthesized back-references sorted by relation name.
func (pg *PrismaGenerator) generateModel(g *relationships.Graph, list *schema.List) (*modelBlock, error) {
	m := &modelBlock{list: list.Name, names: make(map[string]string)}

	if err := m.add(schema.IDFieldName, prismaRow{schema.IDFieldName, PrismaIDType(list.ID), PrismaIDAttributes(list.ID)}); err != nil {
		return nil, err
	}

	for _, f := range list.Fields {
		if !f.IsRelationship() {
			row, err := scalarRow(f)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", list.Name, f.Name, err)
			}
			if err := m.add(f.Name, row); err != nil {
				return nil, err
			}
			if f.Scalar.Index && !f.Scalar.Unique {
				m.index(f.Name)
			}
			continue
		}

		path := schema.FieldPath{List: list.Name, Field: f.Name}
		rel, side, ok := g.Side(path)
		if !ok {
			return nil, fmt.Errorf("field %s is not part of any relation", path)
		}
		target := relatedList(rel, side)
		name := rel.Name()

		switch {
		case side.Many():
			if err := m.add(f.Name, prismaRow{f.Name, target.Name + "[]", relationAttr(name)}); err != nil {
				return nil, err
			}
		case rel.OwnsForeignKey(side):
			if err := m.addOwner(f.Name, target, name, foreignKeyColumn(side), rel.Cardinality == relationships.OneToOne); err != nil {
				return nil, err
			}
		default:
			if err := m.add(f.Name, prismaRow{f.Name, target.Name + "?", relationAttr(name)}); err != nil {
				return nil, err
			}
		}
	}

	for _, rel := range g.BackReferences(list.Name) {
		back := rel.BackReference()
		source := rel.Local.List
		if rel.ForeignKeyOnTarget() {
			if err := m.addOwner(back, source, rel.Name(), back, false); err != nil {
				return nil, err
			}
			continue
		}
		if err := m.add(back, prismaRow{back, source.Name + "[]", relationAttr(rel.Name())}); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// addOwner adds a relation field holding the foreign key, followed by the
// scalar field of the key.
func (m *modelBlock) addOwner(field string, target *schema.List, relation, column string, unique bool) error {
	fk := foreignKeyField(field)
	attrs := fmt.Sprintf("@relation(%q, fields: [%s], references: [%s])", relation, fk, schema.IDFieldName)
	if err := m.add(field, prismaRow{field, target.Name + "?", attrs}); err != nil {
		return err
	}

	fkAttrs := fmt.Sprintf("@map(%q)", column)
	if unique {
		fkAttrs = "@unique " + fkAttrs
	}
	if err := m.add(field, prismaRow{fk, PrismaIDType(target.ID) + "?", fkAttrs}); err != nil {
		return err
	}
	if !unique {
		m.index(fk)
	}
	return nil
}

func relationAttr(name string) string {
	return fmt.Sprintf("@relation(%q)", name)
}

func scalarRow(f *schema.Field) (prismaRow, error) {
	typ, err := PrismaType(f.Scalar.Type)
	if err != nil {
		return prismaRow{}, err
	}
	if f.Scalar.Optional {
		typ += "?"
	}

	var attrs []string
	if f.Scalar.Unique {
		attrs = append(attrs, "@unique")
	}
	if f.Scalar.Default != "" {
		attrs = append(attrs, fmt.Sprintf("@default(%s)", f.Scalar.Default))
	}
	if f.Scalar.Map != "" {
		attrs = append(attrs, fmt.Sprintf("@map(%q)", f.Scalar.Map))
	}
	return prismaRow{f.Name, typ, strings.Join(attrs, " ")}, nil
}

// writeModel writes a model block with its columns aligned
func writeModel(b *strings.Builder, m *modelBlock) {
	nameWidth, typeWidth := 0, 0
	for _, r := range m.rows {
		nameWidth = max(nameWidth, utf8.RuneCountInString(r.name))
		typeWidth = max(typeWidth, utf8.RuneCountInString(r.typ))
	}

	fmt.Fprintf(b, "model %s {\n", m.list)
	for _, r := range m.rows {
		line := "  " + pad(r.name, nameWidth) + " " + pad(r.typ, typeWidth) + " " + r.attrs
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteString("\n")
	}
	if len(m.indexes) > 0 {
		b.WriteString("\n")
		for _, idx := range m.indexes {
			b.WriteString("  " + idx + "\n")
		}
	}
	b.WriteString("}\n")
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

package codegen

import (
	"sort"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// Referential actions. Optional relations null the column when the referenced
// row goes away; join table rows go with it.
const (
	onDeleteSetNull = "ON DELETE SET NULL ON UPDATE CASCADE"
	onDeleteCascade = "ON DELETE CASCADE ON UPDATE CASCADE"
)

// Join table columns, named the way Prisma names them
const (
	joinColumnA = "A"
	joinColumnB = "B"
)

// orderedLists returns the lists to emit: declaration order, or sorted by
// name when sorted is set.
func orderedLists(g *relationships.Graph, sorted bool) []*schema.List {
	lists := g.Registry.Lists()
	if sorted {
		sort.SliceStable(lists, func(i, j int) bool {
			return lists[i].Name < lists[j].Name
		})
	}
	return lists
}

// relatedList returns the list a side points at
func relatedList(rel *relationships.Relation, side *relationships.Side) *schema.List {
	if side == rel.Local {
		return rel.Target
	}
	return rel.Local.List
}

// foreignKeyField returns the Prisma scalar field holding the foreign key of
// a relationship field.
func foreignKeyField(field string) string {
	return field + "Id"
}

// foreignKeyColumn returns the column holding the foreign key of a side. The
// column is named after the field unless db.foreignKey maps it.
func foreignKeyColumn(side *relationships.Side) string {
	if hint := side.ForeignKey(); hint != nil && hint.Map != "" {
		return hint.Map
	}
	return side.Field.Name
}

// scalarColumn returns the column of a scalar field
func scalarColumn(f *schema.Field) string {
	if f.Scalar.Map != "" {
		return f.Scalar.Map
	}
	return f.Name
}

// joinSides returns the lists behind the A and B columns of a join table: A is
// the list whose name sorts first.
func joinSides(rel *relationships.Relation) (a, b *schema.List) {
	a, b = rel.Local.List, rel.Target
	if b.Name < a.Name {
		a, b = b, a
	}
	return a, b
}

type columnKind int

const (
	columnID columnKind = iota
	columnScalar
	columnForeignKey
)

// columnLayout is one physical column of a table
type columnLayout struct {
	Name   string
	Kind   columnKind
	Scalar *schema.Scalar // columnScalar only
	// IDKind is the kind of the table's id for columnID, and of the referenced
	// id for columnForeignKey.
	IDKind   schema.IDKind
	Nullable bool
}

type foreignKeyLayout struct {
	Name     string
	Column   string
	RefTable string
	Action   string
}

type indexLayout struct {
	Name    string
	Columns []string
	Unique  bool
}

// tableLayout is the physical shape of one list, or of one join table
type tableLayout struct {
	Name        string
	Columns     []columnLayout
	ForeignKeys []foreignKeyLayout
	Indexes     []indexLayout
}

func (t *tableLayout) addColumn(list string, c columnLayout, field string, seen map[string]string) error {
	if other, exists := seen[c.Name]; exists {
		return &relerrors.DuplicateFieldError{
			List:   list,
			Field:  field,
			Reason: "its column " + c.Name + " is also produced by " + other,
		}
	}
	seen[c.Name] = field
	t.Columns = append(t.Columns, c)
	return nil
}

func (t *tableLayout) addForeignKey(column, refTable, action string) {
	t.ForeignKeys = append(t.ForeignKeys, foreignKeyLayout{
		Name:     t.Name + "_" + column + "_fkey",
		Column:   column,
		RefTable: refTable,
		Action:   action,
	})
}

func (t *tableLayout) addIndex(column string, unique bool) {
	suffix := "_idx"
	if unique {
		suffix = "_key"
	}
	t.Indexes = append(t.Indexes, indexLayout{
		Name:    t.Name + "_" + column + suffix,
		Columns: []string{column},
		Unique:  unique,
	})
}

// layoutTable computes the columns, foreign keys and indexes of a list. The
// columns are id, scalars and foreign keys in field order, then the foreign
// keys of synthesized back-references.
func layoutTable(g *relationships.Graph, list *schema.List) (*tableLayout, error) {
	t := &tableLayout{Name: list.Name}
	seen := make(map[string]string)

	if err := t.addColumn(list.Name, columnLayout{Name: schema.IDFieldName, Kind: columnID, IDKind: list.ID}, schema.IDFieldName, seen); err != nil {
		return nil, err
	}

	for _, f := range list.Fields {
		if !f.IsRelationship() {
			c := columnLayout{Name: scalarColumn(f), Kind: columnScalar, Scalar: f.Scalar, Nullable: f.Scalar.Optional}
			if err := t.addColumn(list.Name, c, f.Name, seen); err != nil {
				return nil, err
			}
			if f.Scalar.Unique {
				t.addIndex(c.Name, true)
			} else if f.Scalar.Index {
				t.addIndex(c.Name, false)
			}
			continue
		}

		rel, side, ok := g.Side(schema.FieldPath{List: list.Name, Field: f.Name})
		if !ok || !rel.OwnsForeignKey(side) {
			continue
		}
		target := relatedList(rel, side)
		c := columnLayout{Name: foreignKeyColumn(side), Kind: columnForeignKey, IDKind: target.ID, Nullable: true}
		if err := t.addColumn(list.Name, c, f.Name, seen); err != nil {
			return nil, err
		}
		t.addForeignKey(c.Name, target.Name, onDeleteSetNull)
		t.addIndex(c.Name, rel.Cardinality == relationships.OneToOne)
	}

	for _, rel := range g.BackReferences(list.Name) {
		if !rel.ForeignKeyOnTarget() {
			continue
		}
		back := rel.BackReference()
		source := rel.Local.List
		c := columnLayout{Name: back, Kind: columnForeignKey, IDKind: source.ID, Nullable: true}
		if err := t.addColumn(list.Name, c, back, seen); err != nil {
			return nil, err
		}
		t.addForeignKey(c.Name, source.Name, onDeleteSetNull)
		t.addIndex(c.Name, false)
	}

	return t, nil
}

// layoutJoinTable computes the join table of a many to many relation
func layoutJoinTable(rel *relationships.Relation) *tableLayout {
	a, b := joinSides(rel)
	name := rel.JoinTable()
	t := &tableLayout{
		Name: name,
		Columns: []columnLayout{
			{Name: joinColumnA, Kind: columnForeignKey, IDKind: a.ID},
			{Name: joinColumnB, Kind: columnForeignKey, IDKind: b.ID},
		},
		Indexes: []indexLayout{
			{Name: name + "_AB_unique", Columns: []string{joinColumnA, joinColumnB}, Unique: true},
			{Name: name + "_B_index", Columns: []string{joinColumnB}},
		},
	}
	t.addForeignKey(joinColumnA, a.Name, onDeleteCascade)
	t.addForeignKey(joinColumnB, b.Name, onDeleteCascade)
	return t
}

package codegen

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// Manifest is the machine-readable description of a compiled model
type Manifest struct {
	Dialect   string             `json:"dialect"`
	Models    []ManifestModel    `json:"models"`
	Relations []ManifestRelation `json:"relations"`
}

// ManifestModel describes one list
type ManifestModel struct {
	Name   string          `json:"name"`
	ID     string          `json:"id"`
	Fields []ManifestField `json:"fields"`
}

// ManifestField describes one declared or synthesized field
type ManifestField struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Type        string `json:"type,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Relation    string `json:"relation,omitempty"`
	Cardinality string `json:"cardinality,omitempty"`
	Target      string `json:"target,omitempty"`
	ForeignKey  string `json:"foreignKey,omitempty"`
	Synthesized bool   `json:"synthesized,omitempty"`
}

// ManifestRelation describes one resolved relation. Sides are ordered by
// List_field key and Cardinality is seen from the first of them.
type ManifestRelation struct {
	Name          string   `json:"name"`
	Provenance    string   `json:"provenance"`
	Cardinality   string   `json:"cardinality"`
	Sides         []string `json:"sides"`
	Owner         string   `json:"owner,omitempty"`
	JoinTable     string   `json:"joinTable,omitempty"`
	BackReference string   `json:"backReference,omitempty"`
}

// ManifestGenerator generates the JSON manifest of a resolved graph
type ManifestGenerator struct {
	dialect dialect.Dialect
	// SortLists emits models sorted by list name instead of declaration order
	SortLists bool
}

// NewManifestGenerator creates a new manifest generator
func NewManifestGenerator(d dialect.Dialect) *ManifestGenerator {
	return &ManifestGenerator{dialect: d}
}

// Build returns the manifest of g. Relations are sorted by name.
func (mg *ManifestGenerator) Build(g *relationships.Graph) *Manifest {
	m := &Manifest{Dialect: mg.dialect.String()}

	for _, list := range orderedLists(g, mg.SortLists) {
		model := ManifestModel{Name: list.Name, ID: string(list.ID)}
		for _, f := range list.Fields {
			model.Fields = append(model.Fields, manifestField(g, list, f))
		}
		for _, rel := range g.BackReferences(list.Name) {
			field := ManifestField{
				Name:        rel.BackReference(),
				Kind:        schema.KindRelationship.String(),
				Relation:    rel.Name(),
				Cardinality: rel.Cardinality.Mirror().String(),
				Target:      rel.Local.List.Name,
				Synthesized: true,
			}
			if rel.ForeignKeyOnTarget() {
				field.ForeignKey = rel.BackReference()
			}
			model.Fields = append(model.Fields, field)
		}
		m.Models = append(m.Models, model)
	}

	rels := make([]*relationships.Relation, len(g.Relations))
	copy(rels, g.Relations)
	sortRelations(rels)
	for _, rel := range rels {
		sides := rel.CanonicalSides()
		mr := ManifestRelation{
			Name:          rel.Name(),
			Provenance:    rel.Naming.Provenance.String(),
			Cardinality:   rel.CardinalityOf(sides[0]).String(),
			JoinTable:     rel.JoinTable(),
			BackReference: rel.BackReference(),
		}
		for _, side := range sides {
			mr.Sides = append(mr.Sides, side.Path().String())
		}
		if rel.Owner != nil {
			mr.Owner = rel.Owner.Path().String()
		}
		m.Relations = append(m.Relations, mr)
	}

	return m
}

// Generate returns the indented JSON manifest of g
func (mg *ManifestGenerator) Generate(g *relationships.Graph) (string, error) {
	data, err := json.MarshalIndent(mg.Build(g), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	return string(data) + "\n", nil
}

func manifestField(g *relationships.Graph, list *schema.List, f *schema.Field) ManifestField {
	field := ManifestField{Name: f.Name, Kind: f.Kind.String()}
	if !f.IsRelationship() {
		field.Type = string(f.Scalar.Type)
		field.Optional = f.Scalar.Optional
		return field
	}

	rel, side, ok := g.Side(schema.FieldPath{List: list.Name, Field: f.Name})
	if !ok {
		return field
	}
	field.Relation = rel.Name()
	field.Cardinality = rel.CardinalityOf(side).String()
	field.Target = relatedList(rel, side).Name
	if rel.OwnsForeignKey(side) {
		field.ForeignKey = foreignKeyColumn(side)
	}
	return field
}

// sortRelations sorts by relation name, which is unique within a graph
func sortRelations(rels []*relationships.Relation) {
	sort.Slice(rels, func(i, j int) bool {
		return rels[i].Name() < rels[j].Name()
	})
}

// ParseManifest decodes a manifest produced by Generate
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}

// Cardinalities returns the cardinality of every declared relationship field,
// keyed by its List.field path.
func (m *Manifest) Cardinalities() map[string]string {
	out := make(map[string]string)
	for _, model := range m.Models {
		for _, f := range model.Fields {
			if f.Kind != schema.KindRelationship.String() || f.Synthesized {
				continue
			}
			out[model.Name+"."+f.Name] = f.Cardinality
		}
	}
	return out
}

// Package loader reads model definition files. Lists and fields are decoded
// from YAML nodes rather than maps so that declaration order, which controls
// emission order, survives decoding. Duplicate keys are kept and left for the
// registry to report.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/relc/internal/orm/schema"
)

// RelationshipType is the field type marking a relationship
const RelationshipType = "relationship"

// listSpec is the body of one list
type listSpec struct {
	IDField string     `yaml:"idField"`
	Fields  orderedMap `yaml:"fields"`
}

// fieldSpec is the body of one field, scalar or relationship
type fieldSpec struct {
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional"`
	Unique   bool   `yaml:"unique"`
	Index    bool   `yaml:"index"`
	Default  string `yaml:"default"`
	Map      string `yaml:"map"`

	Ref  string `yaml:"ref"`
	Many bool   `yaml:"many"`
	DB   dbSpec `yaml:"db"`
}

type dbSpec struct {
	RelationName string         `yaml:"relationName"`
	ForeignKey   foreignKeySpec `yaml:"foreignKey"`
}

// foreignKeySpec accepts either `true` or `{map: column}`
type foreignKeySpec struct {
	Set bool
	Map string
}

// UnmarshalYAML implements yaml.Unmarshaler
func (f *foreignKeySpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var set bool
		if err := node.Decode(&set); err != nil {
			return fmt.Errorf("line %d: db.foreignKey must be true or {map: column}", node.Line)
		}
		*f = foreignKeySpec{Set: set}
		return nil

	case yaml.MappingNode:
		var m struct {
			Map string `yaml:"map"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*f = foreignKeySpec{Set: true, Map: m.Map}
		return nil

	default:
		return fmt.Errorf("line %d: db.foreignKey must be true or {map: column}", node.Line)
	}
}

// entry is one key of a mapping, in document order
type entry struct {
	Key   string
	Value *yaml.Node
}

// orderedMap is a YAML mapping decoded as a list of entries
type orderedMap []entry

// UnmarshalYAML implements yaml.Unmarshaler
func (m *orderedMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	entries := make(orderedMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected a name", key.Line)
		}
		entries = append(entries, entry{Key: key.Value, Value: value})
	}
	*m = entries
	return nil
}

// LoadFile reads the model definition file at path
func LoadFile(path string) (*schema.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a model definition
func Parse(data []byte) (*schema.Model, error) {
	var doc struct {
		Lists orderedMap `yaml:"lists"`
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse model YAML: %w", err)
	}

	model := &schema.Model{}
	for _, e := range doc.Lists {
		list, err := decodeList(e)
		if err != nil {
			return nil, err
		}
		model.Lists = append(model.Lists, list)
	}
	return model, nil
}

func decodeList(e entry) (*schema.List, error) {
	var spec listSpec
	// An empty list body (`Tag:`) is a list without fields
	if !isNull(e.Value) {
		if err := e.Value.Decode(&spec); err != nil {
			return nil, fmt.Errorf("list %s: %w", e.Key, err)
		}
	}

	id, err := schema.ParseIDKind(spec.IDField)
	if err != nil {
		return nil, fmt.Errorf("list %s: line %d: %w", e.Key, e.Value.Line, err)
	}

	list := &schema.List{Name: e.Key, ID: id}
	for _, fe := range spec.Fields {
		field, err := decodeField(fe)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", e.Key, fe.Key, err)
		}
		list.Fields = append(list.Fields, field)
	}
	return list, nil
}

func decodeField(e entry) (*schema.Field, error) {
	var spec fieldSpec
	if err := e.Value.Decode(&spec); err != nil {
		return nil, err
	}
	if spec.Type == "" {
		return nil, fmt.Errorf("line %d: missing type", e.Value.Line)
	}

	if spec.Type != RelationshipType {
		return &schema.Field{
			Name: e.Key,
			Kind: schema.KindScalar,
			Scalar: &schema.Scalar{
				Type:     schema.ScalarType(spec.Type),
				Optional: spec.Optional,
				Unique:   spec.Unique,
				Index:    spec.Index,
				Default:  spec.Default,
				Map:      spec.Map,
			},
		}, nil
	}

	rel := &schema.Relationship{
		Ref:          spec.Ref,
		Many:         spec.Many,
		RelationName: spec.DB.RelationName,
	}
	if spec.DB.ForeignKey.Set {
		rel.ForeignKey = &schema.ForeignKeyHint{Map: spec.DB.ForeignKey.Map}
	}
	return &schema.Field{Name: e.Key, Kind: schema.KindRelationship, Relationship: rel}, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

package relationships

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relc/internal/orm/schema"
)

func rel(name, ref string, many bool) *schema.Field {
	return schema.NewRelationshipField(name, ref, many)
}

func registryOf(t *testing.T, lists ...*schema.List) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry(&schema.Model{Lists: lists})
	require.NoError(t, err)
	return reg
}

func resolve(t *testing.T, lists ...*schema.List) *Graph {
	t.Helper()
	g, err := Resolve(registryOf(t, lists...))
	require.NoError(t, err)
	return g
}

func path(s string) schema.FieldPath {
	ref, err := schema.ParseRef(s)
	if err != nil {
		panic(err)
	}
	return ref.Path()
}

package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

func rel(name, ref string, many bool) *schema.Field {
	return schema.NewRelationshipField(name, ref, many)
}

func text(name string, opts ...func(*schema.Scalar)) *schema.Field {
	f := schema.NewScalarField(name, schema.TypeText)
	for _, opt := range opts {
		opt(f.Scalar)
	}
	return f
}

func graphOf(t *testing.T, lists ...*schema.List) *relationships.Graph {
	t.Helper()
	reg, err := schema.NewRegistry(&schema.Model{Lists: lists})
	require.NoError(t, err)
	g, err := relationships.Resolve(reg)
	require.NoError(t, err)
	return g
}

func withID(l *schema.List, kind schema.IDKind) *schema.List {
	l.ID = kind
	return l
}

// blog declares users, posts, tags, profiles and categories with every
// cardinality.
func blog() []*schema.List {
	return []*schema.List{
		schema.NewList("User",
			text("name"),
			rel("posts", "Post.author", true),
			rel("profile", "Profile.user", false),
		),
		schema.NewList("Post",
			text("title", func(s *schema.Scalar) { s.Default = `""` }),
			rel("author", "User.posts", false),
			rel("tags", "Tag.posts", true),
			rel("category", "Category", false),
		),
		schema.NewList("Tag",
			text("label", func(s *schema.Scalar) { s.Unique = true }),
			rel("posts", "Post.tags", true),
		),
		schema.NewList("Profile", rel("user", "User.profile", false)),
		withID(schema.NewList("Category"), schema.IDAutoincrement),
	}
}

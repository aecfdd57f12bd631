package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relc/internal/orm/schema"
)

const blogModel = `
lists:
  User:
    fields:
      name: {type: text, unique: true}
      posts: {type: relationship, ref: Post.author, many: true}
  Post:
    idField: autoincrement
    fields:
      title: {type: text, default: '"untitled"', map: post_title}
      publishedAt: {type: timestamp, optional: true, index: true, default: now()}
      author:
        type: relationship
        ref: User.posts
        db:
          relationName: authored
          foreignKey: {map: author_id}
      tags: {type: relationship, ref: Tag, many: true}
  Tag:
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(blogModel))
	require.NoError(t, err)
	require.Len(t, m.Lists, 3)

	names := []string{m.Lists[0].Name, m.Lists[1].Name, m.Lists[2].Name}
	assert.Equal(t, []string{"User", "Post", "Tag"}, names)

	user := m.Lists[0]
	assert.Equal(t, schema.IDCuid, user.ID)
	require.Len(t, user.Fields, 2)
	assert.Equal(t, "name", user.Fields[0].Name)
	assert.Equal(t, schema.KindScalar, user.Fields[0].Kind)
	assert.Equal(t, schema.TypeText, user.Fields[0].Scalar.Type)
	assert.True(t, user.Fields[0].Scalar.Unique)

	posts := user.Fields[1]
	assert.Equal(t, schema.KindRelationship, posts.Kind)
	assert.Equal(t, "Post.author", posts.Relationship.Ref)
	assert.True(t, posts.Relationship.Many)
	assert.Nil(t, posts.Relationship.ForeignKey)

	post := m.Lists[1]
	assert.Equal(t, schema.IDAutoincrement, post.ID)
	require.Len(t, post.Fields, 4)

	title := post.Fields[0].Scalar
	assert.Equal(t, `"untitled"`, title.Default)
	assert.Equal(t, "post_title", title.Map)

	published := post.Fields[1].Scalar
	assert.True(t, published.Optional)
	assert.True(t, published.Index)
	assert.Equal(t, "now()", published.Default)

	author := post.Fields[2].Relationship
	assert.Equal(t, "authored", author.RelationName)
	require.NotNil(t, author.ForeignKey)
	assert.Equal(t, "author_id", author.ForeignKey.Map)

	assert.Equal(t, "Tag", post.Fields[3].Relationship.Ref)
	assert.Empty(t, m.Lists[2].Fields)
}

func TestParseForeignKeyForms(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    *schema.ForeignKeyHint
		wantErr bool
	}{
		{name: "true", value: "true", want: &schema.ForeignKeyHint{}},
		{name: "false", value: "false", want: nil},
		{name: "mapped", value: "{map: owner_id}", want: &schema.ForeignKeyHint{Map: "owner_id"}},
		{name: "not a bool", value: "yes please", wantErr: true},
		{name: "sequence", value: "[a]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "lists:\n  A:\n    fields:\n      b: {type: relationship, ref: B, db: {foreignKey: " + tt.value + "}}\n"
			m, err := Parse([]byte(src))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "db.foreignKey")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Lists[0].Fields[0].Relationship.ForeignKey)
		})
	}
}

func TestParseKeepsDuplicates(t *testing.T) {
	src := `
lists:
  A:
    fields:
      x: {type: text}
      x: {type: integer}
  A:
`
	m, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, m.Lists, 2)
	require.Len(t, m.Lists[0].Fields, 2)
	assert.Equal(t, schema.TypeInteger, m.Lists[0].Fields[1].Scalar.Type)

	_, err = schema.NewRegistry(m)
	require.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "lists:\n"} {
		m, err := Parse([]byte(src))
		require.NoError(t, err)
		assert.Empty(t, m.Lists)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "malformed", src: "lists: [", want: "failed to parse model YAML"},
		{name: "unknown top-level key", src: "models: {}\n", want: "failed to parse model YAML"},
		{name: "lists not a mapping", src: "lists: [A]\n", want: "expected a mapping"},
		{name: "missing type", src: "lists:\n  A:\n    fields:\n      x: {unique: true}\n", want: "field A.x: line 4: missing type"},
		{name: "unknown id kind", src: "lists:\n  A:\n    idField: serial\n", want: "list A: line 3: unknown id kind: serial"},
		{name: "fields not a mapping", src: "lists:\n  A:\n    fields: [x]\n", want: "list A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseUnknownScalarTypeIsLeftToRegistry(t *testing.T) {
	m, err := Parse([]byte("lists:\n  A:\n    fields:\n      x: {type: blob}\n"))
	require.NoError(t, err)
	assert.Equal(t, schema.ScalarType("blob"), m.Lists[0].Fields[0].Scalar.Type)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relc.model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blogModel), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Lists, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read model file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("lists: ["), 0o644))
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

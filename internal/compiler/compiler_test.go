package compiler

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	relerrors "github.com/conduit-lang/relc/internal/compiler/errors"
	"github.com/conduit-lang/relc/internal/orm/codegen"
	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

func rel(name, ref string, many bool) *schema.Field {
	return schema.NewRelationshipField(name, ref, many)
}

func model(lists ...*schema.List) *schema.Model {
	return &schema.Model{Lists: lists}
}

func TestCompile_ManyToManyScenarios(t *testing.T) {
	t.Run("derived name", func(t *testing.T) {
		res, err := Compile(model(
			schema.NewList("A", rel("b", "B.a", true)),
			schema.NewList("B", rel("a", "A.b", true)),
		), Options{})
		require.NoError(t, err)

		assert.Contains(t, res.Schema, "model A {\n  id String @id @default(cuid())\n  b  B[]    @relation(\"A_b\")\n}\n")
		assert.Contains(t, res.Schema, "model B {\n  id String @id @default(cuid())\n  a  A[]    @relation(\"A_b\")\n}\n")

		joins := res.Graph.ManyToMany()
		require.Len(t, joins, 1)
		assert.Equal(t, "_A_b", joins[0].JoinTable())
	})

	t.Run("override on one side", func(t *testing.T) {
		res, err := Compile(model(
			schema.NewList("A", rel("b", "B.a", true)),
			schema.NewList("B", rel("a", "A.b", true).WithRelationName("the_relation_name")),
		), Options{})
		require.NoError(t, err)

		assert.Contains(t, res.Schema, "b  B[]    @relation(\"the_relation_name\")")
		assert.Contains(t, res.Schema, "a  A[]    @relation(\"the_relation_name\")")
		assert.NotContains(t, res.Schema, "A_b")
	})

	t.Run("override on both sides", func(t *testing.T) {
		res, err := Compile(model(
			schema.NewList("A", rel("b", "B.a", true).WithRelationName("blah")),
			schema.NewList("B", rel("a", "A.b", true).WithRelationName("blah")),
		), Options{})
		assert.Nil(t, res)

		var conflict *relerrors.ConflictingRelationNameError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []string{"A.b", "B.a"}, conflict.Fields())
	})

	t.Run("override on the many side", func(t *testing.T) {
		_, err := Compile(model(
			schema.NewList("A", rel("b", "B.a", true).WithRelationName("blah")),
			schema.NewList("B", rel("a", "A.b", false)),
		), Options{})

		var onMany *relerrors.RelationNameOnManySideError
		require.ErrorAs(t, err, &onMany)
		assert.Equal(t, "A.b", onMany.Field)
		assert.Equal(t, "B.a", onMany.Counterpart)
	})
}

func TestCompile_Deterministic(t *testing.T) {
	m := blog()
	first, err := Compile(m, Options{Dialect: dialect.SQLite})
	require.NoError(t, err)
	second, err := Compile(m, Options{Dialect: dialect.SQLite})
	require.NoError(t, err)

	assert.Equal(t, first.Schema, second.Schema)
	assert.Equal(t, first.DDL, second.DDL)
	assert.Equal(t, first.Manifest, second.Manifest)
}

func TestCompile_PermutedListsWithSortLists(t *testing.T) {
	m := blog()
	opts := Options{SortLists: true, ShadowURLEnv: "SHADOW_DATABASE_URL"}
	want, err := Compile(m, opts)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		lists := append([]*schema.List(nil), m.Lists...)
		r.Shuffle(len(lists), func(i, j int) { lists[i], lists[j] = lists[j], lists[i] })

		got, err := Compile(model(lists...), opts)
		require.NoError(t, err)
		assert.Equal(t, want.Schema, got.Schema)
		assert.Equal(t, want.DDL, got.DDL)
		assert.Equal(t, want.Manifest, got.Manifest)
	}
}

func TestCompile_RoundTripCardinalities(t *testing.T) {
	res, err := Compile(blog(), Options{})
	require.NoError(t, err)

	m, err := codegen.ParseManifest([]byte(res.Manifest))
	require.NoError(t, err)

	for path, c := range res.Graph.Cardinalities() {
		assert.Equal(t, c.String(), m.Cardinalities()[path.String()], path.String())
	}
	assert.Len(t, m.Cardinalities(), len(res.Graph.Cardinalities()))
}

func TestCompile_FailFast(t *testing.T) {
	tests := []struct {
		name     string
		model    *schema.Model
		sentinel error
		code     relerrors.ErrorCode
	}{
		{
			name:     "duplicate list",
			model:    model(schema.NewList("A"), schema.NewList("A")),
			sentinel: relerrors.ErrInvalidModel,
			code:     relerrors.ErrDuplicateList,
		},
		{
			name:     "dangling reference",
			model:    model(schema.NewList("A", rel("b", "B.a", false))),
			sentinel: relerrors.ErrInvalidRelationship,
			code:     relerrors.ErrDanglingReference,
		},
		{
			name: "wrong field kind",
			model: model(
				schema.NewList("A", rel("b", "B.title", false)),
				schema.NewList("B", schema.NewScalarField("title", schema.TypeText)),
			),
			sentinel: relerrors.ErrInvalidRelationship,
			code:     relerrors.ErrWrongFieldKind,
		},
		{
			name:     "nil list",
			model:    model(nil),
			sentinel: relerrors.ErrInvalidModel,
			code:     relerrors.ErrInvalidList,
		},
		{
			name:     "nil field",
			model:    model(schema.NewList("A", nil)),
			sentinel: relerrors.ErrInvalidModel,
			code:     relerrors.ErrInvalidField,
		},
		{
			name: "ref to the implicit id",
			model: model(
				schema.NewList("A", rel("b", "B.id", false)),
				schema.NewList("B"),
			),
			sentinel: relerrors.ErrInvalidRelationship,
			code:     relerrors.ErrWrongFieldKind,
		},
		{
			name: "foreign-key field collides with a declared field",
			model: model(
				schema.NewList("A", rel("b", "B", false), schema.NewScalarField("bId", schema.TypeText)),
				schema.NewList("B"),
			),
			sentinel: relerrors.ErrInvalidModel,
			code:     relerrors.ErrDuplicateField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.model, Options{})
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Equal(t, tt.code, relerrors.CodeOf(err))
		})
	}
}

func TestCompile_OwnerPolicy(t *testing.T) {
	m := model(
		schema.NewList("A", rel("b", "B.a", false)),
		schema.NewList("B", rel("a", "A.b", false)),
	)
	second := func(first, second *relationships.Side) *relationships.Side { return second }

	res, err := Compile(m, Options{OwnerPolicy: second})
	require.NoError(t, err)

	assert.Contains(t, res.Schema, "aId String? @unique @map(\"a\")")
	assert.NotContains(t, res.Schema, "bId")
}

func TestCompile_Dialects(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.Postgres, dialect.SQLite, dialect.MySQL} {
		t.Run(d.String(), func(t *testing.T) {
			res, err := Compile(blog(), Options{Dialect: d})
			require.NoError(t, err)
			assert.Contains(t, res.Schema, "provider = \""+d.Provider()+"\"")
			assert.NotEmpty(t, res.DDL)
			assert.Contains(t, res.Manifest, "\"dialect\": \""+d.String()+"\"")
		})
	}
}

func TestCompile_LogsStages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	_, err := Compile(blog(), Options{Logger: zap.New(core)})
	require.NoError(t, err)

	var messages []string
	for _, entry := range logs.All() {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{
		"registered model",
		"resolved relationships",
		"emitted prisma schema",
		"emitted ddl",
		"emitted manifest",
	}, messages)

	resolved := logs.FilterMessage("resolved relationships").All()[0]
	assert.Equal(t, int64(4), resolved.ContextMap()["relations"])
}

func TestResolve(t *testing.T) {
	g, err := Resolve(blog(), Options{})
	require.NoError(t, err)
	assert.Len(t, g.Relations, 4)

	_, err = Resolve(model(schema.NewList("A", rel("b", "", false))), Options{})
	assert.True(t, errors.Is(err, relerrors.ErrInvalidModel))
}

func blog() *schema.Model {
	category := schema.NewList("Category", schema.NewScalarField("name", schema.TypeText))
	category.ID = schema.IDAutoincrement

	return model(
		schema.NewList("User",
			schema.NewScalarField("name", schema.TypeText),
			rel("posts", "Post.author", true),
			rel("profile", "Profile.user", false),
		),
		schema.NewList("Post",
			schema.NewScalarField("title", schema.TypeText),
			rel("author", "User.posts", false),
			rel("tags", "Tag.posts", true),
			rel("category", "Category", false),
		),
		schema.NewList("Tag", rel("posts", "Post.tags", true)),
		schema.NewList("Profile", rel("user", "User.profile", false)),
		category,
	)
}

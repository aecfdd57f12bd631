package verify

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relc/internal/orm/codegen"
	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

func setupScratch(t *testing.T) *Runner {
	t.Helper()
	db, err := OpenScratch()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunner(db, nil)
}

func sqliteDDL(t *testing.T, lists ...*schema.List) []string {
	t.Helper()
	reg, err := schema.NewRegistry(&schema.Model{Lists: lists})
	require.NoError(t, err)
	g, err := relationships.Resolve(reg)
	require.NoError(t, err)
	stmts, err := codegen.NewDDLGenerator(dialect.SQLite).Generate(g)
	require.NoError(t, err)
	return stmts
}

func TestRunner_ApplyGeneratedSchema(t *testing.T) {
	category := schema.NewList("Category")
	category.ID = schema.IDAutoincrement

	stmts := sqliteDDL(t,
		schema.NewList("User",
			schema.NewRelationshipField("posts", "Post.author", true),
			schema.NewRelationshipField("profile", "Profile.user", false),
		),
		schema.NewList("Post",
			schema.NewScalarField("title", schema.TypeText),
			schema.NewRelationshipField("author", "User.posts", false),
			schema.NewRelationshipField("tags", "Tag.posts", true),
			schema.NewRelationshipField("category", "Category", false),
		),
		schema.NewList("Tag", schema.NewRelationshipField("posts", "Post.tags", true)),
		schema.NewList("Profile", schema.NewRelationshipField("user", "User.profile", false)),
		category,
	)

	runner := setupScratch(t)
	report, err := runner.Apply(context.Background(), stmts)
	require.NoError(t, err)

	assert.Equal(t, len(stmts), report.Statements)
	assert.Equal(t, []string{"Category", "Post", "Profile", "Tag", "User", "_Post_tags"}, report.Tables)
	assert.ElementsMatch(t, []ForeignKey{
		{Table: "Post", Column: "author", RefTable: "User"},
		{Table: "Post", Column: "category", RefTable: "Category"},
		{Table: "Profile", Column: "user", RefTable: "User"},
		{Table: "_Post_tags", Column: "A", RefTable: "Post"},
		{Table: "_Post_tags", Column: "B", RefTable: "Tag"},
	}, report.ForeignKeys)

	// The transaction is rolled back, so the same schema applies again.
	_, err = runner.Apply(context.Background(), stmts)
	require.NoError(t, err)
}

func TestRunner_StatementError(t *testing.T) {
	runner := setupScratch(t)

	_, err := runner.Apply(context.Background(), []string{
		`CREATE TABLE "A" ("id" TEXT NOT NULL PRIMARY KEY);`,
		`CREATE TABLE "A" ("id" TEXT NOT NULL PRIMARY KEY);`,
	})

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, 1, stmtErr.Index)
	assert.Contains(t, err.Error(), "statement 2 failed")
}

func TestRunner_MissingReferencedTable(t *testing.T) {
	runner := setupScratch(t)

	_, err := runner.Apply(context.Background(), []string{
		`CREATE TABLE "Post" ("id" TEXT NOT NULL PRIMARY KEY, "author" TEXT NULL, FOREIGN KEY ("author") REFERENCES "User" ("id"));`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table Post: column author references missing table User")
}

func TestRunner_Mocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	stmt := `CREATE TABLE IF NOT EXISTS "A" ("id" TEXT NOT NULL PRIMARY KEY);`
	fkColumns := []string{"id", "seq", "table", "from", "to", "on_update", "on_delete", "match"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(tablesQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("A"))
	mock.ExpectQuery(regexp.QuoteMeta(`PRAGMA foreign_key_list("A")`)).
		WillReturnRows(sqlmock.NewRows(fkColumns).AddRow(0, 0, "A", "parent", "id", "CASCADE", "SET NULL", "NONE"))
	mock.ExpectRollback()

	report, err := NewRunner(db, nil).Apply(context.Background(), []string{stmt})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, report.Tables)
	assert.Equal(t, []ForeignKey{{Table: "A", Column: "parent", RefTable: "A"}}, report.ForeignKeys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_MockedExecFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = NewRunner(db, nil).Apply(context.Background(), []string{"CREATE TABLE broken"})
	require.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

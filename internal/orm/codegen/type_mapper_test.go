package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

func TestTypeMapper_MapType(t *testing.T) {
	tests := []struct {
		typ      schema.ScalarType
		postgres string
		sqlite   string
		mysql    string
	}{
		{schema.TypeText, "TEXT", "TEXT", "VARCHAR(191)"},
		{schema.TypeInteger, "INTEGER", "INTEGER", "INT"},
		{schema.TypeBigInt, "BIGINT", "BIGINT", "BIGINT"},
		{schema.TypeFloat, "DOUBLE PRECISION", "REAL", "DOUBLE"},
		{schema.TypeDecimal, "DECIMAL(65,30)", "DECIMAL", "DECIMAL(65,30)"},
		{schema.TypeCheckbox, "BOOLEAN", "BOOLEAN", "BOOLEAN"},
		{schema.TypeTimestamp, "TIMESTAMP(3)", "DATETIME", "DATETIME(3)"},
		{schema.TypeJSON, "JSONB", "TEXT", "JSON"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			for d, want := range map[dialect.Dialect]string{
				dialect.Postgres: tt.postgres,
				dialect.SQLite:   tt.sqlite,
				dialect.MySQL:    tt.mysql,
			} {
				got, err := NewTypeMapper(d).MapType(tt.typ)
				require.NoError(t, err)
				assert.Equal(t, want, got, d.String())
			}
		})
	}

	_, err := NewTypeMapper(dialect.Postgres).MapType("money")
	assert.EqualError(t, err, "unsupported type: money")
}

func TestTypeMapper_MapIDColumn(t *testing.T) {
	assert.Equal(t, "TEXT NOT NULL PRIMARY KEY", NewTypeMapper(dialect.Postgres).MapIDColumn(schema.IDCuid))
	assert.Equal(t, "VARCHAR(191) NOT NULL PRIMARY KEY", NewTypeMapper(dialect.MySQL).MapIDColumn(schema.IDUUID))
	assert.Equal(t, "SERIAL PRIMARY KEY", NewTypeMapper(dialect.Postgres).MapIDColumn(schema.IDAutoincrement))
	assert.Equal(t, "INTEGER PRIMARY KEY AUTOINCREMENT", NewTypeMapper(dialect.SQLite).MapIDColumn(schema.IDAutoincrement))
	assert.Equal(t, "INT NOT NULL AUTO_INCREMENT PRIMARY KEY", NewTypeMapper(dialect.MySQL).MapIDColumn(schema.IDAutoincrement))

	assert.Equal(t, "INTEGER", NewTypeMapper(dialect.Postgres).MapReferenceType(schema.IDAutoincrement))
	assert.Equal(t, "INT", NewTypeMapper(dialect.MySQL).MapReferenceType(schema.IDAutoincrement))
	assert.Equal(t, "TEXT", NewTypeMapper(dialect.SQLite).MapReferenceType(schema.IDCuid))
}

func TestTypeMapper_MapDefault(t *testing.T) {
	tests := []struct {
		name    string
		typ     schema.ScalarType
		raw     string
		want    string
		wantErr bool
	}{
		{"none", schema.TypeText, "", "", false},
		{"empty string", schema.TypeText, `""`, "''", false},
		{"quoted", schema.TypeText, `"it's"`, "'it''s'", false},
		{"escaped", schema.TypeText, `"a\"b"`, `'a"b'`, false},
		{"now", schema.TypeTimestamp, "now()", "CURRENT_TIMESTAMP", false},
		{"now on text", schema.TypeText, "now()", "", true},
		{"cuid", schema.TypeText, "cuid()", "", false},
		{"uuid on integer", schema.TypeInteger, "uuid()", "", true},
		{"true", schema.TypeCheckbox, "true", "TRUE", false},
		{"false on text", schema.TypeText, "false", "", true},
		{"integer", schema.TypeInteger, "42", "42", false},
		{"float", schema.TypeFloat, "-1.5", "-1.5", false},
		{"unterminated", schema.TypeText, `"abc`, "", true},
		{"unknown function", schema.TypeText, "dbgenerated()", "", true},
	}

	tm := NewTypeMapper(dialect.Postgres)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tm.MapDefault(&schema.Scalar{Type: tt.typ, Default: tt.raw})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeMapper_QuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"User"`, NewTypeMapper(dialect.Postgres).QuoteIdentifier("User"))
	assert.Equal(t, `"a""b"`, NewTypeMapper(dialect.SQLite).QuoteIdentifier(`a"b`))
	assert.Equal(t, "`a``b`", NewTypeMapper(dialect.MySQL).QuoteIdentifier("a`b"))
}

func TestPrismaTypes(t *testing.T) {
	for typ, want := range map[schema.ScalarType]string{
		schema.TypeText:      "String",
		schema.TypeInteger:   "Int",
		schema.TypeBigInt:    "BigInt",
		schema.TypeFloat:     "Float",
		schema.TypeDecimal:   "Decimal",
		schema.TypeCheckbox:  "Boolean",
		schema.TypeTimestamp: "DateTime",
		schema.TypeJSON:      "Json",
	} {
		got, err := PrismaType(typ)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := PrismaType("money")
	assert.Error(t, err)

	assert.Equal(t, "Int", PrismaIDType(schema.IDAutoincrement))
	assert.Equal(t, "String", PrismaIDType(schema.IDUUID))
	assert.Equal(t, "@id @default(uuid())", PrismaIDAttributes(schema.IDUUID))
	assert.Equal(t, "@id @default(cuid())", PrismaIDAttributes(schema.IDCuid))
}

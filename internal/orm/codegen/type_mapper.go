// Package codegen emits the resolved relationship graph as a Prisma schema,
// as SQL DDL for one storage dialect, and as a JSON manifest.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// TypeMapper maps model types to the column types of one dialect
type TypeMapper struct {
	dialect dialect.Dialect
}

// NewTypeMapper creates a new TypeMapper
func NewTypeMapper(d dialect.Dialect) *TypeMapper {
	return &TypeMapper{dialect: d}
}

// MapType converts a scalar type to a column type
func (tm *TypeMapper) MapType(t schema.ScalarType) (string, error) {
	switch t {
	case schema.TypeText:
		return tm.stringType(), nil

	case schema.TypeInteger:
		if tm.dialect == dialect.MySQL {
			return "INT", nil
		}
		return "INTEGER", nil

	case schema.TypeBigInt:
		return "BIGINT", nil

	case schema.TypeFloat:
		switch tm.dialect {
		case dialect.SQLite:
			return "REAL", nil
		case dialect.MySQL:
			return "DOUBLE", nil
		}
		return "DOUBLE PRECISION", nil

	case schema.TypeDecimal:
		if tm.dialect == dialect.SQLite {
			return "DECIMAL", nil
		}
		return "DECIMAL(65,30)", nil

	case schema.TypeCheckbox:
		return "BOOLEAN", nil

	case schema.TypeTimestamp:
		switch tm.dialect {
		case dialect.SQLite:
			return "DATETIME", nil
		case dialect.MySQL:
			return "DATETIME(3)", nil
		}
		return "TIMESTAMP(3)", nil

	case schema.TypeJSON:
		switch tm.dialect {
		case dialect.SQLite:
			return "TEXT", nil
		case dialect.MySQL:
			return "JSON", nil
		}
		return "JSONB", nil

	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

// stringType is the column type of text and of string ids. MySQL cannot index
// TEXT without a prefix length.
func (tm *TypeMapper) stringType() string {
	if tm.dialect == dialect.MySQL {
		return "VARCHAR(191)"
	}
	return "TEXT"
}

// MapReferenceType returns the column type of a column holding an id of the
// given kind: foreign keys and join table columns.
func (tm *TypeMapper) MapReferenceType(kind schema.IDKind) string {
	if kind != schema.IDAutoincrement {
		return tm.stringType()
	}
	if tm.dialect == dialect.MySQL {
		return "INT"
	}
	return "INTEGER"
}

// MapIDColumn returns the definition of the implicit id column, without its name
func (tm *TypeMapper) MapIDColumn(kind schema.IDKind) string {
	if kind != schema.IDAutoincrement {
		return tm.stringType() + " NOT NULL PRIMARY KEY"
	}
	switch tm.dialect {
	case dialect.SQLite:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case dialect.MySQL:
		return "INT NOT NULL AUTO_INCREMENT PRIMARY KEY"
	}
	return "SERIAL PRIMARY KEY"
}

// MapNullability returns the NULL/NOT NULL constraint for a column
func (tm *TypeMapper) MapNullability(nullable bool) string {
	if nullable {
		return "NULL"
	}
	return "NOT NULL"
}

// MapDefault converts the raw default expression of a scalar into a DEFAULT
// value. Defaults generated by the client, cuid() and uuid(), have no column
// default and yield "".
func (tm *TypeMapper) MapDefault(s *schema.Scalar) (string, error) {
	raw := strings.TrimSpace(s.Default)
	switch {
	case raw == "":
		return "", nil

	case raw == "now()":
		if s.Type != schema.TypeTimestamp {
			return "", fmt.Errorf("default now() requires a timestamp, got %s", s.Type)
		}
		return "CURRENT_TIMESTAMP", nil

	case raw == "cuid()" || raw == "uuid()":
		if s.Type != schema.TypeText {
			return "", fmt.Errorf("default %s requires text, got %s", raw, s.Type)
		}
		return "", nil

	case strings.HasPrefix(raw, `"`):
		str, err := strconv.Unquote(raw)
		if err != nil {
			return "", fmt.Errorf("invalid string default %s: %w", raw, err)
		}
		// Escape single quotes by doubling them
		return "'" + strings.ReplaceAll(str, "'", "''") + "'", nil

	case raw == "true" || raw == "false":
		if s.Type != schema.TypeCheckbox {
			return "", fmt.Errorf("default %s requires a checkbox, got %s", raw, s.Type)
		}
		return strings.ToUpper(raw), nil
	}

	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return raw, nil
	}
	return "", fmt.Errorf("unsupported default expression: %s", raw)
}

// QuoteIdentifier quotes a table, column, index or constraint name for the
// dialect.
func (tm *TypeMapper) QuoteIdentifier(identifier string) string {
	if tm.dialect == dialect.MySQL {
		return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
	}
	return pq.QuoteIdentifier(identifier)
}

// PrismaType maps a scalar type to its Prisma field type
func PrismaType(t schema.ScalarType) (string, error) {
	switch t {
	case schema.TypeText:
		return "String", nil
	case schema.TypeInteger:
		return "Int", nil
	case schema.TypeBigInt:
		return "BigInt", nil
	case schema.TypeFloat:
		return "Float", nil
	case schema.TypeDecimal:
		return "Decimal", nil
	case schema.TypeCheckbox:
		return "Boolean", nil
	case schema.TypeTimestamp:
		return "DateTime", nil
	case schema.TypeJSON:
		return "Json", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

// PrismaIDType returns the Prisma type of an id of the given kind
func PrismaIDType(kind schema.IDKind) string {
	if kind == schema.IDAutoincrement {
		return "Int"
	}
	return "String"
}

// PrismaIDAttributes returns the attributes of the implicit id field
func PrismaIDAttributes(kind schema.IDKind) string {
	switch kind {
	case schema.IDUUID:
		return "@id @default(uuid())"
	case schema.IDAutoincrement:
		return "@id @default(autoincrement())"
	}
	return "@id @default(cuid())"
}

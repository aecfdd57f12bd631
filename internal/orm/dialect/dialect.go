// Package dialect identifies the storage dialect the schema is emitted for.
// Resolution never looks at it; only the emitters do.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect is a storage dialect identifier, spelled the way Prisma spells its
// datasource providers.
type Dialect string

// Supported dialects
const (
	Postgres Dialect = "postgresql"
	SQLite   Dialect = "sqlite"
	MySQL    Dialect = "mysql"
)

// Default is used when no dialect is configured
const Default = Postgres

var aliases = map[string]Dialect{
	"postgresql": Postgres,
	"postgres":   Postgres,
	"pg":         Postgres,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"mysql":      MySQL,
}

// Parse returns the dialect named by s. Matching is case-insensitive and
// accepts the common driver aliases.
func Parse(s string) (Dialect, error) {
	if s == "" {
		return Default, nil
	}
	if d, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unsupported dialect %q (expected one of %s)", s, strings.Join(Names(), ", "))
}

// Names returns the canonical dialect names
func Names() []string {
	return []string{string(Postgres), string(SQLite), string(MySQL)}
}

// Provider returns the Prisma datasource provider
func (d Dialect) Provider() string {
	return string(d)
}

// String returns the dialect name
func (d Dialect) String() string {
	return string(d)
}

// InlineForeignKeys reports whether foreign keys are declared inside CREATE
// TABLE rather than added afterwards. SQLite cannot ALTER TABLE ADD CONSTRAINT.
func (d Dialect) InlineForeignKeys() bool {
	return d == SQLite
}

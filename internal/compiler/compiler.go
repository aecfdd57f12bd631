// Package compiler runs the relationship compiler pipeline: model registry,
// reference resolution, cardinality classification, naming, then emission.
// Compile is pure: it reads nothing but its arguments and writes nothing.
package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/relc/internal/orm/codegen"
	"github.com/conduit-lang/relc/internal/orm/dialect"
	"github.com/conduit-lang/relc/internal/orm/relationships"
	"github.com/conduit-lang/relc/internal/orm/schema"
)

// Options configures a compilation
type Options struct {
	// Dialect of the emitted schema. Empty means dialect.Default.
	Dialect dialect.Dialect
	// URLEnv and ShadowURLEnv name the environment variables of the Prisma
	// datasource. An empty URLEnv means DATABASE_URL; an empty ShadowURLEnv
	// omits the shadow database.
	URLEnv       string
	ShadowURLEnv string
	// SortLists emits lists sorted by name, making the output independent of
	// the order lists are declared in.
	SortLists bool
	// OwnerPolicy picks the foreign-key side of one to one relations without
	// a db.foreignKey hint. Nil means relationships.DefaultOwnerPolicy.
	OwnerPolicy relationships.OwnerPolicy
	// Logger receives one debug entry per stage. Nil discards logs.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Dialect == "" {
		o.Dialect = dialect.Default
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Result is the output of a successful compilation
type Result struct {
	Graph *relationships.Graph
	// Schema is the Prisma schema text
	Schema string
	// DDL holds the SQL statements for Options.Dialect
	DDL []string
	// Manifest is the JSON manifest
	Manifest string
}

// Resolve runs the pipeline up to the resolved graph
func Resolve(model *schema.Model, opts Options) (*relationships.Graph, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	registry, err := schema.NewRegistry(model)
	if err != nil {
		return nil, err
	}
	log.Debug("registered model",
		zap.Int("lists", registry.Count()),
		zap.Int("fields", registry.FieldCount()),
	)

	var resolveOpts []relationships.Option
	if opts.OwnerPolicy != nil {
		resolveOpts = append(resolveOpts, relationships.WithOwnerPolicy(opts.OwnerPolicy))
	}
	graph, err := relationships.Resolve(registry, resolveOpts...)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved relationships",
		zap.Int("relations", len(graph.Relations)),
		zap.Int("join_tables", len(graph.ManyToMany())),
	)

	return graph, nil
}

// Compile resolves model and emits every output. It stops at the first
// error and returns no partial result.
func Compile(model *schema.Model, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	graph, err := Resolve(model, opts)
	if err != nil {
		return nil, err
	}

	prisma := codegen.NewPrismaGenerator(codegen.Datasource{
		Dialect:      opts.Dialect,
		URLEnv:       opts.URLEnv,
		ShadowURLEnv: opts.ShadowURLEnv,
	})
	prisma.SortLists = opts.SortLists
	text, err := prisma.Generate(graph)
	if err != nil {
		return nil, fmt.Errorf("generating prisma schema: %w", err)
	}
	log.Debug("emitted prisma schema", zap.Int("bytes", len(text)))

	ddl := codegen.NewDDLGenerator(opts.Dialect)
	ddl.SortLists = opts.SortLists
	stmts, err := ddl.Generate(graph)
	if err != nil {
		return nil, fmt.Errorf("generating %s ddl: %w", opts.Dialect, err)
	}
	log.Debug("emitted ddl",
		zap.Stringer("dialect", opts.Dialect),
		zap.Int("statements", len(stmts)),
	)

	manifest := codegen.NewManifestGenerator(opts.Dialect)
	manifest.SortLists = opts.SortLists
	doc, err := manifest.Generate(graph)
	if err != nil {
		return nil, err
	}
	log.Debug("emitted manifest", zap.Int("bytes", len(doc)))

	return &Result{
		Graph:    graph,
		Schema:   text,
		DDL:      stmts,
		Manifest: doc,
	}, nil
}

// Package ontoc compiles the ontology transformation DSL into Cypher
// statement blocks. Compilation is a pure function of the input text: it
// tokenizes, parses, and generates in one synchronous pass, owns no shared
// state, and either fully succeeds or fails with the first error.
package ontoc

import (
	"context"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"github.com/ontodsl/ontoc/internal/cypher"
	"github.com/ontodsl/ontoc/parser"
)

// Option configures a compile invocation.
type Option func(*config)

type config struct {
	log logr.Logger
}

// WithLogger attaches a logger for phase tracing at V(1). The default
// discards all output.
func WithLogger(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Compile reads DSL text and returns the generated Cypher, or the first
// lexical, syntax, or semantic error. No partial output is produced for a
// failing program.
func Compile(ctx context.Context, r io.Reader, opts ...Option) (string, error) {
	cfg := config{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := parser.New(r)
	program, err := p.ParseProgram(ctx)
	if err != nil {
		return "", err
	}
	cfg.log.V(1).Info("parsed program", "statements", len(program.Statements))

	out, err := cypher.Generate(program, p.Symbols())
	if err != nil {
		return "", err
	}
	cfg.log.V(1).Info("generated cypher", "blocks", strings.Count(out, "\n\n")+1, "bytes", len(out))

	return out, nil
}

// CompileString is a convenience wrapper over Compile for in-memory input.
func CompileString(ctx context.Context, src string, opts ...Option) (string, error) {
	return Compile(ctx, strings.NewReader(src), opts...)
}

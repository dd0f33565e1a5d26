// Package ensue embeds the interpreter: parse source, run it against a persistent global frame
// and read the results back.
package ensue

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"ensue/internal/ast"
	"ensue/internal/evaluator"
	"ensue/internal/foreign"
	"ensue/internal/lexer"
	"ensue/internal/object"
	"ensue/internal/parser"
	"ensue/internal/token"
	"ensue/internal/util"
)

// Runtime keeps one global frame across calls to Eval, so definitions from one call are
// visible to the next.
type Runtime struct {
	ctx     *evaluator.Context
	config  util.Configuration
	out     io.Writer
	logger  *slog.Logger
	prelude string
}

// New creates a runtime with the builtins and the prelude loaded. The prelude is always read with
// the default indent width; if it fails the error is logged and the runtime keeps whatever the
// prelude defined before failing.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		config:  util.DefaultConfiguration(),
		out:     os.Stdout,
		logger:  slog.Default(),
		prelude: DefaultPrelude,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.ctx = evaluator.New(
		evaluator.WithKeywords(foreign.Keywords()),
		evaluator.WithGlobals(foreign.Globals()),
		evaluator.WithOutput(r.out),
		evaluator.WithLogger(r.logger),
		evaluator.WithMaxDepth(r.config.MaxDepth),
	)

	if !r.config.NoPrelude && r.prelude != "" {
		program, err := parser.ParseSource(r.prelude)
		if err == nil {
			_, err = r.ctx.RunProgram(program.Commands)
		}
		if err != nil {
			r.logger.Error("prelude failed", slog.Any("error", err))
		}
	}
	return r
}

// Parse lexes and builds src without running it.
func (r *Runtime) Parse(src string) (*ast.Program, error) {
	return parser.ParseSource(src, lexer.WithIndentWidth(r.config.IndentWidth))
}

// Eval runs src and returns the value of its last top-level command, or the value of a
// top-level return.
func (r *Runtime) Eval(src string) (object.Variant, error) {
	program, err := r.Parse(src)
	if err != nil {
		return nil, err
	}
	return r.ctx.RunProgram(program.Commands)
}

// EvalReader reads everything from reader and evaluates it.
func (r *Runtime) EvalReader(reader io.Reader) (object.Variant, error) {
	src, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return r.Eval(string(src))
}

// EvalFile evaluates the file at path.
func (r *Runtime) EvalFile(path string) (object.Variant, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return r.Eval(string(src))
}

// Global returns the value bound to name in the global frame.
func (r *Runtime) Global(name string) (object.Variant, bool) {
	val, ok, err := r.ctx.Global().Get(name, token.Mark{})
	if err != nil {
		return nil, false
	}
	return val, ok
}

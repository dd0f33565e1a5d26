package evaluator

import (
	"io"
	"log/slog"
	"os"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
	"ensue/internal/token"
)

const DefaultMaxDepth = 10000

// Context walks the command tree against a scope chain, innermost frame last.
type Context struct {
	scopes   []*object.Table
	slots    []object.Variant
	keywords map[string]object.NativeFn
	out      io.Writer
	logger   *slog.Logger
	depth    int
	maxDepth int
}

type Option func(*Context)

// WithKeywords installs the handlers for reserved-word command heads.
func WithKeywords(keywords map[string]object.NativeFn) Option {
	return func(c *Context) {
		for k, fn := range keywords {
			c.keywords[k] = fn
		}
	}
}

// WithGlobals binds values in the global frame.
func WithGlobals(globals map[string]object.Variant) Option {
	return func(c *Context) {
		for name, val := range globals {
			_, _, _ = c.scopes[0].Insert(name, val, token.Mark{})
		}
	}
}

func WithOutput(w io.Writer) Option {
	return func(c *Context) {
		c.out = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxDepth bounds nested closure calls.
func WithMaxDepth(depth int) Option {
	return func(c *Context) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// New creates a root context with a single, empty global frame.
func New(opts ...Option) *Context {
	c := &Context{
		scopes:   []*object.Table{object.NewTable()},
		keywords: map[string]object.NativeFn{},
		out:      os.Stdout,
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Global returns the outermost frame.
func (c *Context) Global() *object.Table {
	return c.scopes[0]
}

func (c *Context) Output() io.Writer {
	return c.out
}

func (c *Context) Slots() []object.Variant {
	return c.slots
}

// Scopes returns the active chain. The result is clipped so appending to it never writes into
// this context's chain.
func (c *Context) Scopes() []*object.Table {
	return c.scopes[:len(c.scopes):len(c.scopes)]
}

func (c *Context) PushScope(frame *object.Table) {
	c.scopes = append(c.scopes, frame)
	c.logger.Debug("push scope", slog.Int("depth", len(c.scopes)))
}

func (c *Context) PopScope(mark token.Mark) error {
	if len(c.scopes) == 0 {
		return backtrace.NewBug(mark, "attempted to pop from an empty scope chain")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.logger.Debug("pop scope", slog.Int("depth", len(c.scopes)))
	return nil
}

// Lookup walks the chain from the innermost frame outwards.
func (c *Context) Lookup(name string, mark token.Mark) (object.Variant, bool, error) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		val, ok, err := c.scopes[i].Get(name, mark)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return val, true, nil
		}
	}
	return nil, false, nil
}

// Define binds name in the innermost frame, shadowing outer bindings.
func (c *Context) Define(name string, val object.Variant, mark token.Mark) error {
	if len(c.scopes) == 0 {
		return backtrace.NewBug(mark, "no scope to define `%s` in", name)
	}
	_, _, err := c.scopes[len(c.scopes)-1].Insert(name, val, mark)
	return err
}

// Assign overwrites name in the nearest frame that already holds it.
func (c *Context) Assign(name string, val object.Variant, mark token.Mark) error {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		ok, err := c.scopes[i].ContainsKey(name, mark)
		if err != nil {
			return err
		}
		if ok {
			_, _, err = c.scopes[i].Insert(name, val, mark)
			return err
		}
	}
	return backtrace.New(backtrace.Resolution, mark, "failed to assign to `%s`: not defined in any accessible scope", name)
}

// ResolveVariant turns an atom into a value. Identifiers that are not bound anywhere in the
// chain are an error; nested commands run and must complete normally.
func (c *Context) ResolveVariant(atom ast.Atom) (object.Variant, error) {
	switch atom.Kind {
	case ast.NUMBER:
		return object.Number{Value: atom.Number}, nil
	case ast.STRING:
		return object.String{Value: atom.Text}, nil
	case ast.IDENTIFIER:
		val, ok, err := c.Lookup(atom.Text, atom.Mark)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, backtrace.New(backtrace.Resolution, atom.Mark, "undefined identifier `%s`", atom.Text)
		}
		return val, nil
	case ast.COMMAND:
		sig, err := c.RunCommand(atom.Children)
		if err != nil {
			return nil, err
		}
		if !sig.IsComplete() {
			return nil, backtrace.New(backtrace.ControlFlow, sig.Mark, "%s cannot be used as a value", sig.Kind)
		}
		return sig.Value, nil
	case ast.KEYWORD:
		return nil, backtrace.Newf(atom.Mark, "keyword `%s` is not a value", atom.Text)
	}
	return nil, backtrace.NewBug(atom.Mark, "unknown atom kind %s", atom.Kind)
}

func (c *Context) ResolveNumber(atom ast.Atom) (float64, error) {
	val, err := c.ResolveVariant(atom)
	if err != nil {
		return 0, err
	}
	n, ok := val.(object.Number)
	if !ok {
		return 0, backtrace.New(backtrace.Type, atom.Mark, "expected a number, got `%s` (%s)", val.Represent(), val.Type())
	}
	return n.Value, nil
}

func (c *Context) ResolveString(atom ast.Atom) (string, error) {
	val, err := c.ResolveVariant(atom)
	if err != nil {
		return "", err
	}
	s, ok := val.(object.String)
	if !ok {
		return "", backtrace.New(backtrace.Type, atom.Mark, "expected a string, got `%s` (%s)", val.Represent(), val.Type())
	}
	return s.Value, nil
}

// RunCommand dispatches on the command head: reserved words go to their keyword handler and
// identifiers must name a function or closure.
func (c *Context) RunCommand(cmd ast.Command) (object.Signal, error) {
	head, ok := cmd.Head()
	if !ok {
		return object.Signal{}, backtrace.NewBug(token.Mark{}, "empty command")
	}
	switch head.Kind {
	case ast.KEYWORD:
		fn, ok := c.keywords[head.Text]
		if !ok {
			return object.Signal{}, backtrace.Newf(head.Mark, "keyword `%s` cannot start a command", head.Text)
		}
		return fn(c, cmd)
	case ast.IDENTIFIER:
		callee, err := c.ResolveVariant(head)
		if err != nil {
			return object.Signal{}, err
		}
		return c.Call(callee, cmd)
	}
	return object.Signal{}, backtrace.Newf(head.Mark, "invalid command head %s `%s`", head.Kind, head.String())
}

// Call invokes a function or closure with the atoms of the call site, head included.
func (c *Context) Call(callee object.Variant, cmd ast.Command) (object.Signal, error) {
	mark := headMark(cmd)
	switch fn := callee.(type) {
	case *object.Function:
		return fn.Fn(c, cmd)
	case *object.Closure:
		return c.callClosure(fn, cmd)
	}
	return object.Signal{}, backtrace.New(backtrace.Type, mark, "`%s` (%s) is not callable", callee.Represent(), callee.Type())
}

// RunStatements runs body in order inside frame. It stops at the first signal other than
// complete and otherwise yields the value of the last statement, or null for an empty body.
// A nil frame runs the body in the current innermost frame.
func (c *Context) RunStatements(body ast.Command, frame *object.Table) (sig object.Signal, err error) {
	if frame != nil {
		c.PushScope(frame)
		defer func() {
			if popErr := c.PopScope(headMark(body)); popErr != nil && err == nil {
				err = popErr
			}
		}()
	}
	result := object.Complete(object.NULL)
	for _, atom := range body {
		if atom.Kind == ast.COMMAND {
			result, err = c.RunCommand(atom.Children)
			if err != nil {
				return object.Signal{}, err
			}
			if !result.IsComplete() {
				return result, nil
			}
			continue
		}
		var val object.Variant
		val, err = c.ResolveVariant(atom)
		if err != nil {
			return object.Signal{}, err
		}
		result = object.Complete(val)
	}
	return result, nil
}

// RunProgram runs top-level commands in the global frame. A return ends the program with its
// value; break and continue have no loop to unwind to.
func (c *Context) RunProgram(commands []ast.Command) (object.Variant, error) {
	var last object.Variant = object.NULL
	for _, cmd := range commands {
		sig, err := c.RunCommand(cmd)
		if err != nil {
			return nil, err
		}
		switch sig.Kind {
		case object.RETURN:
			return sig.Value, nil
		case object.BREAK, object.CONTINUE:
			return nil, loopControlError(sig)
		}
		last = sig.Value
	}
	return last, nil
}

func loopControlError(sig object.Signal) error {
	return backtrace.New(backtrace.ControlFlow, sig.Mark, "%s outside loop", sig.Kind)
}

func headMark(cmd ast.Command) token.Mark {
	if head, ok := cmd.Head(); ok {
		return head.Mark
	}
	return token.Mark{}
}

package object

import (
	"io"
	"math"
	"strconv"

	"ensue/internal/ast"
	"ensue/internal/token"
)

type ObjectType string

const (
	NULL_OBJ     = "NULL"
	BOOLEAN_OBJ  = "BOOLEAN"
	NUMBER_OBJ   = "NUMBER"
	STRING_OBJ   = "STRING"
	TABLE_OBJ    = "TABLE"
	CLOSURE_OBJ  = "CLOSURE"
	FUNCTION_OBJ = "FUNCTION"
)

var (
	NULL  = Null{}
	TRUE  = Bool{Value: true}
	FALSE = Bool{Value: false}
)

// Variant is the closed set of runtime values. Scalars are plain values; Table, Closure and
// Function are shared handles, so copying a Variant never copies their contents.
type Variant interface {
	Type() ObjectType
	Represent() string
	variant()
}

// Context is the part of the evaluator exposed to native builtins.
type Context interface {
	ResolveVariant(atom ast.Atom) (Variant, error)
	ResolveNumber(atom ast.Atom) (float64, error)
	ResolveString(atom ast.Atom) (string, error)
	RunCommand(cmd ast.Command) (Signal, error)
	RunStatements(body ast.Command, frame *Table) (Signal, error)
	PushScope(frame *Table)
	PopScope(mark token.Mark) error
	Scopes() []*Table
	Slots() []Variant
	Define(name string, val Variant, mark token.Mark) error
	Assign(name string, val Variant, mark token.Mark) error
	Lookup(name string, mark token.Mark) (Variant, bool, error)
	Call(callee Variant, cmd ast.Command) (Signal, error)
	Output() io.Writer
}

// NativeFn receives the whole command, head included, and resolves its own arguments.
type NativeFn func(ctx Context, cmd ast.Command) (Signal, error)

type Null struct{}

func (n Null) Type() ObjectType  { return NULL_OBJ }
func (n Null) Represent() string { return "null" }
func (Null) variant()            {}

type Bool struct {
	Value bool
}

func (b Bool) Type() ObjectType { return BOOLEAN_OBJ }
func (b Bool) Represent() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (Bool) variant() {}

type Number struct {
	Value float64
}

func (n Number) Type() ObjectType  { return NUMBER_OBJ }
func (n Number) Represent() string { return FormatNumber(n.Value) }
func (Number) variant()            {}

type String struct {
	Value string
}

func (s String) Type() ObjectType  { return STRING_OBJ }
func (s String) Represent() string { return s.Value }
func (String) variant()            {}

// Closure pairs a body with the scope chain in effect where it was created. The chain holds
// the same Table handles as the defining context, so later writes to those frames are visible.
type Closure struct {
	Mark   token.Mark
	Params []string
	Body   ast.Command
	Scopes []*Table
}

func NewClosure(mark token.Mark, params []string, body ast.Command, scopes []*Table) *Closure {
	captured := make([]*Table, len(scopes))
	copy(captured, scopes)
	return &Closure{Mark: mark, Params: params, Body: body, Scopes: captured}
}

func (c *Closure) Type() ObjectType  { return CLOSURE_OBJ }
func (c *Closure) Represent() string { return "<closure>" }
func (*Closure) variant()            {}

// Function is a builtin implemented in Go.
type Function struct {
	Name string
	Fn   NativeFn
}

func (f *Function) Type() ObjectType  { return FUNCTION_OBJ }
func (f *Function) Represent() string { return "<function " + f.Name + ">" }
func (*Function) variant()            {}

func NativeBool(b bool) Bool {
	if b {
		return TRUE
	}
	return FALSE
}

// FormatNumber prints integral values without a fraction and everything else in the shortest
// form that round-trips.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

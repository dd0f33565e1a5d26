package foreign

import (
	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
)

// expectArgs checks that cmd, head included, has at least min atoms.
func expectArgs(cmd ast.Command, min int) error {
	if len(cmd) < min {
		head, _ := cmd.Head()
		return backtrace.Newf(head.Mark, "`%s` expects at least %d argument(s), got %d", head.Text, min-1, len(cmd)-1)
	}
	return nil
}

// expectExactArgs checks that cmd, head included, has exactly n atoms.
func expectExactArgs(cmd ast.Command, n int) error {
	if len(cmd) != n {
		head, _ := cmd.Head()
		return backtrace.Newf(head.Mark, "`%s` expects %d argument(s), got %d", head.Text, n-1, len(cmd)-1)
	}
	return nil
}

func identifierArg(atom ast.Atom) (string, error) {
	if atom.Kind != ast.IDENTIFIER {
		return "", backtrace.Newf(atom.Mark, "expected an identifier, got %s `%s`", atom.Kind, atom.String())
	}
	return atom.Text, nil
}

func tableArg(ctx object.Context, atom ast.Atom) (*object.Table, error) {
	val, err := ctx.ResolveVariant(atom)
	if err != nil {
		return nil, err
	}
	t, ok := val.(*object.Table)
	if !ok {
		return nil, backtrace.New(backtrace.Type, atom.Mark, "expected a table, got `%s` (%s)", val.Represent(), val.Type())
	}
	return t, nil
}

// keyArg resolves a table key. Numbers are accepted and use their printed form, so row 0 of a
// query result is `get rows 0`.
func keyArg(ctx object.Context, atom ast.Atom) (string, error) {
	val, err := ctx.ResolveVariant(atom)
	if err != nil {
		return "", err
	}
	switch k := val.(type) {
	case object.String:
		return k.Value, nil
	case object.Number:
		return k.Represent(), nil
	}
	return "", backtrace.New(backtrace.Type, atom.Mark, "`%s` (%s) cannot be used as a table key", val.Represent(), val.Type())
}

func resolveAll(ctx object.Context, atoms ast.Command) ([]object.Variant, error) {
	out := make([]object.Variant, 0, len(atoms))
	for _, atom := range atoms {
		val, err := ctx.ResolveVariant(atom)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

package foreign

import (
	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
	"ensue/internal/token"
)

// kwLet binds a value in the innermost frame. The value is null when absent, a single atom, a
// closure literal introduced by `fn`, or otherwise the result of running the remaining atoms as
// a command, so `let t table "a" 1` binds a new table.
func kwLet(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	name, err := identifierArg(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}

	var val object.Variant = object.NULL
	switch {
	case len(cmd) == 2:
	case cmd[2].IsKeyword("fn"):
		val, err = makeClosure(ctx, cmd[2].Mark, cmd[3:])
	case len(cmd) == 3:
		val, err = ctx.ResolveVariant(cmd[2])
	default:
		var sig object.Signal
		if sig, err = ctx.RunCommand(cmd[2:]); err == nil && !sig.IsComplete() {
			err = backtrace.New(backtrace.ControlFlow, sig.Mark, "%s cannot be used as a value", sig.Kind)
		}
		val = sig.Value
	}
	if err != nil {
		return object.Signal{}, err
	}

	if err := ctx.Define(name, val, cmd[1].Mark); err != nil {
		return object.Signal{}, err
	}
	return object.Complete(val), nil
}

func kwFn(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	cl, err := makeClosure(ctx, cmd[0].Mark, cmd[1:])
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(cl), nil
}

// makeClosure splits atoms into leading identifier parameters and the body that follows.
// Parameter names must be distinct.
func makeClosure(ctx object.Context, mark token.Mark, atoms ast.Command) (*object.Closure, error) {
	var params []string
	i := 0
	seen := map[string]bool{}
	for ; i < len(atoms) && atoms[i].Kind == ast.IDENTIFIER; i++ {
		if seen[atoms[i].Text] {
			return nil, backtrace.New(backtrace.Structure, atoms[i].Mark, "duplicate parameter `%s`", atoms[i].Text)
		}
		seen[atoms[i].Text] = true
		params = append(params, atoms[i].Text)
	}
	body := atoms[i:]
	for _, atom := range body {
		if atom.Kind == ast.KEYWORD {
			return nil, backtrace.New(backtrace.Structure, atom.Mark, "unexpected keyword `%s` in closure body", atom.Text)
		}
	}
	return object.NewClosure(mark, params, body, ctx.Scopes()), nil
}

func kwReturn(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	switch len(cmd) {
	case 1:
		return object.Return(object.NULL, cmd[0].Mark), nil
	case 2:
		val, err := ctx.ResolveVariant(cmd[1])
		if err != nil {
			return object.Signal{}, err
		}
		return object.Return(val, cmd[0].Mark), nil
	}
	return object.Signal{}, expectExactArgs(cmd, 2)
}

func kwBreak(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 1); err != nil {
		return object.Signal{}, err
	}
	return object.Break(cmd[0].Mark), nil
}

func kwContinue(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 1); err != nil {
		return object.Signal{}, err
	}
	return object.Continue(cmd[0].Mark), nil
}

type branch struct {
	cond *ast.Atom // nil for else
	body ast.Command
}

// kwIf runs the body of the first branch whose condition is truthy. Later branches are joined
// onto the command by `ensuing elif` and `ensuing else` lines.
func kwIf(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	branches, err := splitBranches(cmd)
	if err != nil {
		return object.Signal{}, err
	}
	for _, b := range branches {
		if b.cond != nil {
			val, err := ctx.ResolveVariant(*b.cond)
			if err != nil {
				return object.Signal{}, err
			}
			if !object.Truthy(val) {
				continue
			}
		}
		return ctx.RunStatements(b.body, object.NewTable())
	}
	return object.Complete(object.NULL), nil
}

func splitBranches(cmd ast.Command) ([]branch, error) {
	var segments []ast.Command
	start := 1
	for i := 1; i <= len(cmd); i++ {
		if i == len(cmd) || cmd[i].IsKeyword(token.Ensuing) {
			segments = append(segments, cmd[start:i])
			start = i + 1
		}
	}

	var branches []branch
	for n, seg := range segments {
		if n == 0 {
			if len(seg) == 0 {
				return nil, backtrace.New(backtrace.Structure, cmd[0].Mark, "`if` expects a condition")
			}
			branches = append(branches, branch{cond: &seg[0], body: seg[1:]})
			continue
		}
		if len(seg) == 0 {
			return nil, backtrace.New(backtrace.Structure, cmd[0].Mark, "dangling `ensuing`")
		}
		switch {
		case seg[0].IsKeyword("elif"):
			if len(seg) < 2 {
				return nil, backtrace.New(backtrace.Structure, seg[0].Mark, "`elif` expects a condition")
			}
			branches = append(branches, branch{cond: &seg[1], body: seg[2:]})
		case seg[0].IsKeyword("else"):
			if n != len(segments)-1 {
				return nil, backtrace.New(backtrace.Structure, seg[0].Mark, "`else` must be the last branch")
			}
			branches = append(branches, branch{body: seg[1:]})
		default:
			return nil, backtrace.New(backtrace.Structure, seg[0].Mark, "`ensuing` after `if` must continue with `elif` or `else`")
		}
	}
	return branches, nil
}

// kwWhile runs the body in a fresh frame for as long as the condition holds.
func kwWhile(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	cond, body := cmd[1], cmd[2:]
	for {
		val, err := ctx.ResolveVariant(cond)
		if err != nil {
			return object.Signal{}, err
		}
		if !object.Truthy(val) {
			return object.Complete(object.NULL), nil
		}
		sig, err := ctx.RunStatements(body, object.NewTable())
		if err != nil {
			return object.Signal{}, err
		}
		switch sig.Kind {
		case object.RETURN:
			return sig, nil
		case object.BREAK:
			return object.Complete(object.NULL), nil
		}
	}
}

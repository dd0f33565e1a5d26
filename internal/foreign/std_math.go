package foreign

import (
	"ensue/internal/ast"
	"ensue/internal/object"
	"ensue/internal/token"
)

type binaryOp func(lhs, rhs object.Variant, mark token.Mark) (object.Variant, error)

// fold resolves the operands left to right and combines them with op.
func fold(op binaryOp) object.NativeFn {
	return func(ctx object.Context, cmd ast.Command) (object.Signal, error) {
		if err := expectArgs(cmd, 3); err != nil {
			return object.Signal{}, err
		}
		acc, err := ctx.ResolveVariant(cmd[1])
		if err != nil {
			return object.Signal{}, err
		}
		for _, atom := range cmd[2:] {
			rhs, err := ctx.ResolveVariant(atom)
			if err != nil {
				return object.Signal{}, err
			}
			if acc, err = op(acc, rhs, atom.Mark); err != nil {
				return object.Signal{}, err
			}
		}
		return object.Complete(acc), nil
	}
}

var (
	fnAdd = fold(object.Add)
	fnSub = fold(object.Sub)
	fnMul = fold(object.Mul)
	fnDiv = fold(object.Div)
)

type relation func(lhs, rhs object.Variant, mark token.Mark) (bool, error)

// chain checks rel between each adjacent pair of operands and stops resolving at the first
// pair that fails.
func chain(rel relation) object.NativeFn {
	return func(ctx object.Context, cmd ast.Command) (object.Signal, error) {
		if err := expectArgs(cmd, 3); err != nil {
			return object.Signal{}, err
		}
		lhs, err := ctx.ResolveVariant(cmd[1])
		if err != nil {
			return object.Signal{}, err
		}
		for _, atom := range cmd[2:] {
			rhs, err := ctx.ResolveVariant(atom)
			if err != nil {
				return object.Signal{}, err
			}
			ok, err := rel(lhs, rhs, atom.Mark)
			if err != nil {
				return object.Signal{}, err
			}
			if !ok {
				return object.Complete(object.FALSE), nil
			}
			lhs = rhs
		}
		return object.Complete(object.TRUE), nil
	}
}

var (
	fnLess = chain(object.Less)

	fnGreater = chain(func(lhs, rhs object.Variant, mark token.Mark) (bool, error) {
		return object.Less(rhs, lhs, mark)
	})
	fnLessEqual = chain(func(lhs, rhs object.Variant, mark token.Mark) (bool, error) {
		greater, err := object.Less(rhs, lhs, mark)
		return !greater, err
	})
	fnGreaterEqual = chain(func(lhs, rhs object.Variant, mark token.Mark) (bool, error) {
		less, err := object.Less(lhs, rhs, mark)
		return !less, err
	})
	fnEqual = chain(func(lhs, rhs object.Variant, _ token.Mark) (bool, error) {
		return object.Equal(lhs, rhs), nil
	})
	fnNotEqual = chain(func(lhs, rhs object.Variant, _ token.Mark) (bool, error) {
		return !object.Equal(lhs, rhs), nil
	})
)

func fnNot(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	val, err := ctx.ResolveVariant(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(object.NativeBool(!object.Truthy(val))), nil
}

// fnAnd yields the first falsy operand or the last one. Operands after it are not resolved.
func fnAnd(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	return shortCircuit(ctx, cmd, false)
}

// fnOr yields the first truthy operand or the last one.
func fnOr(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	return shortCircuit(ctx, cmd, true)
}

func shortCircuit(ctx object.Context, cmd ast.Command, stopOn bool) (object.Signal, error) {
	if err := expectArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	var val object.Variant
	for _, atom := range cmd[1:] {
		var err error
		if val, err = ctx.ResolveVariant(atom); err != nil {
			return object.Signal{}, err
		}
		if object.Truthy(val) == stopOn {
			break
		}
	}
	return object.Complete(val), nil
}

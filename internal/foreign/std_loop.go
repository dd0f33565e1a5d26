package foreign

import (
	"math"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
)

// fnRep is the numeric stepping loop `rep NAME START END STEP BODY...`.
//
// The index walks from START towards END by STEP, upwards when START < END and downwards
// otherwise, and stops before reaching or passing END. Each iteration binds NAME in a fresh
// frame, so closures created in one iteration keep that iteration's index. A body with no
// statements and a START equal to END both return null without iterating. STEP and the
// bounds being finite are only checked once the body is known to be non-empty.
func fnRep(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectArgs(cmd, 5); err != nil {
		return object.Signal{}, err
	}
	name, err := identifierArg(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	start, err := ctx.ResolveNumber(cmd[2])
	if err != nil {
		return object.Signal{}, err
	}
	end, err := ctx.ResolveNumber(cmd[3])
	if err != nil {
		return object.Signal{}, err
	}

	body := cmd[5:]
	if len(body) == 0 {
		return object.Complete(object.NULL), nil
	}

	step, err := ctx.ResolveNumber(cmd[4])
	if err != nil {
		return object.Signal{}, err
	}
	if math.Signbit(step) || math.IsNaN(step) {
		return object.Signal{}, backtrace.Newf(cmd[4].Mark, "step must be a non-negative number, got %s", object.FormatNumber(step))
	}

	for i, bound := range []float64{start, end} {
		if math.IsNaN(bound) || math.IsInf(bound, 0) {
			return object.Signal{}, backtrace.New(backtrace.Type, cmd[2+i].Mark, "bounds must be finite numbers, got %s", object.FormatNumber(bound))
		}
	}

	if start == end {
		return object.Complete(object.NULL), nil
	}

	ascending := start < end
	index := start
	for {
		frame := object.NewTable()
		if _, _, err := frame.Insert(name, object.Number{Value: index}, cmd[1].Mark); err != nil {
			return object.Signal{}, err
		}

		sig, err := ctx.RunStatements(body, frame)
		if err != nil {
			return object.Signal{}, err
		}
		switch sig.Kind {
		case object.RETURN:
			return sig, nil
		case object.BREAK:
			return object.Complete(object.NULL), nil
		}

		if ascending {
			index += step
			if index >= end {
				break
			}
		} else {
			index -= step
			if index <= end {
				break
			}
		}
	}
	return object.Complete(object.NULL), nil
}

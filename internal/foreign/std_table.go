package foreign

import (
	"strconv"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
)

// fnTable creates a table from alternating keys and values: `table "a" 1 "b" 2`.
func fnTable(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	args := cmd.Args()
	if len(args)%2 != 0 {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "`table` expects key and value pairs, got %d argument(s)", len(args))
	}
	t := object.NewTable()
	for i := 0; i < len(args); i += 2 {
		key, err := keyArg(ctx, args[i])
		if err != nil {
			return object.Signal{}, err
		}
		val, err := ctx.ResolveVariant(args[i+1])
		if err != nil {
			return object.Signal{}, err
		}
		if _, _, err := t.Insert(key, val, args[i].Mark); err != nil {
			return object.Signal{}, err
		}
	}
	return object.Complete(t), nil
}

// fnGet yields the value under a key, or null when the key is absent.
func fnGet(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 3); err != nil {
		return object.Signal{}, err
	}
	t, key, err := tableAndKey(ctx, cmd)
	if err != nil {
		return object.Signal{}, err
	}
	val, ok, err := t.Get(key, cmd[2].Mark)
	if err != nil || !ok {
		return object.Complete(object.NULL), err
	}
	return object.Complete(val), nil
}

// fnPut stores a value and yields the one it replaced.
func fnPut(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 4); err != nil {
		return object.Signal{}, err
	}
	t, key, err := tableAndKey(ctx, cmd)
	if err != nil {
		return object.Signal{}, err
	}
	val, err := ctx.ResolveVariant(cmd[3])
	if err != nil {
		return object.Signal{}, err
	}
	prev, had, err := t.Insert(key, val, cmd[2].Mark)
	if err != nil || !had {
		return object.Complete(object.NULL), err
	}
	return object.Complete(prev), nil
}

func fnHas(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 3); err != nil {
		return object.Signal{}, err
	}
	t, key, err := tableAndKey(ctx, cmd)
	if err != nil {
		return object.Signal{}, err
	}
	ok, err := t.ContainsKey(key, cmd[2].Mark)
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(object.NativeBool(ok)), nil
}

func fnRemove(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 3); err != nil {
		return object.Signal{}, err
	}
	t, key, err := tableAndKey(ctx, cmd)
	if err != nil {
		return object.Signal{}, err
	}
	prev, had, err := t.Remove(key, cmd[2].Mark)
	if err != nil || !had {
		return object.Complete(object.NULL), err
	}
	return object.Complete(prev), nil
}

// fnKeys yields a table mapping "0", "1", ... to the sorted keys of its argument.
func fnKeys(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	t, err := tableArg(ctx, cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	keys, err := t.Keys(cmd[1].Mark)
	if err != nil {
		return object.Signal{}, err
	}
	out := object.NewTable()
	for i, k := range keys {
		if _, _, err := out.Insert(strconv.Itoa(i), object.String{Value: k}, cmd[0].Mark); err != nil {
			return object.Signal{}, err
		}
	}
	return object.Complete(out), nil
}

func tableAndKey(ctx object.Context, cmd ast.Command) (*object.Table, string, error) {
	t, err := tableArg(ctx, cmd[1])
	if err != nil {
		return nil, "", err
	}
	key, err := keyArg(ctx, cmd[2])
	if err != nil {
		return nil, "", err
	}
	return t, key, nil
}

// fnSlot yields the call argument at a zero-based position.
func fnSlot(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	n, err := ctx.ResolveNumber(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	slots := ctx.Slots()
	i := int(n)
	if float64(i) != n || i < 0 || i >= len(slots) {
		return object.Signal{}, backtrace.Newf(cmd[1].Mark, "slot %s out of range (%d slot(s))", object.FormatNumber(n), len(slots))
	}
	return object.Complete(slots[i]), nil
}

func fnSlots(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 1); err != nil {
		return object.Signal{}, err
	}
	return object.Complete(object.Number{Value: float64(len(ctx.Slots()))}), nil
}

// fnSet overwrites an existing binding in the nearest frame that holds it.
func fnSet(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 3); err != nil {
		return object.Signal{}, err
	}
	name, err := identifierArg(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	val, err := ctx.ResolveVariant(cmd[2])
	if err != nil {
		return object.Signal{}, err
	}
	if err := ctx.Assign(name, val, cmd[1].Mark); err != nil {
		return object.Signal{}, err
	}
	return object.Complete(val), nil
}

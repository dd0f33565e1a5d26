package foreign

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
)

func fnPrint(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	return write(ctx, cmd, "")
}

func fnPrintln(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	return write(ctx, cmd, "\n")
}

// write prints the representation of every argument with no separator, then suffix.
func write(ctx object.Context, cmd ast.Command, suffix string) (object.Signal, error) {
	text, err := represent(ctx, cmd.Args())
	if err != nil {
		return object.Signal{}, err
	}
	if _, err := fmt.Fprint(ctx.Output(), text+suffix); err != nil {
		return object.Signal{}, backtrace.Newf(cmd[0].Mark, "failed to write output: %v", err)
	}
	return object.Complete(object.NULL), nil
}

func represent(ctx object.Context, atoms ast.Command) (string, error) {
	vals, err := resolveAll(ctx, atoms)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, v := range vals {
		sb.WriteString(v.Represent())
	}
	return sb.String(), nil
}

// fnStr concatenates the representations of its arguments.
func fnStr(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	text, err := represent(ctx, cmd.Args())
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(object.String{Value: text}), nil
}

// fnConcat joins string arguments with the separator given first: `concat ", " a b c`.
func fnConcat(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	sep, err := ctx.ResolveString(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	parts := make([]string, 0, len(cmd)-2)
	for _, atom := range cmd[2:] {
		s, err := ctx.ResolveString(atom)
		if err != nil {
			return object.Signal{}, err
		}
		parts = append(parts, s)
	}
	return object.Complete(object.String{Value: strings.Join(parts, sep)}), nil
}

// fnNum parses a string as a number. A number argument is returned as is.
func fnNum(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	val, err := ctx.ResolveVariant(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	switch v := val.(type) {
	case object.Number:
		return object.Complete(v), nil
	case object.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return object.Signal{}, backtrace.Newf(cmd[1].Mark, "cannot parse %q as a number", v.Value)
		}
		return object.Complete(object.Number{Value: n}), nil
	}
	return object.Signal{}, backtrace.New(backtrace.Type, cmd[1].Mark, "`%s` (%s) cannot be converted to a number", val.Represent(), val.Type())
}

func fnType(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	val, err := ctx.ResolveVariant(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	return object.Complete(object.String{Value: strings.ToLower(string(val.Type()))}), nil
}

// fnLen counts table entries or the characters of a string.
func fnLen(ctx object.Context, cmd ast.Command) (object.Signal, error) {
	if err := expectExactArgs(cmd, 2); err != nil {
		return object.Signal{}, err
	}
	val, err := ctx.ResolveVariant(cmd[1])
	if err != nil {
		return object.Signal{}, err
	}
	switch v := val.(type) {
	case object.String:
		return object.Complete(object.Number{Value: float64(utf8.RuneCountInString(v.Value))}), nil
	case *object.Table:
		n, err := v.Len(cmd[1].Mark)
		if err != nil {
			return object.Signal{}, err
		}
		return object.Complete(object.Number{Value: float64(n)}), nil
	}
	return object.Signal{}, backtrace.New(backtrace.Type, cmd[1].Mark, "`%s` (%s) has no length", val.Represent(), val.Type())
}

package foreign

import (
	"log/slog"

	"ensue/internal/object"
)

// Keywords returns the handlers for reserved-word command heads.
func Keywords() map[string]object.NativeFn {
	return map[string]object.NativeFn{
		"let":      kwLet,
		"fn":       kwFn,
		"return":   kwReturn,
		"break":    kwBreak,
		"continue": kwContinue,
		"if":       kwIf,
		"while":    kwWhile,
		"for":      fnRep,
	}
}

// Globals returns the builtins bound in the global frame. Every call builds fresh state, so
// two runtimes never share database handles.
func Globals() map[string]object.Variant {
	globals := map[string]object.Variant{
		"true":  object.TRUE,
		"false": object.FALSE,
		"null":  object.NULL,

		"rep": native("rep", fnRep),
		"set": native("set", fnSet),

		"add": native("add", fnAdd),
		"sub": native("sub", fnSub),
		"mul": native("mul", fnMul),
		"div": native("div", fnDiv),

		"l":   native("l", fnLess),
		"g":   native("g", fnGreater),
		"le":  native("le", fnLessEqual),
		"ge":  native("ge", fnGreaterEqual),
		"eq":  native("eq", fnEqual),
		"ne":  native("ne", fnNotEqual),
		"not": native("not", fnNot),
		"and": native("and", fnAnd),
		"or":  native("or", fnOr),

		"print":   native("print", fnPrint),
		"println": native("println", fnPrintln),
		"str":     native("str", fnStr),
		"concat":  native("concat", fnConcat),
		"num":     native("num", fnNum),
		"type":    native("type", fnType),

		"slot":  native("slot", fnSlot),
		"slots": native("slots", fnSlots),

		"table":  native("table", fnTable),
		"get":    native("get", fnGet),
		"put":    native("put", fnPut),
		"has":    native("has", fnHas),
		"remove": native("remove", fnRemove),
		"keys":   native("keys", fnKeys),
		"len":    native("len", fnLen),
	}

	db := newDBHandles()
	for name, fn := range db.functions() {
		globals[name] = native(name, fn)
	}

	slog.Debug("registered builtins", slog.Int("count", len(globals)))
	return globals
}

func native(name string, fn object.NativeFn) *object.Function {
	return &object.Function{Name: name, Fn: fn}
}

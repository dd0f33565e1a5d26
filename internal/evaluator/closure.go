package evaluator

import (
	"log/slog"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/object"
)

// callClosure runs cl for the call site cmd.
//
// Arguments are resolved left to right in the caller's chain before the body starts. The body
// runs in a fresh context whose chain is the captured one plus a single frame of locals, so
// two calls never see each other's slots or locals but do share every captured frame. The
// captured slice is installed clipped: a push inside the call reallocates rather than writing
// into the closure, which is what keeps repeated and recursive calls from leaking into each other.
func (c *Context) callClosure(cl *object.Closure, cmd ast.Command) (object.Signal, error) {
	mark := headMark(cmd)

	args := cmd.Args()
	slots := make([]object.Variant, 0, len(args))
	for _, atom := range args {
		val, err := c.ResolveVariant(atom)
		if err != nil {
			return object.Signal{}, err
		}
		slots = append(slots, val)
	}

	if c.depth+1 > c.maxDepth {
		return object.Signal{}, backtrace.Newf(mark, "maximum call depth of %d exceeded", c.maxDepth)
	}

	callee := &Context{
		scopes:   cl.Scopes[:len(cl.Scopes):len(cl.Scopes)],
		slots:    slots,
		keywords: c.keywords,
		out:      c.out,
		logger:   c.logger,
		depth:    c.depth + 1,
		maxDepth: c.maxDepth,
	}

	locals := object.NewTable()
	for i, name := range cl.Params {
		var val object.Variant = object.NULL
		if i < len(slots) {
			val = slots[i]
		}
		if _, _, err := locals.Insert(name, val, mark); err != nil {
			return object.Signal{}, err
		}
	}

	c.logger.Debug("calling closure",
		slog.String("defined-at", cl.Mark.String()),
		slog.String("called-at", mark.String()),
		slog.Int("slots", len(slots)),
		slog.Int("depth", callee.depth))

	sig, err := callee.RunStatements(cl.Body, locals)
	if err != nil {
		return object.Signal{}, err
	}

	switch sig.Kind {
	case object.BREAK, object.CONTINUE:
		return object.Signal{}, loopControlError(sig)
	case object.RETURN:
		// the call boundary consumes the return
		return object.Complete(sig.Value), nil
	}
	return sig, nil
}

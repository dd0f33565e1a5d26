package object

import "ensue/internal/token"

type SignalKind int

const (
	COMPLETE SignalKind = iota
	RETURN
	BREAK
	CONTINUE
)

var signalNames = [...]string{"complete", "return", "break", "continue"}

func (k SignalKind) String() string {
	if int(k) < len(signalNames) {
		return signalNames[k]
	}
	return "unknown"
}

// Signal is the control-flow outcome of running a statement. Errors are not signals; they travel
// alongside as the error return.
type Signal struct {
	Kind  SignalKind
	Value Variant
	Mark  token.Mark // where return/break/continue was issued
}

func Complete(v Variant) Signal {
	if v == nil {
		v = NULL
	}
	return Signal{Kind: COMPLETE, Value: v}
}

func Return(v Variant, mark token.Mark) Signal {
	if v == nil {
		v = NULL
	}
	return Signal{Kind: RETURN, Value: v, Mark: mark}
}

func Break(mark token.Mark) Signal {
	return Signal{Kind: BREAK, Value: NULL, Mark: mark}
}

func Continue(mark token.Mark) Signal {
	return Signal{Kind: CONTINUE, Value: NULL, Mark: mark}
}

func (s Signal) IsComplete() bool {
	return s.Kind == COMPLETE
}

// IsLoopControl reports break and continue, which only loops may consume.
func (s Signal) IsLoopControl() bool {
	return s.Kind == BREAK || s.Kind == CONTINUE
}

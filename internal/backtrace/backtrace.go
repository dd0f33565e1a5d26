// Package backtrace defines the diagnostic error carried through lexing, tree building and
// evaluation. Every error keeps the Mark of the atom that raised it.
package backtrace

import (
	"errors"
	"fmt"

	"ensue/internal/token"
)

type Kind int

const (
	Runtime Kind = iota
	Syntax
	Structure
	Type
	Resolution
	ControlFlow
	Bug
)

var kindNames = [...]string{"runtime", "syntax", "structure", "type", "resolution", "control flow", "bug"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Backtrace struct {
	Kind    Kind
	Message string
	Mark    token.Mark
}

func (b *Backtrace) Error() string {
	if b.Kind == Bug {
		return fmt.Sprintf("%s: internal error: %s", b.Mark, b.Message)
	}
	return fmt.Sprintf("%s: %s", b.Mark, b.Message)
}

func New(kind Kind, mark token.Mark, format string, a ...interface{}) *Backtrace {
	return &Backtrace{Kind: kind, Message: fmt.Sprintf(format, a...), Mark: mark}
}

// Newf reports a plain runtime error.
func Newf(mark token.Mark, format string, a ...interface{}) *Backtrace {
	return New(Runtime, mark, format, a...)
}

// NewBug reports a broken runtime invariant. These are never user errors.
func NewBug(mark token.Mark, format string, a ...interface{}) *Backtrace {
	return New(Bug, mark, format, a...)
}

// KindOf returns the kind of the first Backtrace in err's chain, or Runtime when there is none.
func KindOf(err error) Kind {
	var bt *Backtrace
	if errors.As(err, &bt) {
		return bt.Kind
	}
	return Runtime
}

func Is(err error, kind Kind) bool {
	var bt *Backtrace
	return errors.As(err, &bt) && bt.Kind == kind
}

func IsBug(err error) bool {
	return Is(err, Bug)
}

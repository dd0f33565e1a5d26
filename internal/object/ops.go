package object

import (
	"ensue/internal/backtrace"
	"ensue/internal/token"
)

// The arithmetic capabilities are exhaustive switches over the variant kinds. A kind with no
// case for an operation fails for every right-hand side.

func Add(lhs, rhs Variant, mark token.Mark) (Variant, error) {
	switch l := lhs.(type) {
	case Number:
		if r, ok := rhs.(Number); ok {
			return Number{Value: l.Value + r.Value}, nil
		}
	case String:
		if r, ok := rhs.(String); ok {
			return String{Value: l.Value + r.Value}, nil
		}
	case Null, Bool, *Table, *Closure, *Function:
	}
	return nil, operandError(lhs, rhs, "added with", mark)
}

func Sub(lhs, rhs Variant, mark token.Mark) (Variant, error) {
	switch l := lhs.(type) {
	case Number:
		if r, ok := rhs.(Number); ok {
			return Number{Value: l.Value - r.Value}, nil
		}
	case Null, Bool, String, *Table, *Closure, *Function:
	}
	return nil, operandError(lhs, rhs, "subtracted with", mark)
}

func Mul(lhs, rhs Variant, mark token.Mark) (Variant, error) {
	switch l := lhs.(type) {
	case Number:
		if r, ok := rhs.(Number); ok {
			return Number{Value: l.Value * r.Value}, nil
		}
	case Null, Bool, String, *Table, *Closure, *Function:
	}
	return nil, operandError(lhs, rhs, "multiplied with", mark)
}

// Div follows IEEE 754, so dividing by zero yields an infinity or NaN rather than an error.
func Div(lhs, rhs Variant, mark token.Mark) (Variant, error) {
	switch l := lhs.(type) {
	case Number:
		if r, ok := rhs.(Number); ok {
			return Number{Value: l.Value / r.Value}, nil
		}
	case Null, Bool, String, *Table, *Closure, *Function:
	}
	return nil, operandError(lhs, rhs, "divided with", mark)
}

// Less orders numbers numerically and strings lexicographically.
func Less(lhs, rhs Variant, mark token.Mark) (bool, error) {
	switch l := lhs.(type) {
	case Number:
		if r, ok := rhs.(Number); ok {
			return l.Value < r.Value, nil
		}
	case String:
		if r, ok := rhs.(String); ok {
			return l.Value < r.Value, nil
		}
	case Null, Bool, *Table, *Closure, *Function:
	}
	return false, operandError(lhs, rhs, "compared with", mark)
}

// Equal compares scalars by value and handles by identity. Values of different kinds are
// never equal.
func Equal(lhs, rhs Variant) bool {
	switch l := lhs.(type) {
	case Null:
		_, ok := rhs.(Null)
		return ok
	case Bool:
		r, ok := rhs.(Bool)
		return ok && l.Value == r.Value
	case Number:
		r, ok := rhs.(Number)
		return ok && l.Value == r.Value
	case String:
		r, ok := rhs.(String)
		return ok && l.Value == r.Value
	case *Table:
		r, ok := rhs.(*Table)
		return ok && l == r
	case *Closure:
		r, ok := rhs.(*Closure)
		return ok && l == r
	case *Function:
		r, ok := rhs.(*Function)
		return ok && l == r
	}
	return false
}

// Truthy treats null and false as false and every other value as true.
func Truthy(v Variant) bool {
	switch v := v.(type) {
	case Null:
		return false
	case Bool:
		return v.Value
	case Number, String, *Table, *Closure, *Function:
		return true
	}
	return false
}

func operandError(lhs, rhs Variant, verb string, mark token.Mark) error {
	return backtrace.New(backtrace.Type, mark, "`%s` (%s) cannot be %s `%s` (%s)",
		lhs.Represent(), lhs.Type(), verb, rhs.Represent(), rhs.Type())
}

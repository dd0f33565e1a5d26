package object

import (
	"math"
	"strings"
	"testing"

	"ensue/internal/backtrace"
	"ensue/internal/token"
)

func TestArithmetic(t *testing.T) {
	type op func(lhs, rhs Variant, mark token.Mark) (Variant, error)
	cases := []struct {
		name string
		op   op
		lhs  Variant
		rhs  Variant
		want Variant
	}{
		{"add numbers", Add, Number{Value: 2}, Number{Value: 3}, Number{Value: 5}},
		{"add strings", Add, String{Value: "ab"}, String{Value: "cd"}, String{Value: "abcd"}},
		{"sub", Sub, Number{Value: 2}, Number{Value: 3}, Number{Value: -1}},
		{"mul", Mul, Number{Value: 2.5}, Number{Value: 4}, Number{Value: 10}},
		{"div", Div, Number{Value: 7}, Number{Value: 2}, Number{Value: 3.5}},
		{"div by zero", Div, Number{Value: 1}, Number{Value: 0}, Number{Value: math.Inf(1)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.op(tc.lhs, tc.rhs, token.Mark{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !Equal(got, tc.want) {
				t.Errorf("expected %s, got %s", tc.want.Represent(), got.Represent())
			}
		})
	}
}

func TestArithmeticTypeErrors(t *testing.T) {
	table := NewTable()
	cases := []struct {
		name     string
		lhs, rhs Variant
	}{
		{"table plus number", table, Number{Value: 1}},
		{"number plus string", Number{Value: 1}, String{Value: "a"}},
		{"null plus null", NULL, NULL},
		{"bool plus bool", TRUE, FALSE},
		{"closure plus number", NewClosure(token.Mark{}, nil, nil, nil), Number{Value: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Add(tc.lhs, tc.rhs, token.Mark{Line: 4, Column: 2})
			if err == nil {
				t.Fatalf("expected error")
			}
			if !backtrace.Is(err, backtrace.Type) {
				t.Errorf("expected a type error, got %v", err)
			}
			msg := err.Error()
			for _, v := range []Variant{tc.lhs, tc.rhs} {
				if !strings.Contains(msg, string(v.Type())) {
					t.Errorf("message %q does not name operand type %s", msg, v.Type())
				}
			}
			if !strings.HasPrefix(msg, "4:2:") {
				t.Errorf("message %q does not carry the mark", msg)
			}
		})
	}

	for _, op := range []func(lhs, rhs Variant, mark token.Mark) (Variant, error){Sub, Mul, Div} {
		if _, err := op(String{Value: "a"}, String{Value: "b"}, token.Mark{}); err == nil {
			t.Errorf("expected strings to be rejected")
		}
	}
}

func TestLess(t *testing.T) {
	cases := []struct {
		lhs, rhs Variant
		want     bool
	}{
		{Number{Value: 1}, Number{Value: 2}, true},
		{Number{Value: 2}, Number{Value: 2}, false},
		{String{Value: "a"}, String{Value: "b"}, true},
		{String{Value: "b"}, String{Value: "a"}, false},
	}
	for _, tc := range cases {
		got, err := Less(tc.lhs, tc.rhs, token.Mark{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("Less(%s, %s): expected %v, got %v", tc.lhs.Represent(), tc.rhs.Represent(), tc.want, got)
		}
	}
	if _, err := Less(Number{Value: 1}, String{Value: "a"}, token.Mark{}); !backtrace.Is(err, backtrace.Type) {
		t.Errorf("expected a type error, got %v", err)
	}
}

func TestEqualAndTruthy(t *testing.T) {
	a, b := NewTable(), NewTable()
	if !Equal(a, a) || Equal(a, b) {
		t.Errorf("tables must compare by identity")
	}
	if Equal(Number{Value: 1}, String{Value: "1"}) {
		t.Errorf("different kinds must not be equal")
	}
	if !Equal(NULL, Null{}) || !Equal(String{Value: "x"}, String{Value: "x"}) {
		t.Errorf("scalars must compare by value")
	}

	falsy := []Variant{NULL, FALSE}
	truthy := []Variant{TRUE, Number{Value: 0}, String{Value: ""}, a}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("%s should be falsy", v.Represent())
		}
	}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("%s should be truthy", v.Represent())
		}
	}
}

func TestRepresent(t *testing.T) {
	cases := []struct {
		v    Variant
		want string
	}{
		{NULL, "null"},
		{TRUE, "true"},
		{Number{Value: 3}, "3"},
		{Number{Value: -0.5}, "-0.5"},
		{Number{Value: 1e20}, "1e+20"},
		{String{Value: "hi"}, "hi"},
		{NewTable(), "<table>"},
		{NewClosure(token.Mark{}, nil, nil, nil), "<closure>"},
		{&Function{Name: "print"}, "<function print>"},
	}
	for _, tc := range cases {
		if got := tc.v.Represent(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

package foreign

import (
	"strings"
	"testing"
)

const branches = `if
    l x 3
    println "small"
    ensuing elif
    l x 10
    println "medium"
    ensuing else
    println "large"`

func TestIf(t *testing.T) {
	runCases(t, []evalCase{
		{"first branch", "let x 1\n" + branches, "null", "small\n"},
		{"elif branch", "let x 5\n" + branches, "null", "medium\n"},
		{"else branch", "let x 50\n" + branches, "null", "large\n"},
		{"no branch taken", "if\n    eq 1 2\n    println 1", "null", ""},
		{"branch value", "if\n    eq 1 1\n    add 2 2", "4", ""},
		{"zero is truthy", "if 0\n    println \"yes\"", "null", "yes\n"},
		{"null is falsy", "if null\n    println \"yes\"\n    ensuing else\n    println \"no\"", "null", "no\n"},
	})
}

func TestIfErrors(t *testing.T) {
	cases := []errorCase{
		{"missing condition", "if", "`if` expects a condition"},
		{"else not last", "if true\n    println 1\n    ensuing else\n    println 2\n    ensuing elif\n    eq 1 1", "`else` must be the last branch"},
		{"unknown continuation", "if true\n    println 1\n    ensuing otherwise", "must continue with `elif` or `else`"},
		{"dangling ensuing", "if true\n    println 1\n    ensuing", "dangling `ensuing`"},
		{"branch frame is local", "if true\n    let inner 1\nprintln inner", "undefined identifier `inner`"},
		{"elif without condition", "if false\n    println 1\n    ensuing elif", "`elif` expects a condition"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, out, err := run(t, tc.input)
			if err == nil {
				t.Fatalf("expected error")
			}
			if out != "" {
				t.Errorf("malformed branches must not run anything, got %q", out)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expected message containing %q, got %q", tc.message, err.Error())
			}
		})
	}
}

func TestWhile(t *testing.T) {
	runCases(t, []evalCase{
		{
			"counts",
			"let i 0\nwhile\n    l i 3\n    println i\n    set i\n        add i 1",
			"null", "0\n1\n2\n",
		},
		{
			"break and continue",
			"let i 0\nwhile true\n    set i\n        add i 1\n    if\n        eq i 2\n        continue\n    if\n        g i 4\n        break\n    println i",
			"null", "1\n3\n4\n",
		},
		{"false condition", "while false\n    println 1", "null", ""},
	})
}

func TestLet(t *testing.T) {
	runCases(t, []evalCase{
		{"literal", "let x 5", "5", ""},
		{"no value", "let x", "null", ""},
		{"nested command", "let x\n    add 1 2", "3", ""},
		{"inline command", "let x add 1 2", "3", ""},
		{"inline command with nested argument", "let x add 1\n    mul 2 3", "7", ""},
		{"closure", "let f fn a b\n    add a b\nf 3 4", "7", ""},
		{"closure literal", "let f\n    fn a\n        mul a a\nf 6", "36", ""},
		{"shadowing in closure", "let x 1\nlet f fn\n    let x 2\n    return x\nf\nreturn x", "1", ""},
		{"return without value", "let f fn\n    return\nf", "null", ""},
	})
}

func TestKeywordErrors(t *testing.T) {
	cases := []errorCase{
		{"let needs a name", "let", "expects at least 1 argument(s)"},
		{"let name must be an identifier", "let 1 2", "expected an identifier"},
		{"duplicate parameter", "let f fn x x", "duplicate parameter `x`"},
		{"duplicate parameter with a body", "let f fn a b a\n    println a", "duplicate parameter `a`"},
		{"keyword in closure body", "let f fn a else", "unexpected keyword `else`"},
		{"break takes no arguments", "rep i 0 1 1\n    break 1", "`break` expects 0 argument(s)"},
		{"return takes one value", "let f fn\n    return 1 2\nf", "`return` expects 1 argument(s)"},
		{"while needs a condition", "while", "expects at least 1 argument(s)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := run(t, tc.input)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expected message containing %q, got %q", tc.message, err.Error())
			}
		})
	}
}

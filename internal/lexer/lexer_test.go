package lexer

import (
	"testing"

	"ensue/internal/backtrace"
	"ensue/internal/token"
)

func TestTokens(t *testing.T) {
	input := `let x 5
print "a\tb\"c" -3 1e3 3abc - sql.open`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
		expectedNumber  float64
	}{
		{token.WORD, "let", 0},
		{token.WORD, "x", 0},
		{token.NUMBER, "5", 5},
		{token.WORD, "print", 0},
		{token.STRING, "a\tb\"c", 0},
		{token.NUMBER, "-3", -3},
		{token.NUMBER, "1e3", 1000},
		{token.WORD, "3abc", 0},
		{token.WORD, "-", 0},
		{token.WORD, "sql.open", 0},
	}

	lines, err := New(input).Lines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var toks []token.Token
	for _, line := range lines {
		toks = append(toks, line.Tokens...)
	}
	if len(toks) != len(tests) {
		t.Fatalf("expected %d tokens, got %d", len(tests), len(toks))
	}
	for i, tt := range tests {
		tok := toks[i]
		if tok.Type != tt.expectedType {
			t.Errorf("tests[%d] - type wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Errorf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
		if tok.Type == token.NUMBER && tok.Number != tt.expectedNumber {
			t.Errorf("tests[%d] - number wrong. expected=%v, got=%v", i, tt.expectedNumber, tok.Number)
		}
	}
}

func TestIndentation(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		width   int
		indents []int
	}{
		{"flat", "a\nb\n", 4, []int{0, 0}},
		{"spaces", "a\n    b\n        c\n", 4, []int{0, 1, 2}},
		{"tabs", "a\n\tb\n\t\tc", 4, []int{0, 1, 2}},
		{"two space width", "a\n  b\n    c", 2, []int{0, 1, 2}},
		{"blank and comment lines inherit", "a\n    b\n\n# note\n", 4, []int{0, 1, 1, 1}},
		{"trailing comment", "a # note\n    b", 4, []int{0, 1}},
		{"crlf and other spaces", "a\v b\r\n    c\r\n", 4, []int{0, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := New(tc.input, WithIndentWidth(tc.width)).Lines()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(lines) != len(tc.indents) {
				t.Fatalf("expected %d lines, got %d", len(tc.indents), len(lines))
			}
			for i, want := range tc.indents {
				if lines[i].Indent != want {
					t.Errorf("line %d: expected indent %d, got %d", i+1, want, lines[i].Indent)
				}
				if lines[i].Row != i+1 {
					t.Errorf("line %d: expected row %d, got %d", i+1, i+1, lines[i].Row)
				}
			}
		})
	}
}

func TestMarks(t *testing.T) {
	lines, err := New("x \"y\"\n    zz").Lines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Mark{{Line: 1, Column: 1}, {Line: 1, Column: 3}, {Line: 2, Column: 5}}
	var got []token.Mark
	for _, line := range lines {
		for _, tok := range line.Tokens {
			got = append(got, tok.Mark)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: expected mark %s, got %s", i, want[i], got[i])
		}
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"ragged spaces", "a\n  b"},
		{"unterminated string", "print \"abc\nb"},
		{"unknown escape", `print "\q"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := New(tc.input).Lines()
			if err == nil {
				t.Fatalf("expected error, got %d lines", len(lines))
			}
			if !backtrace.Is(err, backtrace.Syntax) {
				t.Errorf("expected a syntax error, got %v", err)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	lines, err := New("").Lines()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %d", len(lines))
	}
}

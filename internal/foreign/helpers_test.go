package foreign

import (
	"bytes"
	"testing"

	"ensue/internal/evaluator"
	"ensue/internal/object"
	"ensue/internal/parser"
)

func run(t *testing.T, src string) (*evaluator.Context, object.Variant, string, error) {
	t.Helper()
	program, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	var out bytes.Buffer
	c := evaluator.New(
		evaluator.WithKeywords(Keywords()),
		evaluator.WithGlobals(Globals()),
		evaluator.WithOutput(&out),
	)
	val, err := c.RunProgram(program.Commands)
	return c, val, out.String(), err
}

type evalCase struct {
	name   string
	input  string
	want   string
	output string
}

func runCases(t *testing.T, cases []evalCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, val, out, err := run(t, tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := val.Represent(); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
			if out != tc.output {
				t.Errorf("expected output %q, got %q", tc.output, out)
			}
		})
	}
}

type errorCase struct {
	name    string
	input   string
	message string
}

package token

import "fmt"

type TokenType string

const (
	WORD   = "WORD"   // let, add, foobar, x, ...
	STRING = "STRING" // "foobar"
	NUMBER = "NUMBER" // 1343456, 3.5

	// Ensuing marks a line whose atoms continue the command one level up.
	Ensuing = "ensuing"
)

// Mark is the source location of a token or atom. Lines and columns are 1-based.
type Mark struct {
	Line   int
	Column int
}

func (m Mark) String() string {
	return fmt.Sprintf("%d:%d", m.Line, m.Column)
}

type Token struct {
	Type    TokenType
	Literal string
	Number  float64 // only set for NUMBER tokens
	Mark    Mark
}

// Line is one physical source line with its indentation already counted in levels.
type Line struct {
	Row    int
	Indent int
	Tokens []Token
}

var keywords = map[string]bool{
	// declarations
	"let":    true,
	"fn":     true,
	"struct": true,

	// flow control
	"if":       true,
	"elif":     true,
	"else":     true,
	"while":    true,
	"for":      true,
	"break":    true,
	"continue": true,
	"return":   true,

	// structure
	Ensuing: true,
}

func IsKeyword(word string) bool {
	return keywords[word]
}

// Keywords returns the reserved words in no particular order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

package ast

import (
	"bytes"
	"strconv"
	"strings"

	"ensue/internal/token"
)

type Kind int

const (
	KEYWORD Kind = iota
	IDENTIFIER
	STRING
	NUMBER
	COMMAND
)

var kindNames = [...]string{"KEYWORD", "IDENTIFIER", "STRING", "NUMBER", "COMMAND"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Atom is a single parsed unit. Only the field matching Kind is meaningful:
// Text for keywords, identifiers and strings, Number for numbers and Children for commands.
type Atom struct {
	Kind     Kind
	Text     string
	Number   float64
	Children Command
	Mark     token.Mark
}

// Command is an ordered sequence of atoms. The first atom is the operation head.
type Command []Atom

func NewKeyword(text string, mark token.Mark) Atom {
	return Atom{Kind: KEYWORD, Text: text, Mark: mark}
}

func NewIdentifier(text string, mark token.Mark) Atom {
	return Atom{Kind: IDENTIFIER, Text: text, Mark: mark}
}

func NewString(text string, mark token.Mark) Atom {
	return Atom{Kind: STRING, Text: text, Mark: mark}
}

func NewNumber(n float64, mark token.Mark) Atom {
	return Atom{Kind: NUMBER, Number: n, Mark: mark}
}

// NewCommand wraps atoms as a nested command. The command's mark is the mark of its head.
func NewCommand(atoms Command) Atom {
	var mark token.Mark
	if len(atoms) > 0 {
		mark = atoms[0].Mark
	}
	return Atom{Kind: COMMAND, Children: atoms, Mark: mark}
}

// FromToken converts a lexer token into an atom, recognising reserved words.
func FromToken(t token.Token) Atom {
	switch t.Type {
	case token.STRING:
		return NewString(t.Literal, t.Mark)
	case token.NUMBER:
		return NewNumber(t.Number, t.Mark)
	default:
		if token.IsKeyword(t.Literal) {
			return NewKeyword(t.Literal, t.Mark)
		}
		return NewIdentifier(t.Literal, t.Mark)
	}
}

func (a Atom) IsKeyword(text string) bool {
	return a.Kind == KEYWORD && a.Text == text
}

func (a Atom) String() string {
	switch a.Kind {
	case STRING:
		return strconv.Quote(a.Text)
	case NUMBER:
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	case COMMAND:
		return "(" + a.Children.String() + ")"
	default:
		return a.Text
	}
}

func (c Command) Head() (Atom, bool) {
	if len(c) == 0 {
		return Atom{}, false
	}
	return c[0], true
}

// Args returns every atom after the head.
func (c Command) Args() Command {
	if len(c) == 0 {
		return nil
	}
	return c[1:]
}

func (c Command) String() string {
	parts := make([]string, len(c))
	for i, a := range c {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// Program is the forest of top-level commands produced by the tree builder.
type Program struct {
	Commands []Command
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, c := range p.Commands {
		out.WriteString(c.String())
		out.WriteString("\n")
	}
	return out.String()
}

package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"ensue/internal/backtrace"
	"ensue/internal/token"
)

const DefaultIndentWidth = 4

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF

	row    int // 1-based line of ch
	column int // 1-based column of ch, counted in runes

	indentWidth int
}

type Option func(*Lexer)

// WithIndentWidth sets how many spaces make one indentation level. Tabs are always one level.
func WithIndentWidth(width int) Option {
	return func(l *Lexer) {
		if width > 0 {
			l.indentWidth = width
		}
	}
}

func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input, row: 1, indentWidth: DefaultIndentWidth}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

// Lines splits the input into indent-annotated token lines.
//
// Lines without tokens (blank or comment only) are still emitted, carrying the indent of the
// previous line with content so they never change the nesting seen by the tree builder.
func (l *Lexer) Lines() ([]token.Line, error) {
	var lines []token.Line
	lastIndent := 0
	for l.ch != 0 || l.position < len(l.input) {
		line, err := l.readLine()
		if err != nil {
			return nil, err
		}
		if len(line.Tokens) == 0 {
			line.Indent = lastIndent
		} else {
			lastIndent = line.Indent
		}
		lines = append(lines, line)
		if l.ch == 0 {
			break
		}
	}
	return lines, nil
}

func (l *Lexer) readLine() (token.Line, error) {
	line := token.Line{Row: l.row}
	indent, err := l.readIndent()
	if err != nil {
		return line, err
	}
	line.Indent = indent

	for {
		l.skipWhitespace()
		switch {
		case l.ch == 0:
			return line, nil
		case l.ch == '\n':
			l.readChar()
			return line, nil
		case l.ch == '"':
			tok, err := l.readString()
			if err != nil {
				return line, err
			}
			line.Tokens = append(line.Tokens, tok)
		default:
			line.Tokens = append(line.Tokens, l.readWord())
		}
	}
}

// readIndent consumes leading tabs and spaces and converts them into levels.
func (l *Lexer) readIndent() (int, error) {
	mark := l.mark()
	tabs, spaces := 0, 0
	for l.ch == ' ' || l.ch == '\t' {
		if l.ch == '\t' {
			tabs++
		} else {
			spaces++
		}
		l.readChar()
	}
	if l.ch == '\n' || l.ch == '\r' || l.ch == '#' || l.ch == 0 {
		// nothing on this line counts
		return 0, nil
	}
	if spaces%l.indentWidth != 0 {
		return 0, backtrace.New(backtrace.Syntax, mark,
			"indentation of %d spaces is not a multiple of %d", spaces, l.indentWidth)
	}
	return tabs + spaces/l.indentWidth, nil
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == '#':
			l.skipToLineEnd()
		case l.ch != '\n' && unicode.IsSpace(l.ch):
			l.readChar()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readWord() token.Token {
	mark := l.mark()
	start := l.position
	for !isDelimiter(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.position]
	if isNumberLiteral(literal) {
		if n, err := strconv.ParseFloat(literal, 64); err == nil {
			return token.Token{Type: token.NUMBER, Literal: literal, Number: n, Mark: mark}
		}
	}
	return token.Token{Type: token.WORD, Literal: literal, Mark: mark}
}

func (l *Lexer) readString() (token.Token, error) {
	mark := l.mark()
	l.readChar() // consume opening "
	var out strings.Builder
	for {
		switch l.ch {
		case 0, '\n':
			return token.Token{}, backtrace.New(backtrace.Syntax, mark, "unterminated string literal")
		case '"':
			l.readChar()
			return token.Token{Type: token.STRING, Literal: out.String(), Mark: mark}, nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			default:
				return token.Token{}, backtrace.New(backtrace.Syntax, l.mark(), "unknown escape sequence \\%c", l.ch)
			}
		default:
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions and the row/column counters
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.row++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
}

func (l *Lexer) mark() token.Mark {
	return token.Mark{Line: l.row, Column: l.column}
}

func isDelimiter(ch rune) bool {
	return ch == 0 || ch == '"' || ch == '#' || unicode.IsSpace(ch)
}

// isNumberLiteral accepts an optional minus sign followed by a decimal digit, so that words such
// as `-` or `inf` stay identifiers.
func isNumberLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}

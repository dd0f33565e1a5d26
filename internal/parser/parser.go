package parser

import (
	"log/slog"

	"ensue/internal/ast"
	"ensue/internal/backtrace"
	"ensue/internal/lexer"
	"ensue/internal/token"
)

// Build nests indent-annotated token lines into top-level commands.
//
// A line at indent 0 starts a new top-level command. A line at indent n is attached to the
// command found by descending n-1 times through the last atom of the most recent top-level
// command, either as a new nested command or, when it starts with `ensuing`, by appending its
// atoms onto that command. Indentation may grow by one level at a time and shrink by any amount.
// On error no partial tree is returned.
func Build(lines []token.Line) ([]ast.Command, error) {
	var result []ast.Command
	currentIndent := 0

	for _, line := range lines {
		displacement := line.Indent - currentIndent
		if displacement > 1 {
			return nil, backtrace.New(backtrace.Structure, lineMark(line), "excessive indentation")
		}

		atoms := make(ast.Command, 0, len(line.Tokens))
		for _, t := range line.Tokens {
			atoms = append(atoms, ast.FromToken(t))
		}

		if len(atoms) == 0 {
			currentIndent = line.Indent
			continue
		}

		// the first command cannot be indented
		if len(result) == 0 && line.Indent != 0 {
			return nil, backtrace.New(backtrace.Structure, lineMark(line), "unexpected indentation")
		}

		if line.Indent == 0 {
			result = append(result, atoms)
			currentIndent = line.Indent
			continue
		}

		parent, ok := subcommand(&result[len(result)-1], line.Indent-1)
		if !ok {
			return nil, backtrace.New(backtrace.Structure, lineMark(line),
				"orphaned indentation: no enclosing command at depth %d", line.Indent-1)
		}
		if atoms[0].IsKeyword(token.Ensuing) {
			*parent = append(*parent, atoms...)
		} else {
			*parent = append(*parent, ast.NewCommand(atoms))
		}
		currentIndent = line.Indent
	}

	slog.Debug("built command tree", slog.Int("lines", len(lines)), slog.Int("commands", len(result)))
	return result, nil
}

// subcommand descends nesting times through the last atom of each level. Every level's last
// atom has to be a command for the descent to succeed.
func subcommand(command *ast.Command, nesting int) (*ast.Command, bool) {
	sub := command
	for i := 0; i < nesting; i++ {
		if len(*sub) == 0 {
			return nil, false
		}
		last := &(*sub)[len(*sub)-1]
		if last.Kind != ast.COMMAND {
			return nil, false
		}
		sub = &last.Children
	}
	return sub, true
}

func lineMark(line token.Line) token.Mark {
	return token.Mark{Line: line.Row, Column: 1}
}

// ParseSource lexes src and builds its command tree.
func ParseSource(src string, opts ...lexer.Option) (*ast.Program, error) {
	lines, err := lexer.New(src, opts...).Lines()
	if err != nil {
		return nil, err
	}
	commands, err := Build(lines)
	if err != nil {
		return nil, err
	}
	return &ast.Program{Commands: commands}, nil
}

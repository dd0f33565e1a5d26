package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"ensue/internal/ast"
)

// TreeNode is the serialisable form of an atom used by the debug renderers.
type TreeNode struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Text     string     `json:"text,omitempty" yaml:"text,omitempty"`
	Number   *float64   `json:"number,omitempty" yaml:"number,omitempty"`
	Mark     string     `json:"mark" yaml:"mark"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// WalkTree converts top-level commands into TreeNodes, one COMMAND node per command.
func WalkTree(commands []ast.Command) []TreeNode {
	out := make([]TreeNode, len(commands))
	for i, c := range commands {
		out[i] = walkAtom(ast.NewCommand(c))
	}
	return out
}

func walkAtom(a ast.Atom) TreeNode {
	n := TreeNode{Kind: a.Kind.String(), Mark: a.Mark.String()}
	switch a.Kind {
	case ast.NUMBER:
		v := a.Number
		n.Number = &v
	case ast.COMMAND:
		n.Children = make([]TreeNode, len(a.Children))
		for i, c := range a.Children {
			n.Children[i] = walkAtom(c)
		}
	default:
		n.Text = a.Text
	}
	return n
}

func RenderJSON(commands []ast.Command) (string, error) {
	b, err := json.MarshalIndent(WalkTree(commands), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render tree as json: %w", err)
	}
	return string(b), nil
}

func RenderYAML(commands []ast.Command) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(WalkTree(commands)); err != nil {
		return "", fmt.Errorf("failed to render tree as yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to render tree as yaml: %w", err)
	}
	return buf.String(), nil
}

// RenderText produces an indented outline in source form. Atoms that follow a nested command
// (an `ensuing` clause) are written one level deeper, where the continuation line came from.
func RenderText(commands []ast.Command) string {
	var sb strings.Builder
	for _, c := range commands {
		renderCommand(&sb, c, 0)
	}
	return sb.String()
}

func renderCommand(sb *strings.Builder, c ast.Command, depth int) {
	var inline []string
	lineDepth := depth
	flush := func() {
		if len(inline) == 0 {
			return
		}
		sb.WriteString(strings.Repeat("    ", lineDepth))
		sb.WriteString(strings.Join(inline, " "))
		sb.WriteString("\n")
		inline = nil
	}
	for _, a := range c {
		if a.Kind == ast.COMMAND {
			flush()
			renderCommand(sb, a.Children, depth+1)
			lineDepth = depth + 1
			continue
		}
		inline = append(inline, a.String())
	}
	flush()
}

package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetContextLines renders up to two lines before errorLine, then errorLine itself with a caret
// under errorCol. Line and column are 1-based; an out of range line renders nothing.
func GetContextLines(src string, errorLine, errorCol int) string {
	var result bytes.Buffer

	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		lineContent := lines[i-1]
		if i != errorLine {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
			continue
		}

		margin := fmt.Sprintf("  >  %3d | ", i)
		result.WriteString(fmt.Sprintf("%s%s\n", margin, lineContent))
		prefix := []rune(lineContent)
		col := errorCol - 1
		if col < 0 {
			col = 0
		}
		if col > len(prefix) {
			col = len(prefix)
		}
		result.WriteString(fmt.Sprintf("%s^\n", replaceVisibleWithSpaces(margin+string(prefix[:col]))))
	}

	return result.String()
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}

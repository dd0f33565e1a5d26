package repl

import (
	"errors"
	"fmt"
	"io"

	"ensue/internal/backtrace"
	"ensue/internal/util"
)

// PrintError writes err as a single `file:line:col: message` line. With showSource the
// offending source line follows, with a caret under the column.
func PrintError(w io.Writer, file, src string, err error, showSource bool) {
	prefix := ""
	if file != "" {
		prefix = file + ":"
	}
	fmt.Fprintf(w, "%s%s\n", prefix, err.Error())

	var bt *backtrace.Backtrace
	if showSource && errors.As(err, &bt) && bt.Mark.Line > 0 {
		fmt.Fprint(w, util.GetContextLines(src, bt.Mark.Line, bt.Mark.Column))
	}
}

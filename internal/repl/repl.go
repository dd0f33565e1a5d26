package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"ensue/internal/foreign"
	"ensue/internal/lexer"
	"ensue/internal/object"
	"ensue/internal/token"
	"ensue/internal/util"
)

const (
	PROMPT      = ">> "
	CONT_PROMPT = ".. "
)

// blockHeads start commands whose body is normally given on the following, indented lines.
var blockHeads = map[string]bool{"if": true, "while": true, "for": true, "rep": true, "fn": true}

// Evaluator runs one complete entry against a persistent global frame.
type Evaluator interface {
	Eval(src string) (object.Variant, error)
}

// Session collects input lines into entries and evaluates each entry once it is complete.
//
// A single line runs as soon as it is entered unless it opens a block (if, while, for, rep or
// a closure). A block keeps collecting lines until an empty line is entered.
type Session struct {
	eval        Evaluator
	out         io.Writer
	errOut      io.Writer
	showSource  bool
	indentWidth int

	buf []string
}

func NewSession(eval Evaluator, out, errOut io.Writer, config util.Configuration) *Session {
	return &Session{
		eval:        eval,
		out:         out,
		errOut:      errOut,
		showSource:  config.ShowSource,
		indentWidth: config.IndentWidth,
	}
}

// Feed adds one input line and reports whether the session is waiting for more lines.
func (s *Session) Feed(line string) bool {
	if len(s.buf) == 0 {
		if strings.TrimSpace(line) == "" {
			return false
		}
		s.buf = append(s.buf, line)
		if opensBlock(line, s.indentWidth) {
			return true
		}
		s.Flush()
		return false
	}

	if strings.TrimSpace(line) == "" {
		s.Flush()
		return false
	}
	s.buf = append(s.buf, line)
	return true
}

// Flush evaluates whatever has been collected and prints the result or the error.
func (s *Session) Flush() {
	if len(s.buf) == 0 {
		return
	}
	src := strings.Join(s.buf, "\n")
	s.buf = nil

	val, err := s.eval.Eval(src)
	if err != nil {
		PrintError(s.errOut, "", src, err, s.showSource)
		return
	}
	fmt.Fprintln(s.out, val.Represent())
}

// vocabulary lists the reserved words and builtin names offered for completion.
func vocabulary() []string {
	words := token.Keywords()
	for name := range foreign.Globals() {
		words = append(words, name)
	}
	sort.Strings(words)
	return words
}

// completer completes the last word of the line against words, which must be sorted.
func completer(words []string) liner.Completer {
	return func(line string) []string {
		start := strings.LastIndexAny(line, " \t") + 1
		head, word := line[:start], line[start:]
		if word == "" {
			return nil
		}
		var out []string
		for _, w := range words {
			if strings.HasPrefix(w, word) {
				out = append(out, head+w)
			}
		}
		return out
	}
}

func opensBlock(line string, indentWidth int) bool {
	lines, err := lexer.New(line, lexer.WithIndentWidth(indentWidth)).Lines()
	if err != nil || len(lines) == 0 || len(lines[0].Tokens) == 0 {
		return false
	}
	toks := lines[0].Tokens
	if blockHeads[toks[0].Literal] {
		return true
	}
	// let NAME fn ...
	return len(toks) >= 3 && toks[0].Literal == "let" && toks[2].Literal == "fn"
}

// Start runs an interactive session on the terminal with line editing and history kept in
// historyPath. It returns when input ends or on Ctrl-C at an empty prompt.
func Start(eval Evaluator, config util.Configuration, historyPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completer(vocabulary()))

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	session := NewSession(eval, os.Stdout, os.Stderr, config)
	prompt := PROMPT
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			if len(session.buf) == 0 {
				return nil
			}
			session.buf = nil
			prompt = PROMPT
			continue
		}
		if errors.Is(err, io.EOF) {
			session.Flush()
			fmt.Println()
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if session.Feed(line) {
			prompt = CONT_PROMPT
		} else {
			prompt = PROMPT
		}
	}
}

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"ensue/internal/parser"
	"ensue/internal/repl"
	"ensue/internal/util"
	"ensue/pkg/ensue"
)

var (
	// Version is the current version of the ensue binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath  string
	debugTree   string
	maxDepth    int
	indentWidth int
	showSource  bool
	noPrelude   bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configPath, "config", "", "Load settings from a TOML file")
	// parser config
	flag.StringVar(&debugTree, "debug-tree", "", "Print the command tree as json, yaml or text and exit")
	flag.IntVar(&indentWidth, "indent-width", 0, "Spaces per indentation level (default 4)")
	// evaluator config
	flag.IntVar(&maxDepth, "max-depth", 0, "Maximum nested closure calls (default 10000)")
	flag.BoolVar(&showSource, "show-source", false, "Print the offending source line under errors")
	flag.BoolVar(&noPrelude, "no-prelude", false, "Do not load the prelude")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if version {
		printVersion()
		return 0
	}
	if help {
		printHelp()
		return 0
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Creates a new Logger that uses a JSONHandler to write to the configured writer
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	rt := ensue.New(
		ensue.WithConfig(config),
		ensue.WithLogger(defaultLogger),
		ensue.WithOutput(os.Stdout),
	)

	fileName := flag.Arg(0)
	switch {
	case fileName != "":
		src, err := os.ReadFile(fileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read '%s': %v\n", fileName, err)
			return 1
		}
		return execute(rt, config, fileName, string(src))
	case term.IsTerminal(int(os.Stdin.Fd())):
		if config.DebugTree != "" {
			fmt.Fprintln(os.Stderr, "-debug-tree needs a file or piped input")
			return 2
		}
		if err := repl.Start(rt, config, historyPath(config)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	default:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read stdin: %v\n", err)
			return 1
		}
		return execute(rt, config, "<stdin>", string(src))
	}
}

// loadConfiguration reads the optional config file, then applies flags that were set.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	if configPath != "" {
		var err error
		if config, err = util.LoadConfiguration(configPath); err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "debug-tree":
			config.DebugTree = debugTree
		case "max-depth":
			config.MaxDepth = maxDepth
		case "indent-width":
			config.IndentWidth = indentWidth
		case "show-source":
			config.ShowSource = showSource
		case "no-prelude":
			config.NoPrelude = noPrelude
		}
	})

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.EnsueHome = os.Getenv("ENSUE_HOME")
	return config, config.Validate()
}

func execute(rt *ensue.Runtime, config util.Configuration, fileName, src string) int {
	if config.DebugTree != "" {
		return dumpTree(rt, config, fileName, src)
	}
	if _, err := rt.Eval(src); err != nil {
		repl.PrintError(os.Stderr, fileName, src, err, config.ShowSource)
		return 1
	}
	return 0
}

func dumpTree(rt *ensue.Runtime, config util.Configuration, fileName, src string) int {
	program, err := rt.Parse(src)
	if err != nil {
		repl.PrintError(os.Stderr, fileName, src, err, config.ShowSource)
		return 1
	}

	var out string
	switch config.DebugTree {
	case "json":
		out, err = parser.RenderJSON(program.Commands)
	case "yaml":
		out, err = parser.RenderYAML(program.Commands)
	default:
		out = parser.RenderText(program.Commands)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(out)
	return 0
}

func historyPath(config util.Configuration) string {
	if config.HistoryFile == "" || filepath.IsAbs(config.HistoryFile) {
		return config.HistoryFile
	}
	home := config.EnsueHome
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, config.HistoryFile)
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("ensue version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: ensue [options] [filename]

Options:
  -config <path>        Load settings from a TOML file.
  -debug-tree <format>  Print the command tree as json, yaml or text and exit.
  -indent-width <n>     Spaces per indentation level. Default is 4.
  -max-depth <n>        Maximum nested closure calls. Default is 10000.
  -show-source          Print the offending source line under errors.
  -no-prelude           Do not load the prelude.
  -help                 Display this help information and exit.
  -version              Display version information and exit.
  -log-level <level>    Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>      Specify a log file to write logs. Default is stderr.

Details:
Ensue runs indentation structured scripts. Without a filename it reads a program from
standard input, or starts an interactive session when standard input is a terminal.

Examples:
  ensue -log-level=debug          Start with debug logging enabled
  ensue main.ens                  Execute the provided file
  ensue -debug-tree=yaml main.ens Print the command tree of the file

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}

package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Configuration holds everything the runtime and the CLI can be tuned with. Values come from an
// optional TOML file and are then overridden by command line flags.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	EnsueHome string `toml:"-"`

	LogLevel    string `toml:"log_level"`
	LogFile     string `toml:"log_file"`
	DebugTree   string `toml:"debug_tree"` // json, yaml or text
	IndentWidth int    `toml:"indent_width"`
	MaxDepth    int    `toml:"max_depth"`
	ShowSource  bool   `toml:"show_source"`
	HistoryFile string `toml:"history_file"`
	NoPrelude   bool   `toml:"no_prelude"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:    "error",
		IndentWidth: 4,
		MaxDepth:    10000,
		HistoryFile: ".ensue_history",
	}
}

// LoadConfiguration decodes path over the defaults. Keys the file does not set keep their
// default value; unknown keys are an error.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, fmt.Errorf("failed to load configuration '%s': %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("unknown configuration key '%s' in '%s'", undecoded[0], path)
	}
	return config, config.Validate()
}

func (c Configuration) Validate() error {
	switch c.DebugTree {
	case "", "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid debug_tree '%s': expected json, yaml or text", c.DebugTree)
	}
	if c.IndentWidth < 1 {
		return fmt.Errorf("invalid indent_width %d: must be at least 1", c.IndentWidth)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("invalid max_depth %d: must be at least 1", c.MaxDepth)
	}
	return nil
}

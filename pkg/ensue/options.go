package ensue

import (
	"io"
	"log/slog"

	"ensue/internal/util"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput sets where print and println write. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.out = w
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithConfig applies the indent width, the call depth limit and the prelude switch.
func WithConfig(config util.Configuration) Option {
	return func(r *Runtime) {
		r.config = config
	}
}

// WithPrelude replaces the default prelude with custom source.
func WithPrelude(src string) Option {
	return func(r *Runtime) {
		r.prelude = src
	}
}

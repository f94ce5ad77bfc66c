package runnertools

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/sandboxkit/runnertools-go/spec"
)

type Option func(*Set) error

func WithLogger(l *slog.Logger) Option {
	return func(s *Set) error {
		s.logger = l
		return nil
	}
}

// WithNamespace overrides the registration namespace.
func WithNamespace(ns string) Option {
	return func(s *Set) error {
		ns = strings.TrimSpace(ns)
		if ns == "" {
			return errors.New("empty namespace")
		}
		s.namespace = ns
		return nil
	}
}

// WithTools replaces the default runner tool family with an explicit
// descriptor list (registration order preserved).
func WithTools(tools []spec.Tool) Option {
	return func(s *Set) error {
		if len(tools) == 0 {
			return errors.New("empty tool list")
		}
		s.tools = append([]spec.Tool(nil), tools...)
		return nil
	}
}

// Package runnertools assembles the runner tool descriptors and
// registers them with a host tool registry. Construction is an explicit
// New call rather than an import side effect, so hosts control ordering
// and can register the same set into different registries in tests.
package runnertools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sandboxkit/runnertools-go/runnertool"
	"github.com/sandboxkit/runnertools-go/spec"
)

// Set owns an ordered list of tool descriptors and registers them under
// one namespace. It holds no state beyond the descriptors themselves;
// descriptors are immutable and safe to share after registration.
type Set struct {
	logger    *slog.Logger
	namespace string
	tools     []spec.Tool
}

// New builds the Set. By default it carries the full runner tool family
// under runnertool.DefaultNamespace.
func New(opts ...Option) (*Set, error) {
	s := &Set{
		logger:    slog.Default(),
		namespace: runnertool.DefaultNamespace,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(s); err != nil {
			return nil, err
		}
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tools == nil {
		tools, err := runnertool.Tools()
		if err != nil {
			return nil, err
		}
		s.tools = tools
	}
	return s, nil
}

// Namespace returns the registration namespace.
func (s *Set) Namespace() string { return s.namespace }

// Tools returns the descriptors in registration order.
func (s *Set) Tools() []spec.Tool {
	return append([]spec.Tool(nil), s.tools...)
}

// Tool returns one descriptor by name.
func (s *Set) Tool(name string) (spec.Tool, error) {
	for _, t := range s.tools {
		if t.Name == name {
			return t, nil
		}
	}
	return spec.Tool{}, fmt.Errorf("%w: %s", spec.ErrToolNotFound, name)
}

// RegisterAll registers every descriptor with r, reporting per-tool
// success and failure. Registration is fail-fast: the first failure is
// wrapped and returned, and the remaining descriptors in the batch are
// not attempted. RegisterAll is a one-shot operation; registering the
// same set twice is expected to fail with spec.ErrToolAlreadyExists.
func (s *Set) RegisterAll(ctx context.Context, r spec.Registry) error {
	if r == nil {
		return errors.New("nil registry")
	}

	for _, t := range s.tools {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Register(s.namespace, t); err != nil {
			s.logger.Error("tool registration failed",
				"namespace", s.namespace, "tool", t.Name, "err", err)
			return fmt.Errorf("register %s/%s: %w", s.namespace, t.Name, err)
		}
		s.logger.Info("registered tool", "namespace", s.namespace, "tool", t.Name)
	}
	return nil
}

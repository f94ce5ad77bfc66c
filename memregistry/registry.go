// Package memregistry is an in-memory spec.Registry implementation:
// namespace-keyed, first registration of a name wins, duplicates are
// rejected. It backs tests and the CLI; production deployments register
// against the host framework's own registry.
package memregistry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sandboxkit/runnertools-go/spec"
)

type Registry struct {
	mu     sync.RWMutex
	logger *slog.Logger

	// namespace -> name -> descriptor.
	namespaces map[string]map[string]spec.Tool
}

type Option func(*Registry)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		logger:     slog.Default(),
		namespaces: map[string]map[string]spec.Tool{},
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	return r
}

// Register stores the descriptor under namespace/name. The registry
// retains the first descriptor registered for a name; a second
// registration fails with spec.ErrToolAlreadyExists.
func (r *Registry) Register(namespace string, tool spec.Tool) error {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return errors.New("namespace is required")
	}
	if strings.TrimSpace(tool.Name) == "" {
		return errors.New("tool name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns := r.namespaces[namespace]
	if ns == nil {
		ns = map[string]spec.Tool{}
		r.namespaces[namespace] = ns
	}
	if _, dup := ns[tool.Name]; dup {
		return fmt.Errorf("%w: %s/%s", spec.ErrToolAlreadyExists, namespace, tool.Name)
	}
	ns[tool.Name] = tool
	r.logger.Debug("registered tool", "namespace", namespace, "tool", tool.Name)
	return nil
}

// Get returns the descriptor registered under namespace/name.
func (r *Registry) Get(namespace, name string) (spec.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.namespaces[namespace][name]
	return t, ok
}

// List returns the descriptors in a namespace sorted by name.
func (r *Registry) List(namespace string) []spec.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ns := r.namespaces[namespace]
	out := make([]spec.Tool, 0, len(ns))
	for _, t := range ns {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Namespaces returns the known namespace keys, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.namespaces))
	for ns := range r.namespaces {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

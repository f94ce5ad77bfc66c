package runnertool

import (
	"errors"
	"fmt"

	"github.com/sandboxkit/runnertools-go/spec"
)

// Register publishes every runner tool into r under the given namespace
// (DefaultNamespace when empty). Registration is fail-fast: the first
// per-tool failure is returned and the remaining descriptors are not
// attempted.
func Register(r spec.Registry, namespace string) error {
	if r == nil {
		return errors.New("nil registry")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	tools, err := Tools()
	if err != nil {
		return err
	}
	for _, t := range tools {
		if err := r.Register(namespace, t); err != nil {
			return fmt.Errorf("register %s: %w", t.Name, err)
		}
	}
	return nil
}

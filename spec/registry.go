package spec

// Registry is the host tool registry descriptors are published to.
// Implementations reject duplicate names within a namespace with
// ErrToolAlreadyExists and signal total outage with
// ErrRegistryUnavailable. Registering the same name twice is expected to
// fail; registration is a one-shot operation per process lifetime.
type Registry interface {
	Register(namespace string, tool Tool) error
}

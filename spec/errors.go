package spec

import "errors"

var (
	// ErrInvalidToolDef is returned by NewTool for descriptor definitions
	// with missing identity fields, duplicate arguments, or payload
	// placeholders not covered by the declared schema.
	ErrInvalidToolDef = errors.New("invalid tool definition")

	// ErrToolAlreadyExists is returned when registering a tool whose name
	// is already taken within the target namespace.
	ErrToolAlreadyExists = errors.New("tool already exists")

	// ErrToolNotFound is returned when a lookup by namespace/name misses.
	ErrToolNotFound = errors.New("tool not found")

	// ErrRegistryUnavailable is returned when the registry cannot accept
	// registrations at all (as opposed to rejecting one descriptor).
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrMissingArguments is returned by executors that re-check required
	// inputs before launching a payload.
	ErrMissingArguments = errors.New("missing required arguments")

	// ErrUnauthorized maps the sandbox provider's 401 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden maps the sandbox provider's 403 responses.
	ErrForbidden = errors.New("forbidden")

	// ErrSandboxNotFound is returned when a sandbox ID or persisted
	// session name cannot be resolved.
	ErrSandboxNotFound = errors.New("sandbox not found")

	// ErrCommandFailed is returned when a remote command completes with a
	// non-zero exit status; the error text carries the captured output.
	ErrCommandFailed = errors.New("command failed")
)

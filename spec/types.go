// Package spec defines the tool descriptor contract shared by all runner
// tools: argument schemas, the immutable Tool descriptor, and the
// validation entry points the host runtime calls before executing a
// tool's payload.
package spec

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Arg describes one named parameter of a tool.
//
// Arg is a pure value object; it is constructed once when a Tool is built
// and never mutated afterwards.
type Arg struct {
	// Name is the parameter identifier, unique within one tool's Args.
	Name string `json:"name" yaml:"name"`

	// Description is human-readable usage text.
	Description string `json:"description" yaml:"description"`

	// Required marks the argument as mandatory. A required argument must
	// be present AND non-empty; an explicitly supplied empty value counts
	// as missing.
	Required bool `json:"required" yaml:"required"`

	// Group optionally tags the argument as a member of an either-of
	// group: at least one member of each named group must be present and
	// non-empty for validation to pass. Groups are orthogonal to
	// Required (a required arg is always checked individually).
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
}

// FileSpec is a fixed auxiliary file merged into a tool's execution
// environment.
type FileSpec struct {
	Destination string `json:"destination" yaml:"destination"`
	Content     string `json:"content" yaml:"content"`
}

// Tool is the descriptor for one unit of remote/sandboxed script
// execution. It binds identity, argument schema, an opaque payload, and
// an execution environment selector into one immutable record.
//
// The Args list is the single source of truth for validation: argument
// maps are checked only against it, never against the payload text. The
// payload is opaque to this package apart from the construction-time
// placeholder check in NewTool.
type Tool struct {
	// Name is unique across the registration namespace.
	Name string `json:"name"`

	// Description is the human-readable summary presented to the host.
	Description string `json:"description"`

	// Content is the templated payload script. Placeholders of the form
	// $name / ${name} are substituted by the external runtime, not here.
	Content string `json:"content"`

	// Args is the declared argument schema, in declaration order.
	Args []Arg `json:"args"`

	// Image identifies the execution environment (container image tag).
	Image string `json:"image"`

	// IconURL is cosmetic and has no behavioral effect.
	IconURL string `json:"icon_url,omitempty"`

	// Type is the execution environment class (e.g. "docker").
	Type string `json:"type"`

	// WithFiles are fixed files merged into the execution environment.
	WithFiles []FileSpec `json:"with_files,omitempty"`

	// Env are fixed environment variables set for every invocation.
	Env map[string]string `json:"env,omitempty"`

	// Secrets names credential references the environment must provide.
	Secrets []string `json:"secrets,omitempty"`
}

// NewTool validates a descriptor definition and returns it by value.
// It rejects missing identity fields, duplicate or unnamed arguments,
// and payload placeholders that are not covered by the declared args,
// env keys, or secrets. These are programmer errors, fatal at build
// time; runtime argument checking is Validate/ErrorMessage.
func NewTool(t Tool) (Tool, error) {
	if strings.TrimSpace(t.Name) == "" {
		return Tool{}, fmt.Errorf("%w: name is required", ErrInvalidToolDef)
	}
	if strings.TrimSpace(t.Description) == "" {
		return Tool{}, fmt.Errorf("%w: description is required (tool %q)", ErrInvalidToolDef, t.Name)
	}

	seen := map[string]struct{}{}
	for _, a := range t.Args {
		if strings.TrimSpace(a.Name) == "" {
			return Tool{}, fmt.Errorf("%w: unnamed argument (tool %q)", ErrInvalidToolDef, t.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return Tool{}, fmt.Errorf("%w: duplicate argument %q (tool %q)", ErrInvalidToolDef, a.Name, t.Name)
		}
		seen[a.Name] = struct{}{}
	}

	if unknown := t.unknownPlaceholders(); len(unknown) > 0 {
		return Tool{}, fmt.Errorf(
			"%w: payload references undeclared placeholders %v (tool %q)",
			ErrInvalidToolDef, unknown, t.Name,
		)
	}

	// Defensive copies so the descriptor cannot be mutated through the
	// caller's slices/maps after construction.
	t.Args = append([]Arg(nil), t.Args...)
	t.WithFiles = append([]FileSpec(nil), t.WithFiles...)
	t.Secrets = append([]string(nil), t.Secrets...)
	if t.Env != nil {
		env := make(map[string]string, len(t.Env))
		for k, v := range t.Env {
			env[k] = v
		}
		t.Env = env
	}
	return t, nil
}

// Validate reports whether args satisfies the declared schema: every
// required argument is present with a non-empty value, and every
// either-of group has at least one present, non-empty member. Optional
// ungrouped arguments never invalidate. Validate has no side effects and
// never fails with an error; malformed input yields false.
func (t Tool) Validate(args map[string]any) bool {
	return len(t.MissingArgs(args)) == 0 && len(t.unsatisfiedGroups(args)) == 0
}

// MissingArgs returns the names of required arguments that are absent
// from args or mapped to an empty value, in declaration order, without
// duplicates.
func (t Tool) MissingArgs(args map[string]any) []string {
	var missing []string
	for _, a := range t.Args {
		if !a.Required {
			continue
		}
		if v, ok := args[a.Name]; !ok || isEmptyValue(v) {
			missing = append(missing, a.Name)
		}
	}
	return missing
}

// ErrorMessage is the diagnostic companion to Validate: it returns ""
// exactly when Validate(args) is true, and otherwise a human-readable
// message listing missing required arguments in declaration order and
// any unsatisfied either-of groups. Callers gate on Validate and use
// ErrorMessage only to render the failure.
func (t Tool) ErrorMessage(args map[string]any) string {
	var parts []string
	if missing := t.MissingArgs(args); len(missing) > 0 {
		parts = append(parts, "Missing required arguments: "+strings.Join(missing, ", "))
	}
	for _, members := range t.unsatisfiedGroups(args) {
		parts = append(parts, "At least one of the following arguments is required: "+strings.Join(members, ", "))
	}
	return strings.Join(parts, "; ")
}

// RequiredArgs returns the names of required arguments in declaration
// order.
func (t Tool) RequiredArgs() []string {
	var out []string
	for _, a := range t.Args {
		if a.Required {
			out = append(out, a.Name)
		}
	}
	return out
}

// unsatisfiedGroups returns, per unsatisfied either-of group in first
// declaration order, the member argument names in declaration order.
func (t Tool) unsatisfiedGroups(args map[string]any) [][]string {
	var order []string
	members := map[string][]string{}
	satisfied := map[string]bool{}

	for _, a := range t.Args {
		if a.Group == "" {
			continue
		}
		if _, ok := members[a.Group]; !ok {
			order = append(order, a.Group)
		}
		members[a.Group] = append(members[a.Group], a.Name)
		if v, ok := args[a.Name]; ok && !isEmptyValue(v) {
			satisfied[a.Group] = true
		}
	}

	var out [][]string
	for _, g := range order {
		if !satisfied[g] {
			out = append(out, members[g])
		}
	}
	return out
}

// unknownPlaceholders lists payload placeholders not covered by declared
// args, fixed env keys, secrets, or variables the payload itself
// assigns. Sorted for stable error text.
func (t Tool) unknownPlaceholders() []string {
	refs := Placeholders(t.Content)
	if len(refs) == 0 {
		return nil
	}

	known := map[string]struct{}{}
	for _, a := range t.Args {
		known[a.Name] = struct{}{}
	}
	for k := range t.Env {
		known[k] = struct{}{}
	}
	for _, s := range t.Secrets {
		known[s] = struct{}{}
	}
	for _, v := range assignedShellVars(t.Content) {
		known[v] = struct{}{}
	}

	var unknown []string
	for _, r := range refs {
		if _, ok := known[r]; !ok {
			unknown = append(unknown, r)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// isEmptyValue implements the documented "falsy" semantics for argument
// values: nil, empty string, false, numeric zero, and empty
// slices/maps/arrays all count as missing.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case int:
		return x == 0
	case int32:
		return x == 0
	case int64:
		return x == 0
	case uint:
		return x == 0
	case uint32:
		return x == 0
	case uint64:
		return x == 0
	case float32:
		return x == 0
	case float64:
		return x == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

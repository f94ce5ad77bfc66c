package memregistry

import (
	"errors"
	"testing"

	"github.com/sandboxkit/runnertools-go/spec"
)

func tool(name, description string) spec.Tool {
	return spec.Tool{Name: name, Description: description, Image: "python:3.11-slim", Type: "docker"}
}

func TestRegister_DuplicateNameKeepsFirst(t *testing.T) {
	t.Parallel()

	r := New()

	first := tool("python_script_runner", "first registration")
	second := tool("python_script_runner", "second registration")

	if err := r.Register("python_script_runner", first); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := r.Register("python_script_runner", second)
	if !errors.Is(err, spec.ErrToolAlreadyExists) {
		t.Fatalf("err = %v, want ErrToolAlreadyExists", err)
	}

	got, ok := r.Get("python_script_runner", "python_script_runner")
	if !ok {
		t.Fatalf("tool missing after duplicate rejection")
	}
	if got.Description != "first registration" {
		t.Fatalf("registry retained %q, want the first descriptor", got.Description)
	}
}

func TestRegister_NamespacesAreIndependent(t *testing.T) {
	t.Parallel()

	r := New()

	if err := r.Register("ns-a", tool("shared", "a")); err != nil {
		t.Fatalf("Register ns-a: %v", err)
	}
	if err := r.Register("ns-b", tool("shared", "b")); err != nil {
		t.Fatalf("Register ns-b (same name, other namespace): %v", err)
	}

	if got := r.Namespaces(); len(got) != 2 || got[0] != "ns-a" || got[1] != "ns-b" {
		t.Fatalf("Namespaces = %v", got)
	}
}

func TestRegister_RejectsEmptyIdentity(t *testing.T) {
	t.Parallel()

	r := New()

	if err := r.Register("", tool("x", "d")); err == nil {
		t.Fatalf("empty namespace: expected error")
	}
	if err := r.Register("ns", spec.Tool{Description: "d"}); err == nil {
		t.Fatalf("empty name: expected error")
	}
}

func TestList_SortedByName(t *testing.T) {
	t.Parallel()

	r := New()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register("ns", tool(n, "d")); err != nil {
			t.Fatalf("Register %s: %v", n, err)
		}
	}

	got := r.List("ns")
	if len(got) != 3 || got[0].Name != "alpha" || got[1].Name != "mid" || got[2].Name != "zeta" {
		t.Fatalf("List = %v", got)
	}
	if empty := r.List("other"); len(empty) != 0 {
		t.Fatalf("List(other) = %v, want empty", empty)
	}
}

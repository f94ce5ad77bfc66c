package sandboxstore

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandboxkit/runnertools-go/spec"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(WithDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	path, err := st.Save(Record{ID: "sbx-123", Name: "my demo!", Template: "python"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := filepath.Base(path); got != "sandbox_my_demo_.json" {
		t.Fatalf("file name = %q, want sanitized key", got)
	}

	rec, err := st.Load("my demo!")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.ID != "sbx-123" || rec.Template != "python" {
		t.Fatalf("roundtrip mismatch: %+v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be stamped on save")
	}
}

func TestSave_DefaultsNameWhenEmpty(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	path, err := st.Save(Record{ID: "sbx-1"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(path, "sandbox_python_script.json") {
		t.Fatalf("expected default name key, got %q", path)
	}
}

func TestLoad_MissingIsSandboxNotFound(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	if _, err := st.Load("never-created"); !errors.Is(err, spec.ErrSandboxNotFound) {
		t.Fatalf("err = %v, want ErrSandboxNotFound", err)
	}
}

func TestResolve_PrefersIDThenName(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	if _, err := st.Save(Record{ID: "sbx-a", Name: "alpha"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := st.Save(Record{ID: "sbx-b", Name: "beta"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := st.Resolve("sbx-b")
	if err != nil {
		t.Fatalf("Resolve by id: %v", err)
	}
	if rec.Name != "beta" {
		t.Fatalf("Resolve by id got %+v", rec)
	}

	rec, err = st.Resolve("alpha")
	if err != nil {
		t.Fatalf("Resolve by name: %v", err)
	}
	if rec.ID != "sbx-a" {
		t.Fatalf("Resolve by name got %+v", rec)
	}

	if _, err := st.Resolve("missing"); !errors.Is(err, spec.ErrSandboxNotFound) {
		t.Fatalf("err = %v, want ErrSandboxNotFound", err)
	}
}

func TestSave_NewestWinsName(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	if _, err := st.Save(Record{ID: "old", Name: "shared"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := st.Save(Record{ID: "new", Name: "shared"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := st.Load("shared")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.ID != "new" {
		t.Fatalf("expected newest record retained, got %+v", rec)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	st := newStore(t)

	if _, err := st.Save(Record{ID: "sbx-1", Name: "gone"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Load("gone"); !errors.Is(err, spec.ErrSandboxNotFound) {
		t.Fatalf("err = %v, want ErrSandboxNotFound after delete", err)
	}
	// Idempotent.
	if err := st.Delete("gone"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

package localrunner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sandboxkit/runnertools-go/spec"
)

func TestRun_RequiresPathOrContent(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = r.Run(context.Background(), Request{})
	if !errors.Is(err, spec.ErrMissingArguments) {
		t.Fatalf("err = %v, want ErrMissingArguments", err)
	}

	// Whitespace-only values are missing too.
	_, err = r.Run(context.Background(), Request{ScriptContent: "   ", ScriptPath: " "})
	if !errors.Is(err, spec.ErrMissingArguments) {
		t.Fatalf("whitespace err = %v, want ErrMissingArguments", err)
	}
}

func TestRun_MissingScriptFile(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = r.Run(context.Background(), Request{
		ScriptPath: filepath.Join(t.TempDir(), "nope.py"),
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want script-not-found", err)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, Request{ScriptContent: "print(1)"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	r, err := New(WithTempDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, cleanup, err := r.materialize("print(1)")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp script: %v", err)
	}
	if string(data) != "print(1)\n" {
		t.Fatalf("content = %q, want trailing newline appended", data)
	}
	if filepath.Ext(path) != ".py" {
		t.Fatalf("temp script path = %q, want .py", path)
	}

	cleanup()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp script removed, stat err = %v", err)
	}
}

func TestNew_ExtensionOption(t *testing.T) {
	t.Parallel()

	r, err := New(WithAllowedScriptExtensions([]string{"PY", ".sh", " "}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := r.runScriptPolicy.AllowedExtensions
	if len(got) != 2 || !slices.Contains(got, ".py") || !slices.Contains(got, ".sh") {
		t.Fatalf("AllowedExtensions = %v", got)
	}
}

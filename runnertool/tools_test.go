package runnertool

import (
	"errors"
	"strings"
	"testing"

	"github.com/sandboxkit/runnertools-go/memregistry"
	"github.com/sandboxkit/runnertools-go/spec"
)

func TestTools_TableLoadsAndValidates(t *testing.T) {
	t.Parallel()

	tools, err := Tools()
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}

	want := []string{
		"python_script_runner",
		"create_codesandbox",
		"execute_codesandbox",
		"create_codesandbox_sdk",
		"execute_codesandbox_sdk",
	}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tools[%d].Name = %q, want %q (table order)", i, tools[i].Name, name)
		}
		if tools[i].Content == "" {
			t.Errorf("%s: empty payload", name)
		}
		if tools[i].Type != "docker" {
			t.Errorf("%s: Type = %q", name, tools[i].Type)
		}
		if tools[i].Env["PYTHONUNBUFFERED"] != "1" {
			t.Errorf("%s: common env not merged", name)
		}
		if len(tools[i].WithFiles) == 0 {
			t.Errorf("%s: common files not merged", name)
		}
	}
}

func TestTool_ScriptRunnerSchema(t *testing.T) {
	t.Parallel()

	tool, err := Tool("python_script_runner")
	if err != nil {
		t.Fatalf("Tool: %v", err)
	}

	if tool.Image != "python:3.11-slim" {
		t.Fatalf("Image = %q", tool.Image)
	}
	if got := tool.Secrets; len(got) != 1 || got[0] != "CODE_SANDBOX_API" {
		t.Fatalf("Secrets = %v", got)
	}

	// Both args optional but grouped: one of them must be supplied.
	if tool.Validate(map[string]any{}) {
		t.Fatalf("expected invalid without script_path or script_content")
	}
	if !tool.Validate(map[string]any{"script_content": "print(1)"}) {
		t.Fatalf("expected inline content to satisfy the group")
	}
	if !tool.Validate(map[string]any{"script_path": "/x.py"}) {
		t.Fatalf("expected path to satisfy the group")
	}
	if len(tool.RequiredArgs()) != 0 {
		t.Fatalf("script runner args must be declared optional")
	}

	for _, want := range []string{"pip install pandas", "pip install boto3", "apt-get install -y gcc"} {
		if !strings.Contains(tool.Content, want) {
			t.Errorf("payload missing %q", want)
		}
	}
}

func TestTool_SandboxSchemas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		image    string
		secret   string
		optional []string
	}{
		{"create_codesandbox", "python:3.11-slim", "CODE_SANDBOX_API", []string{"sandbox_name", "template_type"}},
		{"execute_codesandbox", "python:3.11-slim", "CODE_SANDBOX_API", []string{"sandbox_id", "sandbox_name"}},
		{"create_codesandbox_sdk", "node:18-alpine", "CSB_API_KEY", []string{"sandbox_name", "template_type"}},
		{"execute_codesandbox_sdk", "node:18-alpine", "CSB_API_KEY", []string{"sandbox_id", "sandbox_name"}},
	}

	for _, tc := range cases {
		tool, err := Tool(tc.name)
		if err != nil {
			t.Fatalf("Tool(%s): %v", tc.name, err)
		}
		if tool.Image != tc.image {
			t.Errorf("%s: Image = %q, want %q", tc.name, tool.Image, tc.image)
		}
		if len(tool.Secrets) != 1 || tool.Secrets[0] != tc.secret {
			t.Errorf("%s: Secrets = %v, want [%s]", tc.name, tool.Secrets, tc.secret)
		}

		if req := tool.RequiredArgs(); len(req) != 1 || req[0] != "script_content" {
			t.Errorf("%s: RequiredArgs = %v, want [script_content]", tc.name, req)
		}
		if tool.Validate(map[string]any{}) {
			t.Errorf("%s: expected invalid without script_content", tc.name)
		}
		args := map[string]any{"script_content": "print(1)"}
		if !tool.Validate(args) {
			t.Errorf("%s: expected valid with script_content only: %s", tc.name, tool.ErrorMessage(args))
		}
		for _, opt := range tc.optional {
			args[opt] = "value"
		}
		if !tool.Validate(args) {
			t.Errorf("%s: optional args broke validation", tc.name)
		}
	}
}

func TestTool_SDKPayloadHasPreamble(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"create_codesandbox_sdk", "execute_codesandbox_sdk"} {
		tool, err := Tool(name)
		if err != nil {
			t.Fatalf("Tool(%s): %v", name, err)
		}
		for _, want := range []string{
			"npm install @codesandbox/sdk",
			`if [ -z "$CSB_API_KEY" ]; then`,
		} {
			if !strings.Contains(tool.Content, want) {
				t.Errorf("%s: payload missing %q", name, want)
			}
		}
	}
}

func TestTool_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := Tool("no_such_tool"); !errors.Is(err, spec.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
}

func TestRegister_PublishesAllTools(t *testing.T) {
	t.Parallel()

	r := memregistry.New()
	if err := Register(r, ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got := r.List(DefaultNamespace)
	if len(got) != 5 {
		t.Fatalf("registered %d tools, want 5", len(got))
	}

	// Registering again is a duplicate-name failure, fail-fast.
	if err := Register(r, ""); !errors.Is(err, spec.ErrToolAlreadyExists) {
		t.Fatalf("second Register err = %v, want ErrToolAlreadyExists", err)
	}
}

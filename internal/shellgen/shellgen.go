// Package shellgen renders tool payloads from typed command pipelines
// instead of hand-maintained script blobs. Each Step emits one POSIX
// shell fragment; Script assembles the fragments into the final payload
// text. Argument placeholders ($name) are left intact for the external
// runtime to substitute.
package shellgen

import (
	"fmt"
	"strings"
)

// Step is one typed unit of a payload pipeline.
type Step interface {
	emit(b *strings.Builder)
}

// Script renders a pipeline to payload text. The preamble (shebang plus
// fail-fast mode) is always emitted first.
func Script(steps ...Step) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\nset -e\n")
	for _, s := range steps {
		b.WriteString("\n")
		s.emit(&b)
	}
	return b.String()
}

// BindArgs assigns runtime-substituted placeholders to local shell
// variables at the top of the payload, mirroring how every variant
// "parses" its arguments before use.
type BindArgs struct {
	Names []string
}

func (s BindArgs) emit(b *strings.Builder) {
	b.WriteString("# Parse arguments\n")
	for _, n := range s.Names {
		fmt.Fprintf(b, "%s=\"$%s\"\n", n, n)
	}
}

// BindSecret assigns a secret-provided environment variable to a local
// shell variable.
type BindSecret struct {
	Var    string
	Secret string
}

func (s BindSecret) emit(b *strings.Builder) {
	fmt.Fprintf(b, "%s=\"$%s\"\n", s.Var, s.Secret)
}

// RequireVar aborts the payload when a variable is empty, printing the
// supplied usage lines.
type RequireVar struct {
	Name  string
	Usage []string
}

func (s RequireVar) emit(b *strings.Builder) {
	fmt.Fprintf(b, "if [ -z \"$%s\" ]; then\n", s.Name)
	fmt.Fprintf(b, "    echo \"Error: %s argument is required\"\n", s.Name)
	for _, u := range s.Usage {
		fmt.Fprintf(b, "    echo \"%s\"\n", u)
	}
	b.WriteString("    exit 1\nfi\n")
}

// RequireOneOf aborts the payload when none of the variables is set.
// This is the execution-time twin of the schema-level either-of group:
// the payload runs out-of-process, so it re-checks what the descriptor
// already validated.
type RequireOneOf struct {
	Names []string
	Usage []string
}

func (s RequireOneOf) emit(b *strings.Builder) {
	conds := make([]string, 0, len(s.Names))
	for _, n := range s.Names {
		conds = append(conds, fmt.Sprintf("[ -z \"$%s\" ]", n))
	}
	fmt.Fprintf(b, "if %s; then\n", strings.Join(conds, " && "))
	fmt.Fprintf(b, "    echo \"Error: one of %s is required\"\n", strings.Join(s.Names, ", "))
	for _, u := range s.Usage {
		fmt.Fprintf(b, "    echo \"%s\"\n", u)
	}
	b.WriteString("    exit 1\nfi\n")
}

// DefaultVar assigns a fallback when the variable is empty.
type DefaultVar struct {
	Name    string
	Default string
}

func (s DefaultVar) emit(b *strings.Builder) {
	fmt.Fprintf(b, "if [ -z \"$%s\" ]; then\n    %s=%q\nfi\n", s.Name, s.Name, s.Default)
}

// AptPackages installs system packages best-effort: image differences
// must not fail the payload before the real work starts.
type AptPackages struct {
	Packages []string
}

func (s AptPackages) emit(b *strings.Builder) {
	b.WriteString("echo \"Installing system dependencies...\"\n")
	b.WriteString("apt-get update >/dev/null 2>&1 || true\n")
	fmt.Fprintf(b, "apt-get install -y %s >/dev/null 2>&1 || true\n", strings.Join(s.Packages, " "))
}

// PipPackages upgrades pip and installs each package, failing the
// payload on the first install error.
type PipPackages struct {
	Packages []string
}

func (s PipPackages) emit(b *strings.Builder) {
	b.WriteString("echo \"Installing required Python packages...\"\n")
	b.WriteString("pip install --upgrade pip >/dev/null 2>&1\n")
	for _, p := range s.Packages {
		fmt.Fprintf(b, "echo \"Installing %s...\"\n", p)
		fmt.Fprintf(b, "pip install %s >/dev/null 2>&1 || {\n", p)
		fmt.Fprintf(b, "    echo \"Error: failed to install %s\"\n    exit 1\n}\n", p)
	}
}

// NpmPackage initializes an npm project under Dir and installs one
// package locally, failing the payload on error.
type NpmPackage struct {
	Dir     string
	Package string
}

func (s NpmPackage) emit(b *strings.Builder) {
	fmt.Fprintf(b, "mkdir -p %s\ncd %s\n", s.Dir, s.Dir)
	b.WriteString("if [ ! -f package.json ]; then\n    npm init -y >/dev/null 2>&1\nfi\n")
	fmt.Fprintf(b, "echo \"Installing %s...\"\n", s.Package)
	fmt.Fprintf(b, "npm install %s >/dev/null 2>&1 || {\n", s.Package)
	fmt.Fprintf(b, "    echo \"Error: failed to install %s\"\n    exit 1\n}\n", s.Package)
}

// WriteFileFromVar writes a variable's content to a file. printf keeps
// special characters in the script body intact.
type WriteFileFromVar struct {
	Path string
	Var  string
}

func (s WriteFileFromVar) emit(b *strings.Builder) {
	fmt.Fprintf(b, "printf '%%s\\n' \"$%s\" > %q\n", s.Var, s.Path)
}

// WriteFileHeredoc writes literal content to a file via a quoted heredoc
// (no substitution inside Content).
type WriteFileHeredoc struct {
	Path    string
	Content string
}

func (s WriteFileHeredoc) emit(b *strings.Builder) {
	fmt.Fprintf(b, "cat > %q << 'RUNNERTOOLS_EOF'\n", s.Path)
	b.WriteString(s.Content)
	if !strings.HasSuffix(s.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("RUNNERTOOLS_EOF\n")
}

// RunPython executes a Python target and reports success or failure,
// propagating a non-zero exit.
type RunPython struct {
	Target string // shell expression for the script path, e.g. "$TEMP_SCRIPT"
}

func (s RunPython) emit(b *strings.Builder) {
	b.WriteString("echo \"Output:\"\n")
	fmt.Fprintf(b, "if python %q; then\n", s.Target)
	b.WriteString("    echo \"\"\n    echo \"Script executed successfully\"\nelse\n")
	b.WriteString("    echo \"\"\n    echo \"Error: script execution failed\"\n    exit 1\nfi\n")
}

// RunNode executes a Node.js target, propagating a non-zero exit.
type RunNode struct {
	Target string
}

func (s RunNode) emit(b *strings.Builder) {
	fmt.Fprintf(b, "node %q || {\n    echo \"Error: node execution failed\"\n    exit 1\n}\n", s.Target)
}

// Raw is the escape hatch for product-specific fragments that have no
// typed representation.
type Raw struct {
	Text string
}

func (s Raw) emit(b *strings.Builder) {
	b.WriteString(s.Text)
	if !strings.HasSuffix(s.Text, "\n") {
		b.WriteString("\n")
	}
}

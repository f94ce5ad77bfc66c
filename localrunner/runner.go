// Package localrunner executes a Python/shell script on the local host:
// either a script file on disk or inline content written to a temporary
// file first. It is the process-launching collaborator behind the
// python_script_runner tool; sandboxed execution hardening is delegated
// to llmtools-go exectool.
package localrunner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/flexigpt/llmtools-go/exectool"
	"github.com/google/uuid"

	"github.com/sandboxkit/runnertools-go/spec"
)

var defaultAllowedScriptExtensions = []string{".sh", ".py"}

// Request describes one local execution. Exactly like the tool schema,
// ScriptPath and ScriptContent form an either-of pair; content wins when
// both are supplied.
type Request struct {
	ScriptPath    string
	ScriptContent string

	Args    []string
	Env     map[string]string
	Workdir string
}

// Result is the captured outcome of a local execution.
type Result struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	TimedOut   bool
	DurationMS int64
}

type Runner struct {
	logger *slog.Logger

	execPolicy      exectool.ExecutionPolicy
	runScriptPolicy exectool.RunScriptPolicy

	allowedScriptExt    []string
	allowedScriptExtSet bool

	tempDir string
}

type Option func(*Runner) error

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) error {
		r.logger = l
		return nil
	}
}

// WithExecutionPolicy configures the exectool execution policy
// (timeouts, output caps).
func WithExecutionPolicy(policy exectool.ExecutionPolicy) Option {
	return func(r *Runner) error {
		r.execPolicy = policy
		return nil
	}
}

// WithRunScriptPolicy configures exectool's RunScriptPolicy. The runner
// does not implement hardening itself; it delegates to exectool.
func WithRunScriptPolicy(policy exectool.RunScriptPolicy) Option {
	return func(r *Runner) error {
		norm, err := exectool.NormalizeRunScriptPolicy(policy)
		if err != nil {
			return err
		}
		r.runScriptPolicy = norm
		return nil
	}
}

// WithAllowedScriptExtensions restricts which script extensions may be
// executed. Default: [".sh", ".py"].
func WithAllowedScriptExtensions(exts []string) Option {
	return func(r *Runner) error {
		out := make([]string, 0, len(exts))
		for _, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			out = append(out, e)
		}
		r.allowedScriptExt = out
		r.allowedScriptExtSet = true
		return nil
	}
}

// WithTempDir overrides where inline script content is materialized.
func WithTempDir(dir string) Option {
	return func(r *Runner) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return errors.New("empty temp dir")
		}
		r.tempDir = dir
		return nil
	}
}

func New(opts ...Option) (*Runner, error) {
	r := &Runner{
		logger:          slog.Default(),
		execPolicy:      exectool.DefaultExecutionPolicy(),
		runScriptPolicy: exectool.DefaultRunScriptPolicy(),
		tempDir:         os.TempDir(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(r); err != nil {
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	if r.allowedScriptExtSet {
		r.runScriptPolicy.AllowedExtensions = append([]string(nil), r.allowedScriptExt...)
	} else if len(r.runScriptPolicy.AllowedExtensions) == 0 {
		r.runScriptPolicy.AllowedExtensions = append([]string(nil), defaultAllowedScriptExtensions...)
	}

	norm, err := exectool.NormalizeRunScriptPolicy(r.runScriptPolicy)
	if err != nil {
		return nil, err
	}
	r.runScriptPolicy = norm
	return r, nil
}

// Run executes the request and returns the captured outcome. The
// either-of check mirrors the tool schema so malformed requests never
// reach the process launcher.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	hasContent := strings.TrimSpace(req.ScriptContent) != ""
	hasPath := strings.TrimSpace(req.ScriptPath) != ""
	if !hasContent && !hasPath {
		return Result{}, fmt.Errorf(
			"%w: either script_path or script_content is required",
			spec.ErrMissingArguments,
		)
	}

	var root, rel string
	switch {
	case hasContent:
		// Inline content is materialized to a throwaway file, like the
		// payload's temp-script branch.
		scriptAbs, cleanup, err := r.materialize(req.ScriptContent)
		if err != nil {
			return Result{}, err
		}
		defer cleanup()
		root, rel = filepath.Dir(scriptAbs), filepath.Base(scriptAbs)
	default:
		abs, err := filepath.Abs(req.ScriptPath)
		if err != nil {
			return Result{}, err
		}
		if _, err := os.Stat(abs); err != nil {
			return Result{}, fmt.Errorf("script %q not found: %w", req.ScriptPath, err)
		}
		root, rel = filepath.Dir(abs), filepath.Base(abs)
	}

	et, err := exectool.NewExecTool(
		exectool.WithAllowedRoots([]string{root}),
		exectool.WithWorkBaseDir(root),
		exectool.WithExecutionPolicy(r.execPolicy),
		exectool.WithRunScriptPolicy(r.runScriptPolicy),
	)
	if err != nil {
		return Result{}, err
	}

	r.logger.Debug("running local script", "script", rel, "workdir", req.Workdir)

	res, err := et.RunScript(ctx, exectool.RunScriptArgs{
		Path:    rel,
		Args:    req.Args,
		Env:     req.Env,
		WorkDir: req.Workdir,
	})
	if err != nil {
		return Result{}, err
	}
	if res == nil {
		return Result{}, errors.New("runscript returned nil result")
	}
	return Result{
		ExitCode:   res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		TimedOut:   res.TimedOut,
		DurationMS: res.DurationMS,
	}, nil
}

// materialize writes inline content under the runner's temp dir and
// returns the absolute path plus a cleanup func.
func (r *Runner) materialize(content string) (string, func(), error) {
	dir, err := os.MkdirTemp(r.tempDir, "runnertools-")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "script_"+uuid.NewString()+".py")
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o700); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	return path, func() { _ = os.RemoveAll(dir) }, nil
}

// Package csbclient is a minimal client for the remote sandbox
// provider's HTTP API: create a sandbox from a file-set and template,
// write/read text files in a session, and run shell commands with a
// timeout. Everything interesting happens on the provider side; this
// client only shapes requests and maps error statuses.
package csbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandboxkit/runnertools-go/spec"
)

// DefaultBaseURL is the provider's v1 API root.
const DefaultBaseURL = "https://codesandbox.io/api/v1"

type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	logger  *slog.Logger
}

type Option func(*Client) error

func WithBaseURL(u string) Option {
	return func(c *Client) error {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u == "" {
			return errors.New("empty base URL")
		}
		c.baseURL = u
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		c.hc = hc
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: api key is required", spec.ErrUnauthorized)
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// FileContent is one file in a sandbox file-set.
type FileContent struct {
	Content string `json:"content"`
}

type CreateSandboxRequest struct {
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Files       map[string]FileContent `json:"files"`
	Template    string                 `json:"template,omitempty"`
	Privacy     string                 `json:"privacy,omitempty"`

	HibernationTimeoutSeconds int `json:"hibernationTimeoutSeconds,omitempty"`
}

// Sandbox is the provider's record of a created session.
type Sandbox struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// CommandResult carries the captured output of a remote command.
type CommandResult struct {
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output"`
	TimedOut bool   `json:"timed_out,omitempty"`
}

// CreateSandbox submits a file-set and template and returns the opaque
// session record.
func (c *Client) CreateSandbox(ctx context.Context, req CreateSandboxRequest) (Sandbox, error) {
	if len(req.Files) == 0 {
		return Sandbox{}, errors.New("files are required")
	}

	var sb Sandbox
	if err := c.do(ctx, http.MethodPost, "/sandboxes", req, &sb); err != nil {
		return Sandbox{}, err
	}
	if sb.ID == "" {
		return Sandbox{}, errors.New("provider returned no sandbox id")
	}
	c.logger.Debug("created sandbox", "id", sb.ID, "title", sb.Title)
	return sb, nil
}

// SandboxURL returns the shareable URL for a sandbox ID.
func (c *Client) SandboxURL(id string) string {
	return "https://codesandbox.io/s/" + url.PathEscape(id)
}

// WriteTextFile writes content to a path inside the sandbox.
func (c *Client) WriteTextFile(ctx context.Context, sandboxID, path, content string) error {
	if err := checkSandboxRef(sandboxID, path); err != nil {
		return err
	}
	body := map[string]string{"path": path, "content": content}
	return c.do(ctx, http.MethodPost, "/sandboxes/"+url.PathEscape(sandboxID)+"/fs/write", body, nil)
}

// ReadTextFile reads a text file from the sandbox.
func (c *Client) ReadTextFile(ctx context.Context, sandboxID, path string) (string, error) {
	if err := checkSandboxRef(sandboxID, path); err != nil {
		return "", err
	}
	var out struct {
		Content string `json:"content"`
	}
	p := "/sandboxes/" + url.PathEscape(sandboxID) + "/fs/read?path=" + url.QueryEscape(path)
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// RunCommand executes a shell command in the sandbox, waiting up to
// timeout for completion. A non-zero exit or a provider-side timeout is
// an error; the captured output is returned either way.
func (c *Client) RunCommand(
	ctx context.Context,
	sandboxID, command string,
	timeout time.Duration,
) (CommandResult, error) {
	if strings.TrimSpace(sandboxID) == "" {
		return CommandResult{}, fmt.Errorf("%w: empty sandbox id", spec.ErrSandboxNotFound)
	}
	if strings.TrimSpace(command) == "" {
		return CommandResult{}, errors.New("command is required")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body := map[string]any{"command": command}
	if timeout > 0 {
		body["timeout_seconds"] = int(timeout / time.Second)
	}

	var res CommandResult
	p := "/sandboxes/" + url.PathEscape(sandboxID) + "/commands"
	if err := c.do(ctx, http.MethodPost, p, body, &res); err != nil {
		// A deadline hit on our side is the same contract as a
		// provider-side timeout.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return CommandResult{}, fmt.Errorf("%w: timed out after %s", spec.ErrCommandFailed, timeout)
		}
		return CommandResult{}, err
	}
	if res.TimedOut {
		return res, fmt.Errorf("%w: timed out after %s", spec.ErrCommandFailed, timeout)
	}
	if res.ExitCode != 0 {
		return res, fmt.Errorf("%w: exit %d: %s", spec.ErrCommandFailed, res.ExitCode, strings.TrimSpace(res.Output))
	}
	return res, nil
}

func checkSandboxRef(sandboxID, path string) error {
	if strings.TrimSpace(sandboxID) == "" {
		return fmt.Errorf("%w: empty sandbox id", spec.ErrSandboxNotFound)
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// do sends one authenticated JSON request and decodes the response into
// out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(detail))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: check the provider API key: %s", spec.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: the API key may lack sandbox permissions: %s", spec.ErrForbidden, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", spec.ErrSandboxNotFound, msg)
	default:
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, msg)
	}
}

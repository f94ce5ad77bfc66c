// Package sandboxstore persists sandbox session metadata as JSON files
// keyed by a sanitized human name, so an execute tool can reuse a
// sandbox created earlier instead of creating a new one.
package sandboxstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandboxkit/runnertools-go/internal/pathutil"
	"github.com/sandboxkit/runnertools-go/spec"
)

const filePrefix = "sandbox_"

// Record is the persisted metadata for one sandbox session.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	Title     string    `json:"title,omitempty"`
	Template  string    `json:"template,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	dir    string
	logger *slog.Logger
}

type Option func(*Store) error

// WithDir overrides the metadata directory (default os.TempDir()).
func WithDir(dir string) Option {
	return func(s *Store) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return errors.New("empty store dir")
		}
		s.dir = dir
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) error {
		s.logger = l
		return nil
	}
}

func New(opts ...Option) (*Store, error) {
	s := &Store{
		dir:    os.TempDir(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Save writes the record under its sanitized name and returns the file
// path. An existing record for the same name is overwritten: the newest
// sandbox wins the name.
func (s *Store) Save(rec Record) (string, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return "", errors.New("record id is required")
	}
	if strings.TrimSpace(rec.Name) == "" {
		rec.Name = "python-script"
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	path, err := s.pathFor(rec.Name)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	s.logger.Debug("saved sandbox metadata", "name", rec.Name, "id", rec.ID, "path", path)
	return path, nil
}

// Load returns the record persisted under the given human name.
func (s *Store) Load(name string) (Record, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Record{}, fmt.Errorf("%w: no session persisted for %q", spec.ErrSandboxNotFound, name)
		}
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("corrupt sandbox metadata at %s: %w", path, err)
	}
	return rec, nil
}

// Resolve returns the record for a sandbox ID or persisted name,
// preferring an exact ID match.
func (s *Store) Resolve(idOrName string) (Record, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return Record{}, fmt.Errorf("%w: empty sandbox reference", spec.ErrSandboxNotFound)
	}

	recs, err := s.List()
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if r.ID == idOrName {
			return r, nil
		}
	}
	return s.Load(idOrName)
}

// List returns every parseable record in the store directory. Files that
// are not sandbox metadata are skipped.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil || rec.ID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes the record persisted under the given name. Missing
// records are not an error.
func (s *Store) Delete(name string) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) pathFor(name string) (string, error) {
	file := filePrefix + pathutil.SanitizeName(name) + ".json"
	return pathutil.JoinUnderRoot(s.dir, file)
}

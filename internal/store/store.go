// Package store keeps chore records in a flat comma-separated file.
// The file is the source of truth: every load re-reads it and every update
// rewrites it completely.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/thenoetrevino/chores/internal/models"
)

const defaultFilePerm = 0o644

// Store owns one chore file
type Store struct {
	path   string
	logger *slog.Logger

	// mu serialises read-modify-write cycles within this process;
	// the sidecar file lock covers other processes.
	mu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used to report recovered load problems
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store for the file at path. The file is not touched.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// EnsureInitialized creates the file with only the header row when it does
// not exist yet. An existing file is never modified.
func (s *Store) EnsureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "stat", Path: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	lock, err := acquireLock(s.path)
	if err != nil {
		return &IOError{Op: "lock", Path: s.path, Err: err}
	}
	defer s.releaseLock(lock)

	// another process may have won the race while we waited for the lock
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}

	err = writeFileAtomic(s.path, defaultFilePerm, func(w io.Writer) error {
		return encode(w, &table{})
	})
	if err != nil {
		return &IOError{Op: "create", Path: s.path, Err: err}
	}

	s.logger.Info("created chore file", "path", s.path)
	return nil
}

// Exists reports whether the backing file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// LoadAll returns every chore in file order. Problems are logged, not
// returned: a missing or unreadable file yields an empty slice and bad rows
// are skipped.
func (s *Store) LoadAll() []models.Chore {
	chores, err := s.Load()
	if err != nil {
		s.logger.Error("failed to load chores", "path", s.path, "error", err)
		return []models.Chore{}
	}
	return chores
}

// Load is LoadAll with file-level failures returned to the caller.
// Skipped rows are still only logged.
func (s *Store) Load() ([]models.Chore, error) {
	t, err := s.read()
	if err != nil {
		return nil, err
	}
	chores := t.chores()
	s.logDiagnostics(t, chores)
	s.logger.Debug("loaded chores", "path", s.path, "count", len(chores))
	return chores, nil
}

// FindByID returns the first chore whose identifier equals id
func FindByID(chores []models.Chore, id string) (models.Chore, bool) {
	for _, c := range chores {
		if c.ID() == id {
			return c, true
		}
	}
	return models.Chore{}, false
}

// MarkDone sets the first chore matching id as done on now's calendar date
// and rewrites the file. The file is unchanged when id is unknown.
func (s *Store) MarkDone(id string, now time.Time) (models.Chore, error) {
	var updated models.Chore

	err := s.update(func(t *table) error {
		for i := range t.rows {
			r := &t.rows[i]
			if r.err != nil || r.chore.ID() != id {
				continue
			}
			r.chore.DateLastDone = now.Format(models.DateLayout)
			updated = r.chore
			return nil
		}
		return fmt.Errorf("%w: %s", ErrChoreNotFound, id)
	})
	if err != nil {
		return models.Chore{}, err
	}

	s.logger.Info("marked chore done", "id", id, "date", updated.DateLastDone)
	return updated, nil
}

// Add appends a new chore. Titles whose identifier is already taken are
// rejected with ErrDuplicateChore.
func (s *Store) Add(chore models.Chore) error {
	if err := Validate(chore); err != nil {
		return err
	}

	err := s.update(func(t *table) error {
		id := chore.ID()
		for _, r := range t.rows {
			if r.err == nil && r.chore.ID() == id {
				return fmt.Errorf("%w: %s", ErrDuplicateChore, id)
			}
		}
		t.rows = append(t.rows, row{chore: chore})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("added chore", "id", chore.ID(), "title", chore.Title)
	return nil
}

// Validate checks the fields of a chore that is about to be written
func Validate(chore models.Chore) error {
	if strings.TrimSpace(chore.Title) == "" {
		return ErrEmptyTitle
	}
	if chore.SoftDeadlineDays != nil && *chore.SoftDeadlineDays < 0 {
		return fmt.Errorf("%s: %w", ColSoftDeadline, ErrNegativeDeadline)
	}
	if chore.HardDeadlineDays != nil && *chore.HardDeadlineDays < 0 {
		return fmt.Errorf("%s: %w", ColHardDeadline, ErrNegativeDeadline)
	}
	if chore.DateLastDone != "" {
		if _, err := time.Parse(models.DateLayout, chore.DateLastDone); err != nil {
			return fmt.Errorf("%s: invalid date %q", ColDateLastDone, chore.DateLastDone)
		}
	}
	return nil
}

// update runs fn on the decoded file under both locks and writes the result
// back atomically. Nothing is written when fn returns an error.
func (s *Store) update(fn func(*table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return &IOError{Op: "stat", Path: s.path, Err: err}
	}

	lock, err := acquireLock(s.path)
	if err != nil {
		return &IOError{Op: "lock", Path: s.path, Err: err}
	}
	defer s.releaseLock(lock)

	t, err := s.read()
	if err != nil {
		return err
	}
	if perr := t.lossy(); perr != nil {
		return fmt.Errorf("refusing to rewrite %s: %w", s.path, perr)
	}

	if err := fn(t); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := encode(&buf, t); err != nil {
		return &IOError{Op: "encode", Path: s.path, Err: err}
	}

	err = writeFileAtomic(s.path, info.Mode().Perm(), func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) read() (*table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("error closing chore file", "path", s.path, "error", err)
		}
	}()

	t, err := decode(f)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	return t, nil
}

func (s *Store) releaseLock(lock *fileLock) {
	if err := lock.release(); err != nil {
		s.logger.Warn("failed to release chore file lock", "path", s.path, "error", err)
	}
}

// logDiagnostics reports skipped rows, inverted deadlines and identifier
// collisions. None of them stop a load.
func (s *Store) logDiagnostics(t *table, chores []models.Chore) {
	for _, perr := range t.skipped() {
		s.logger.Warn("skipping malformed chore row", "path", s.path, "line", perr.Line, "error", perr.Err)
	}

	seen := make(map[string]bool, len(chores))
	for _, c := range chores {
		id := c.ID()
		if seen[id] {
			s.logger.Warn("duplicate chore identifier, only the first row is addressable", "id", id, "title", c.Title)
		}
		seen[id] = true

		if c.DeadlinesInverted() {
			s.logger.Warn("hard deadline is shorter than soft deadline",
				"id", id,
				"soft_deadline_days", *c.SoftDeadlineDays,
				"hard_deadline_days", *c.HardDeadlineDays)
		}
	}
}

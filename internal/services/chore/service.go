// Package chore is the chore service: it owns the current status snapshot,
// refreshes it from the chore file and publishes every change.
package chore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/history"
	"github.com/thenoetrevino/chores/internal/models"
	"github.com/thenoetrevino/chores/internal/status"
	"github.com/thenoetrevino/chores/internal/store"
)

const publishRetries = 3

// Service defines all chore-related business operations
type Service interface {
	// Init creates the chore file if it does not exist yet
	Init(ctx context.Context) error
	// Path is the chore file the service works on
	Path() string

	// Read operations
	Refresh(ctx context.Context) ([]models.ChoreStatus, error)
	Statuses() []models.ChoreStatus
	Get(ctx context.Context, id string) (*models.ChoreStatus, error)
	History(ctx context.Context, id string, limit int) ([]*models.Completion, error)
	CompletionCount(ctx context.Context, id string) (int, error)

	// Write operations
	MarkDone(ctx context.Context, id string) (*models.ChoreStatus, error)
	Add(ctx context.Context, req AddChoreRequest) (*models.ChoreStatus, error)
}

// Store is the part of *store.Store the service uses
type Store interface {
	Path() string
	Exists() bool
	EnsureInitialized() error
	LoadAll() []models.Chore
	MarkDone(id string, now time.Time) (models.Chore, error)
	Add(chore models.Chore) error
}

var _ Store = (*store.Store)(nil)

// AddChoreRequest encapsulates all data needed to add a chore.
// Deadlines are optional; nil means not set.
type AddChoreRequest struct {
	Title            string
	Description      string
	SoftDeadlineDays *int
	HardDeadlineDays *int
	DateLastDone     string // optional, YYYY-MM-DD
}

// Option configures the service
type Option func(*service)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

type service struct {
	store     Store
	history   history.Recorder
	publisher events.Sender
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.RWMutex
	snapshot []models.ChoreStatus
}

// NewService creates a new chore service. recorder and publisher may be nil.
func NewService(st Store, recorder history.Recorder, publisher events.Sender, opts ...Option) Service {
	s := &service{
		store:     st,
		history:   recorder,
		publisher: publisher,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.EnsureInitialized()
}

func (s *service) Path() string {
	return s.store.Path()
}

// Refresh reloads the chore file, recomputes every status and replaces
// the snapshot. A missing file is created first; load problems are logged
// by the store and leave an empty snapshot.
func (s *service) Refresh(ctx context.Context) ([]models.ChoreStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.store.Exists() {
		if err := s.store.EnsureInitialized(); err != nil {
			s.logger.Error("failed to initialize chore file", "path", s.store.Path(), "error", err)
		}
	}

	statuses := s.compute(s.store.LoadAll())

	s.mu.Lock()
	s.snapshot = statuses
	s.mu.Unlock()

	s.logger.Debug("refreshed chores", "count", len(statuses))
	s.publish(events.Event{
		Type:     events.EventChoresRefreshed,
		Statuses: cloneStatuses(statuses),
	})

	return cloneStatuses(statuses), nil
}

// Statuses returns the snapshot from the last Refresh
func (s *service) Statuses() []models.ChoreStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStatuses(s.snapshot)
}

// Get reads the chore file and returns the current status of one chore
func (s *service) Get(ctx context.Context, id string) (*models.ChoreStatus, error) {
	if id == "" {
		return nil, ErrEmptyChoreID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c, ok := store.FindByID(s.store.LoadAll(), id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChoreNotFound, id)
	}

	st := status.Compute(c, s.now())
	return &st, nil
}

// MarkDone records today as the chore's completion date, appends to the
// history log, refreshes and publishes chore_done.
func (s *service) MarkDone(ctx context.Context, id string) (*models.ChoreStatus, error) {
	if id == "" {
		return nil, ErrEmptyChoreID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.store.MarkDone(id, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark chore done: %w", err)
	}

	if s.history != nil {
		// the chore file already holds the new date; a history gap is not fatal
		if _, err := s.history.RecordCompletion(ctx, id, updated.Title, now); err != nil {
			s.logger.Warn("failed to record completion", "id", id, "error", err)
		}
	}

	st := status.Compute(updated, now)

	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after mark done failed", "id", id, "error", err)
	}

	s.publish(events.Event{
		Type:     events.EventChoreDone,
		ChoreID:  id,
		Statuses: []models.ChoreStatus{st},
	})

	return &st, nil
}

// Add validates and appends a new chore, then refreshes
func (s *service) Add(ctx context.Context, req AddChoreRequest) (*models.ChoreStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := models.Chore{
		Title:            req.Title,
		DateLastDone:     req.DateLastDone,
		SoftDeadlineDays: req.SoftDeadlineDays,
		HardDeadlineDays: req.HardDeadlineDays,
		Description:      req.Description,
	}
	if err := store.Validate(c); err != nil {
		return nil, err
	}
	if c.DeadlinesInverted() {
		s.logger.Warn("hard deadline is shorter than soft deadline", "id", c.ID())
	}

	if err := s.store.EnsureInitialized(); err != nil {
		return nil, err
	}
	if err := s.store.Add(c); err != nil {
		return nil, fmt.Errorf("failed to add chore: %w", err)
	}

	st := status.Compute(c, s.now())
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after add failed", "id", c.ID(), "error", err)
	}
	return &st, nil
}

// History lists past completions newest first. An empty id lists all chores.
func (s *service) History(ctx context.Context, id string, limit int) ([]*models.Completion, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}

	completions, err := s.history.ListCompletions(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return completions, nil
}

// CompletionCount returns how many completions the history log holds for id
func (s *service) CompletionCount(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, ErrEmptyChoreID
	}
	if s.history == nil {
		return 0, ErrHistoryUnavailable
	}

	n, err := s.history.CountCompletions(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to load history: %w", err)
	}
	return n, nil
}

func (s *service) compute(chores []models.Chore) []models.ChoreStatus {
	now := s.now()
	statuses := make([]models.ChoreStatus, 0, len(chores))
	for _, c := range chores {
		statuses = append(statuses, status.Compute(c, now))
	}
	return statuses
}

func (s *service) publish(event events.Event) {
	if s.publisher == nil {
		return
	}
	event.Timestamp = s.now()
	if err := events.PublishWithRetry(s.publisher, event, publishRetries); err != nil {
		s.logger.Warn("failed to publish chore event", "type", event.Type, "error", err)
	}
}

func cloneStatuses(in []models.ChoreStatus) []models.ChoreStatus {
	if in == nil {
		return []models.ChoreStatus{}
	}
	out := make([]models.ChoreStatus, len(in))
	copy(out, in)
	return out
}

// FilterByClassification keeps statuses in the given bucket
func FilterByClassification(statuses []models.ChoreStatus, c models.Classification) []models.ChoreStatus {
	out := make([]models.ChoreStatus, 0, len(statuses))
	for _, st := range statuses {
		if st.Classification == c {
			out = append(out, st)
		}
	}
	return out
}

// SortByUrgency orders statuses most urgent first; ties keep file order
func SortByUrgency(statuses []models.ChoreStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		a, b := statuses[i], statuses[j]
		if a.Classification.Severity() != b.Classification.Severity() {
			return a.Classification.Severity() > b.Classification.Severity()
		}
		return a.DaysSince > b.DaysSince
	})
}

// IDs returns the identifiers of statuses, in order
func IDs(statuses []models.ChoreStatus) []string {
	ids := make([]string, len(statuses))
	for i, st := range statuses {
		ids[i] = st.ID
	}
	return ids
}

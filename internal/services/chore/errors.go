package chore

import (
	"errors"

	"github.com/thenoetrevino/chores/internal/store"
)

// Chore-related errors
var (
	// Validation errors
	ErrEmptyChoreID     = errors.New("chore id cannot be empty")
	ErrEmptyTitle       = store.ErrEmptyTitle
	ErrNegativeDeadline = store.ErrNegativeDeadline
	ErrInvalidLimit     = errors.New("invalid limit: must be >= 0")

	// Business logic errors
	ErrChoreNotFound      = store.ErrChoreNotFound
	ErrDuplicateChore     = store.ErrDuplicateChore
	ErrHistoryUnavailable = errors.New("completion history is not configured")
)

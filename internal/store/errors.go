package store

import (
	"errors"
	"fmt"
)

// Store errors
var (
	ErrChoreNotFound     = errors.New("chore not found")
	ErrDuplicateChore    = errors.New("a chore with this identifier already exists")
	ErrEmptyTitle        = errors.New("chore title cannot be empty")
	ErrNegativeDeadline  = errors.New("deadline days cannot be negative")
	ErrMissingTitleField = errors.New("header has no title column")
)

// IOError reports a failed filesystem operation on the chore file
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a row that could not be turned into a chore.
// Line is 1-based and counts the header.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

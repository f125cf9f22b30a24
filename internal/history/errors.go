package history

import "errors"

// ErrEmptyChoreID is returned when recording a completion without a chore id
var ErrEmptyChoreID = errors.New("chore id cannot be empty")

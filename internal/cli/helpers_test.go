package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
	"github.com/thenoetrevino/chores/internal/store"
)

var knownIDs = []string{"clean_oven", "water_plants", "change_sheets", "defrost_freezer", "descale_kettle"}

// ============================================================================
// Suggestion Tests
// ============================================================================

func TestSuggestChoreIDs(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"clean_ovn", "clean_oven"},
		{"water", "water_plants"},
		{"water_plantss", "water_plants"},
		{"kettle", "descale_kettle"},
		{"sheets_change", "change_sheets"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SuggestChoreIDs(tt.input, knownIDs)
			assert.Contains(t, got, tt.want)
			assert.LessOrEqual(t, len(got), MaxSuggestions)
		})
	}
}

func TestSuggestChoreIDs_NoMatch(t *testing.T) {
	assert.Empty(t, SuggestChoreIDs("zzz", knownIDs))
	assert.Empty(t, SuggestChoreIDs("", knownIDs))
	assert.Empty(t, SuggestChoreIDs("clean", nil))
}

func TestNotFoundSuggestion(t *testing.T) {
	assert.Equal(t, "Did you mean: clean_oven?", NotFoundSuggestion("clean_ovn", knownIDs))
	assert.Equal(t, "Run 'chores list' to see all chores", NotFoundSuggestion("zzz", knownIDs))
}

// ============================================================================
// Status Filter Tests
// ============================================================================

func TestParseStatusFilter(t *testing.T) {
	c, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, models.Classification(""), c)

	c, err = ParseStatusFilter(" Overdue ")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, c)

	_, err = ParseStatusFilter("late")
	assert.ErrorContains(t, err, "unknown, ok, due_soon, overdue")
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestHandleError_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
	}{
		{"not found", fmt.Errorf("wrap: %w", store.ErrChoreNotFound), "CHORE_NOT_FOUND", ExitNotFound},
		{"empty id", choreservice.ErrEmptyChoreID, "INVALID_ARGUMENT", ExitUsage},
		{"duplicate", fmt.Errorf("failed to add chore: %w", store.ErrDuplicateChore), "DUPLICATE_CHORE", ExitValidation},
		{"empty title", store.ErrEmptyTitle, "VALIDATION_ERROR", ExitValidation},
		{"negative", fmt.Errorf("soft: %w", store.ErrNegativeDeadline), "VALIDATION_ERROR", ExitValidation},
		{"parse", &store.ParseError{Line: 3, Err: errors.New("bad")}, "DATA_ERROR", ExitDataErr},
		{"io", &store.IOError{Op: "write", Path: "/x", Err: errors.New("disk full")}, "IO_ERROR", ExitError},
		{"history", choreservice.ErrHistoryUnavailable, "HISTORY_UNAVAILABLE", ExitError},
		{"daemon", &events.DaemonError{Message: "Daemon not running", Hint: "start it"}, "DAEMON_UNAVAILABLE", ExitError},
		{"remote", &events.RemoteError{Code: events.CodeInternal, Message: "boom"}, events.CodeInternal, ExitError},
		{"other", errors.New("boom"), "INTERNAL_ERROR", ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			f := &OutputFormatter{JSON: true, Out: &out}

			err := HandleError(f, tt.err, "", nil)
			assert.Equal(t, tt.exit, ExitCode(err))
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, Reported(err))
			assert.Contains(t, out.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestHandleError_NotFoundHuman(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Out: &out, Err: &errOut}

	err := HandleError(f, store.ErrChoreNotFound, "water_plant", knownIDs)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "chore 'water_plant' not found")
	assert.Contains(t, errOut.String(), "Did you mean: water_plants?")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitError, ExitCode(errors.New("plain")))
	assert.Equal(t, ExitUsage, ExitCode(Exit(ExitUsage, nil)))
	assert.Equal(t, ExitNotFound, ExitCode(fmt.Errorf("outer: %w", Exit(ExitNotFound, errors.New("x")))))
	assert.False(t, Reported(errors.New("plain")))
	assert.Equal(t, "exit status 2", Exit(ExitUsage, nil).Error())
}

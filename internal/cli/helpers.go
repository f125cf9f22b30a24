package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
	"github.com/thenoetrevino/chores/internal/store"
)

// MaxSuggestions caps "did you mean" lists
const MaxSuggestions = 3

// SuggestChoreIDs returns the known ids closest to id, best match first
func SuggestChoreIDs(id string, known []string) []string {
	if id == "" || len(known) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] && len(out) < MaxSuggestions {
			seen[s] = true
			out = append(out, s)
		}
	}

	// id typed as an abbreviation of a known id
	for _, match := range fuzzy.Find(id, known) {
		add(known[match.Index])
	}

	// known id contained in a longer mistyped id
	for _, k := range known {
		if len(fuzzy.Find(k, []string{id})) > 0 {
			add(k)
		}
	}

	// same words in another order or a partial word
	for _, k := range known {
		for _, word := range strings.Split(id, "_") {
			if len(word) >= 3 && strings.Contains(k, word) {
				add(k)
				break
			}
		}
	}

	return out
}

// NotFoundSuggestion builds the hint shown for an unknown chore id
func NotFoundSuggestion(id string, known []string) string {
	suggestions := SuggestChoreIDs(id, known)
	if len(suggestions) == 0 {
		return "Run 'chores list' to see all chores"
	}
	return "Did you mean: " + strings.Join(suggestions, ", ") + "?"
}

// ParseStatusFilter validates a --status flag value. Empty means no filter.
func ParseStatusFilter(value string) (models.Classification, error) {
	if value == "" {
		return "", nil
	}
	c, ok := models.ParseClassification(strings.ToLower(strings.TrimSpace(value)))
	if !ok {
		names := make([]string, len(models.AllClassifications))
		for i, c := range models.AllClassifications {
			names[i] = string(c)
		}
		return "", fmt.Errorf("invalid status '%s' (must be: %s)", value, strings.Join(names, ", "))
	}
	return c, nil
}

// HandleError reports err through the formatter and returns it wrapped
// with the matching exit code. known feeds suggestions for unknown ids.
func HandleError(f *OutputFormatter, err error, id string, known []string) error {
	code, exit, suggestion := classify(err)
	if errors.Is(err, store.ErrChoreNotFound) {
		suggestion = NotFoundSuggestion(id, known)
	}

	message := err.Error()
	if exit == ExitNotFound && id != "" {
		message = fmt.Sprintf("chore '%s' not found", id)
	}

	if fmtErr := f.ErrorWithSuggestion(code, message, suggestion); fmtErr != nil {
		return Exit(ExitError, errors.Join(err, fmtErr))
	}
	return Exit(exit, err)
}

func classify(err error) (code string, exit int, suggestion string) {
	var parseErr *store.ParseError
	var ioErr *store.IOError
	var daemonErr *events.DaemonError
	var remoteErr *events.RemoteError

	switch {
	case errors.Is(err, store.ErrChoreNotFound):
		return "CHORE_NOT_FOUND", ExitNotFound, ""
	case errors.Is(err, choreservice.ErrEmptyChoreID), errors.Is(err, choreservice.ErrInvalidLimit):
		return "INVALID_ARGUMENT", ExitUsage, ""
	case errors.Is(err, store.ErrDuplicateChore):
		return "DUPLICATE_CHORE", ExitValidation, "Pick a different title"
	case errors.Is(err, store.ErrEmptyTitle), errors.Is(err, store.ErrNegativeDeadline):
		return "VALIDATION_ERROR", ExitValidation, ""
	case errors.As(err, &parseErr):
		return "DATA_ERROR", ExitDataErr, "Check the chore file for malformed rows"
	case errors.Is(err, choreservice.ErrHistoryUnavailable):
		return "HISTORY_UNAVAILABLE", ExitError, "Check that the history database path is writable"
	case errors.As(err, &remoteErr):
		return remoteErr.Code, ExitError, ""
	case errors.As(err, &daemonErr):
		return "DAEMON_UNAVAILABLE", ExitError, daemonErr.Hint
	case errors.As(err, &ioErr):
		return "IO_ERROR", ExitError, ""
	default:
		return "INTERNAL_ERROR", ExitError, ""
	}
}

package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thenoetrevino/chores/internal/history"
)

// SampleCSV is a small chore file covering every classification on SampleNow
const SampleCSV = `title,date_last_done,soft_deadline_days,hard_deadline_days,description
Clean Oven,2024-01-01,30,45,Deep clean the oven interior
Water Plants,2024-02-17,2,5,Living room and balcony
Change Sheets,2024-02-10,7,14,
Defrost Freezer,,90,180,Never done yet
Descale Kettle,2023-10-01,,,No deadlines
`

// EmptyChoreFile is what a freshly initialized chore file contains
const EmptyChoreFile = "title,date_last_done,soft_deadline_days,hard_deadline_days,description\n"

// SampleNow is the reference time for SampleCSV:
// clean_oven overdue, water_plants due_soon, change_sheets due_soon,
// defrost_freezer overdue (never done), descale_kettle unknown.
var SampleNow = time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

// FixedClock returns a clock that always reports now
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// WriteChoreFile writes content to a chores.csv in a fresh temp dir and returns its path
func WriteChoreFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chores.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write chore file: %v", err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

// SetupTestHistory creates an in-memory completion log
func SetupTestHistory(t *testing.T) *history.Repository {
	t.Helper()

	db, err := history.InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test history: %v", err)
	}
	repo := history.NewRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// CaptureOutput captures stdout during function execution
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	return <-outC
}

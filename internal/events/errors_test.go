package events

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
)

func TestClassifyDaemonError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"missing socket", fmt.Errorf("dial: %w", os.ErrNotExist), ErrSocketNotFound},
		{"enoent", fmt.Errorf("dial: %w", syscall.ENOENT), ErrSocketNotFound},
		{"permission", fmt.Errorf("dial: %w", syscall.EACCES), ErrSocketPermission},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), ErrConnectionRefused},
		{"anything else", errors.New("boom"), ErrDaemonNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDaemonError(tt.err)
			if got.Code != tt.want {
				t.Errorf("Expected code %v, got %v", tt.want, got.Code)
			}
			if got.Hint == "" {
				t.Error("Expected a hint")
			}
			if !errors.Is(got, tt.err) {
				t.Error("Expected the cause to be unwrappable")
			}
		})
	}
}

func TestClassifyDaemonError_Nil(t *testing.T) {
	if ClassifyDaemonError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestClassifyDaemonError_AlreadyClassified(t *testing.T) {
	orig := &DaemonError{Code: ErrSocketPermission, Message: "Permission denied"}
	if got := ClassifyDaemonError(fmt.Errorf("wrapped: %w", orig)); got != orig {
		t.Errorf("Expected existing DaemonError to be returned, got %+v", got)
	}
}

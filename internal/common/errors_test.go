package common

import (
	"errors"
	"strings"
	"testing"
)

func TestAppError_UnwrapsToSentinel(t *testing.T) {
	err := NewAppError("RUBRIC_INVALID", "missing version", ErrConfiguration)
	if !errors.Is(err, ErrConfiguration) {
		t.Error("AppError does not unwrap to its sentinel")
	}
	if got := err.Error(); !strings.Contains(got, "RUBRIC_INVALID") || !strings.Contains(got, "missing version") {
		t.Errorf("Error() = %q, want code and message", got)
	}
}

func TestAppError_NoCause(t *testing.T) {
	err := NewAppError("NO_TRACKS", "nothing to combine", nil)
	if err.Unwrap() != nil {
		t.Error("Unwrap() != nil for a cause-less error")
	}
	if got := err.Error(); got != "NO_TRACKS: nothing to combine" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) != nil")
	}
	wrapped := WrapError(ErrNoEvidence, "consolidate context")
	if !errors.Is(wrapped, ErrNoEvidence) {
		t.Error("wrapped error lost its sentinel")
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeEmptyHistory, "nothing to undo: depth %d", 1)

	if err.Code != ErrCodeEmptyHistory {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeEmptyHistory)
	}

	if err.Message != "nothing to undo: depth 1" {
		t.Errorf("Message = %v, want %v", err.Message, "nothing to undo: depth 1")
	}

	expected := "EMPTY_HISTORY: nothing to undo: depth 1"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeSourceLoad, cause, "decode %s", "cat.png")

	if err.Code != ErrCodeSourceLoad {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSourceLoad)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "SOURCE_LOAD_FAILURE: decode cat.png: unexpected EOF"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodePolicyUnsatisfiable, "test"),
			code:     ErrCodePolicyUnsatisfiable,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodePolicyUnsatisfiable, "test"),
			code:     ErrCodeEmptyHistory,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeSourceSave, New(ErrCodeUnsupportedFormat, "inner"), "outer"),
			code:     ErrCodeSourceSave,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("variation 3: %w", New(ErrCodeDimensionMismatch, "tile")),
			code:     ErrCodeDimensionMismatch,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnsupportedFormat, "test"),
			expected: ErrCodeUnsupportedFormat,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeEmptyHistory, "nothing to undo"),
			expected: "nothing to undo",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeSourceLoad, errors.New("no such file"), "open a.png"),
			expected: "open a.png: no such file",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

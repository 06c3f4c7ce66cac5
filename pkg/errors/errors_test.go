package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeCatalogNotFound, cause, "open catalog")

	if err.Code != ErrCodeCatalogNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeCatalogNotFound)
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
			err:      New(ErrCodeEmptyCatalog, "test"),
			code:     ErrCodeEmptyCatalog,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeEmptyCatalog, "test"),
			code:     ErrCodeCatalogParse,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeCatalogParse, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeCatalogParse,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      errors.Join(errors.New("context"), New(ErrCodeInvalidState, "inner")),
			code:     ErrCodeInvalidState,
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
		{"Error type", New(ErrCodeMissingAssignment, "test"), ErrCodeMissingAssignment},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
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
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"with cause", Wrap(ErrCodeFileNotFound, errors.New("no such file"), "open a.png"), "open a.png: no such file"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDefect(t *testing.T) {
	if !IsDefect(New(ErrCodeMissingAssignment, "label 3")) {
		t.Error("missing assignment should be a defect")
	}
	if IsDefect(New(ErrCodeCatalogNotFound, "gone")) {
		t.Error("missing catalog is user-recoverable")
	}
	if IsDefect(errors.New("plain")) {
		t.Error("plain errors are not classified as defects")
	}
}

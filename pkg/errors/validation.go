package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateRange checks that an integer parameter lies within [lo, hi].
func ValidateRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return New(ErrCodeInvalidInput, "%s must be between %d and %d, got %d", name, lo, hi, v)
	}
	return nil
}

// ValidateThreadID validates a thread identifier supplied by a user.
//
// The rules are conservative:
//   - No empty IDs
//   - No control characters
//   - Maximum length of 32 characters
func ValidateThreadID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "thread id cannot be empty")
	}
	if len(id) > 32 {
		return New(ErrCodeInvalidInput, "thread id too long (max 32 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "thread id contains invalid control characters")
		}
	}
	return nil
}

// ValidateOutputPath validates an artifact output path for safety.
// It rejects empty paths, null bytes and paths whose extension does not
// match the expected one (when ext is non-empty).
func ValidateOutputPath(path, ext string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "output path contains invalid characters")
	}
	if ext != "" && !strings.EqualFold(filepath.Ext(path), "."+ext) {
		return New(ErrCodeInvalidFormat, "output path %q must end in .%s", path, ext)
	}
	return nil
}

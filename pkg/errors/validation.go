package errors

import (
	"strings"
	"unicode"
)

// MaxLabelLength bounds node labels accepted from editors and the API.
const MaxLabelLength = 256

// ValidateLabel checks a node label for display safety.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only labels
//   - No control characters (newlines would break the terminal editor)
//   - Maximum length of MaxLabelLength bytes
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}

	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath checks a path the CLI is about to write a graph to.
// It rejects empty paths, control characters and paths naming a directory.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "output path must name a file, not a directory")
	}

	return nil
}

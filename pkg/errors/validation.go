package errors

import (
	"strings"
	"unicode"
)

const (
	maxLabelLength  = 200
	maxPromptLength = 8000
	maxMapIDLength  = 64
)

// ValidateMapID validates a map identifier for safety.
// Map ids end up in file names and Redis keys, so the rules are conservative:
//   - No empty ids
//   - Only ASCII letters, digits, dash and underscore
//   - Maximum length of 64 characters
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "map id cannot be empty")
	}
	if len(id) > maxMapIDLength {
		return New(ErrCodeInvalidInput, "map id too long (max %d characters)", maxMapIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return New(ErrCodeInvalidInput, "map id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateLabel validates a node label entered by a user.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidInput, "label cannot be empty")
	}
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidatePrompt validates a generation or enhancement prompt.
// Newlines and tabs are allowed; other control characters are not.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return New(ErrCodeInvalidInput, "prompt cannot be empty")
	}
	if len(prompt) > maxPromptLength {
		return New(ErrCodeInvalidInput, "prompt too long (max %d characters)", maxPromptLength)
	}
	for _, r := range prompt {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "prompt contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

package moltbook

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input limits checked before a request is built.
const (
	MaxTitleLength   = 300
	MaxContentLength = 40000
	MaxMessageLength = 10000
	MaxQueryLength   = 500
	MaxLimit         = 50
)

// agentNameRegex validates agent names: 2-32 letters, digits, "_" or "-".
var agentNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{2,32}$`)

// submoltNameRegex validates submolt names.
// Format: lowercase alphanumeric start, then lowercase alphanumerics, "_" or "-", 2-32 characters total.
var submoltNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,31}$`)

// ValidateAgentName checks an agent name's format.
func ValidateAgentName(name string) error {
	if !agentNameRegex.MatchString(name) {
		return validationError(ErrInvalidName, fmt.Sprintf("invalid agent name %q: use 2-32 letters, digits, '_' or '-'", name))
	}
	return nil
}

// ValidateSubmoltName checks a submolt name's format.
func ValidateSubmoltName(name string) error {
	if !submoltNameRegex.MatchString(name) {
		return validationError(ErrInvalidName, fmt.Sprintf("invalid submolt name %q: use 2-32 lowercase letters, digits, '_' or '-'", name))
	}
	return nil
}

// requireID checks that a resource identifier is present and has no whitespace.
func requireID(field, id string) error {
	if id == "" {
		return validationError(ErrMissingInput, field+" is required")
	}
	if strings.ContainsFunc(id, invisible) {
		return validationError(ErrInvalidName, field+" must not contain whitespace")
	}
	return nil
}

// requireText checks that text is non-empty and within limit runes.
func requireText(field, text string, limit int) error {
	if strings.TrimSpace(text) == "" {
		return validationError(ErrMissingInput, field+" is required")
	}
	return maxText(field, text, limit)
}

func maxText(field, text string, limit int) error {
	if n := utf8.RuneCountInString(text); n > limit {
		return validationError(ErrInputTooLong, fmt.Sprintf("%s is %d characters; the limit is %d", field, n, limit))
	}
	return nil
}

func checkLimit(limit int) error {
	if limit < 0 || limit > MaxLimit {
		return validationError(ErrInputTooLong, fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	return nil
}

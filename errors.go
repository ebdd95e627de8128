package moltbook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Common errors returned by the Moltbook client.
var (
	// ErrUnsafeHost is returned when the base URL does not point at the canonical API host.
	ErrUnsafeHost = errors.New("refusing to use non-canonical API host")

	// ErrBodyConflict is returned when a request sets both a JSON and a raw body.
	ErrBodyConflict = errors.New("json body and raw body are mutually exclusive")

	// ErrEmptyKey is returned when an authenticated call is attempted without an API key.
	ErrEmptyKey = errors.New("api key is empty")

	// ErrFileTooLarge is returned when an upload exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")

	// ErrInvalidName is returned when an agent or submolt name has an invalid format.
	ErrInvalidName = errors.New("invalid name")

	// ErrInputTooLong is returned when user supplied text exceeds its limit.
	ErrInputTooLong = errors.New("input exceeds maximum length")

	// ErrMissingInput is returned when a required value is empty.
	ErrMissingInput = errors.New("required value is empty")

	// ErrNotJSON is returned when a success response must be JSON but is not.
	ErrNotJSON = errors.New("response was not valid JSON")

	// ErrTimeout is returned when a request timed out on every attempt.
	ErrTimeout = errors.New("request timed out")
)

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ErrorKind classifies why a call did not produce a Result.
type ErrorKind int

const (
	// KindConfig: unsafe host, conflicting body options, missing key. Never retried.
	KindConfig ErrorKind = iota + 1
	// KindValidation: local input checks failed before a request was built.
	KindValidation
	// KindNetwork: no response was received.
	KindNetwork
	// KindTLS: the TLS handshake or certificate verification failed.
	KindTLS
	// KindTimeout: every permitted attempt timed out.
	KindTimeout
	// KindCanceled: the caller's context was canceled.
	KindCanceled
	// KindProtocol: the server answered with a status >= 400.
	KindProtocol
	// KindMalformed: a success status whose body was required to be JSON but was not.
	KindMalformed
)

var kindNames = map[ErrorKind]string{
	KindConfig:     "config",
	KindValidation: "validation",
	KindNetwork:    "network",
	KindTLS:        "tls",
	KindTimeout:    "timeout",
	KindCanceled:   "canceled",
	KindProtocol:   "protocol",
	KindMalformed:  "malformed",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// APIError is returned by every Client operation that cannot yield a Result.
// Extractable via errors.As(). Supports Unwrap().
type APIError struct {
	Kind ErrorKind
	// Op is "METHOD /path" of the failed call; empty for checks made before a request existed.
	Op string
	// StatusCode is 0 when no response was received.
	StatusCode int
	Message    string
	// Details holds the parsed error body, rate-limit fields and hints.
	Details map[string]any
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.StatusCode != 0:
		return fmt.Sprintf("moltbook: %s: HTTP %d: %s", e.Op, e.StatusCode, msg)
	case e.Op != "":
		return fmt.Sprintf("moltbook: %s: %s error: %s", e.Op, e.Kind, msg)
	default:
		return fmt.Sprintf("moltbook: %s error: %s", e.Kind, msg)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Hint returns the server or client supplied hint, if any.
func (e *APIError) Hint() string {
	s, _ := e.Details[FieldHint].(string)
	return s
}

// RetryAfterSeconds returns the server's retry_after_seconds field.
func (e *APIError) RetryAfterSeconds() (int, bool) {
	return intField(e.Details, FieldRetryAfterSeconds)
}

// RetryAfterMinutes returns the server's retry_after_minutes field.
func (e *APIError) RetryAfterMinutes() (int, bool) {
	return intField(e.Details, FieldRetryAfterMinutes)
}

// DailyRemaining returns the server's daily_remaining field.
func (e *APIError) DailyRemaining() (int, bool) {
	return intField(e.Details, FieldDailyRemaining)
}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func configError(err error, msg string) *APIError {
	return &APIError{Kind: KindConfig, Message: msg, Err: err}
}

func validationError(err error, msg string) *APIError {
	return &APIError{Kind: KindValidation, Message: msg, Err: err}
}

// intField reads an integral value from a decoded JSON mapping.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

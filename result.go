package moltbook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Field names the normalizer reads or adds.
const (
	FieldStatusCode        = "status_code"
	FieldOK                = "ok"
	FieldData              = "data"
	FieldRaw               = "raw"
	FieldNotJSON           = "not_json"
	FieldHint              = "hint"
	FieldWarning           = "warning"
	FieldLocation          = "location"
	FieldError             = "error"
	FieldMessage           = "message"
	FieldRetryAfterSeconds = "retry_after_seconds"
	FieldRetryAfterMinutes = "retry_after_minutes"
	FieldDailyRemaining    = "daily_remaining"
)

const (
	hintNotJSON   = "Response was not JSON."
	hintRateLimit = "Rate limit hit. See retry_after_* fields if present."
	warnRedirect  = "Redirect received and not followed. Use https://" + CanonicalHost + " (with www)."

	errorSnippetLen = 200
)

// Result is the normalized outcome of a call that produced a displayable response.
type Result struct {
	StatusCode int
	// Fields always contains FieldStatusCode.
	Fields map[string]any
}

// Get returns a top-level field.
func (r *Result) Get(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// String returns a top-level string field, or "".
func (r *Result) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// Int returns a top-level integral field.
func (r *Result) Int(key string) (int, bool) {
	return intField(r.Fields, key)
}

// Hint returns the hint field, if any.
func (r *Result) Hint() string { return r.String(FieldHint) }

// Warning returns the warning field, if any.
func (r *Result) Warning() string { return r.String(FieldWarning) }

// Location returns the redirect target of a 3xx result.
func (r *Result) Location() string { return r.String(FieldLocation) }

// IsRedirect reports whether the server answered with a 3xx status.
func (r *Result) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// setIfAbsent adds key only when the mapping does not already carry it,
// so server supplied values win over client defaults.
func setIfAbsent(m map[string]any, key string, v any) {
	if _, ok := m[key]; !ok {
		m[key] = v
	}
}

// decodeJSON parses body preserving numbers as json.Number.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, ErrNotJSON
	}
	return v, nil
}

// normalize converts a received response into a Result or an *APIError.
func normalize(op string, resp *http.Response, body []byte, requireJSON bool) (*Result, error) {
	status := resp.StatusCode
	if status >= 400 {
		return nil, protocolError(op, resp, body)
	}

	ok := status >= 200 && status < 300
	var fields map[string]any

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if requireJSON {
			return nil, &APIError{Kind: KindMalformed, Op: op, StatusCode: status, Message: "empty response body", Err: ErrNotJSON}
		}
		fields = map[string]any{FieldOK: ok}
	} else if v, err := decodeJSON(trimmed); err != nil {
		if requireJSON {
			return nil, &APIError{Kind: KindMalformed, Op: op, StatusCode: status, Message: ErrNotJSON.Error(), Err: ErrNotJSON}
		}
		fields = map[string]any{
			FieldOK:      ok,
			FieldNotJSON: true,
			FieldRaw:     string(body),
			FieldHint:    hintNotJSON,
		}
	} else if obj, isObj := v.(map[string]any); isObj {
		fields = obj
	} else {
		fields = map[string]any{FieldOK: ok, FieldData: v}
	}

	setIfAbsent(fields, FieldStatusCode, status)

	if status >= 300 && status < 400 {
		setIfAbsent(fields, FieldWarning, warnRedirect)
		if loc := resp.Header.Get("Location"); loc != "" {
			setIfAbsent(fields, FieldLocation, loc)
		}
	}

	return &Result{StatusCode: status, Fields: fields}, nil
}

// protocolError builds the error for a status >= 400, keeping any parsed
// object body as Details.
func protocolError(op string, resp *http.Response, body []byte) *APIError {
	status := resp.StatusCode
	details := map[string]any{}
	message := ""

	if v, err := decodeJSON(bytes.TrimSpace(body)); err == nil {
		if obj, ok := v.(map[string]any); ok {
			details = obj
			message = firstString(obj, FieldError, FieldMessage)
		}
	}
	if message == "" {
		message = snippet(string(body), errorSnippetLen)
	}
	if message == "" {
		message = http.StatusText(status)
	}

	setIfAbsent(details, FieldStatusCode, status)
	if status == http.StatusTooManyRequests {
		setIfAbsent(details, FieldHint, hintRateLimit)
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil {
			setIfAbsent(details, FieldRetryAfterSeconds, secs)
		}
	}

	return &APIError{Kind: KindProtocol, Op: op, StatusCode: status, Message: message, Details: details}
}

// firstString returns the first non-empty string among keys. The API
// sometimes nests the message as {"error": {"message": ...}}.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if s := firstString(v, FieldMessage, FieldError); s != "" {
				return s
			}
		}
	}
	return ""
}

// snippet truncates s to at most n runes, appending "..." when cut.
func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

package moltbook

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func response(status int, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Header: header}
}

func TestNormalize_WhitespaceBodyIsEmpty(t *testing.T) {
	res, err := normalize("GET /x", response(200, nil), []byte("  \n"), false)
	if err != nil {
		t.Fatalf("normalize() returned error: %v", err)
	}
	if len(res.Fields) != 2 || res.Fields[FieldOK] != true || res.Fields[FieldStatusCode] != 200 {
		t.Errorf("Fields = %v, want {ok, status_code}", res.Fields)
	}
}

func TestNormalize_NumbersPreserved(t *testing.T) {
	res, err := normalize("GET /x", response(200, nil), []byte(`{"id": 12345678901234567890}`), false)
	if err != nil {
		t.Fatalf("normalize() returned error: %v", err)
	}
	if n, ok := res.Fields["id"].(json.Number); !ok || n.String() != "12345678901234567890" {
		t.Errorf("id = %#v, want exact json.Number", res.Fields["id"])
	}
}

func TestNormalize_TrailingDataIsNotJSON(t *testing.T) {
	res, err := normalize("GET /x", response(200, nil), []byte(`{"a":1} {"b":2}`), false)
	if err != nil {
		t.Fatalf("normalize() returned error: %v", err)
	}
	if res.Fields[FieldNotJSON] != true {
		t.Errorf("Fields = %v, want not_json", res.Fields)
	}
}

func TestNormalize_NonSuccessNonErrorStatus(t *testing.T) {
	res, err := normalize("GET /x", response(302, http.Header{"Location": {"https://moltbook.com/x"}}), nil, false)
	if err != nil {
		t.Fatalf("normalize() returned error: %v", err)
	}
	if res.Fields[FieldOK] != false {
		t.Errorf("ok = %v, want false for a 3xx", res.Fields[FieldOK])
	}
	if res.Location() != "https://moltbook.com/x" || !strings.Contains(res.Warning(), CanonicalHost) {
		t.Errorf("Fields = %v", res.Fields)
	}
}

func TestProtocolError_NestedMessage(t *testing.T) {
	err := protocolError("POST /posts", response(400, nil), []byte(`{"error":{"message":"title too long"}}`))
	if err.Message != "title too long" {
		t.Errorf("Message = %q, want nested message", err.Message)
	}
	if err.Details[FieldStatusCode] != 400 {
		t.Errorf("Details = %v, want status_code", err.Details)
	}
	if err.Hint() != "" {
		t.Errorf("Hint() = %q, only rate limits get a default hint", err.Hint())
	}
}

func TestProtocolError_EmptyBodyUsesStatusText(t *testing.T) {
	err := protocolError("GET /x", response(503, nil), nil)
	if err.Message != http.StatusText(503) {
		t.Errorf("Message = %q, want %q", err.Message, http.StatusText(503))
	}
	if err.Kind != KindProtocol {
		t.Errorf("Kind = %s", err.Kind)
	}
}

func TestProtocolError_RateLimitKeepsServerFields(t *testing.T) {
	h := http.Header{"Retry-After": {"90"}}
	body := []byte(`{"error":"slow down","hint":"Wait an hour","retry_after_seconds":60}`)

	err := protocolError("POST /posts", response(429, h), body)

	if err.Hint() != "Wait an hour" {
		t.Errorf("Hint() = %q, server hint should win", err.Hint())
	}
	if s, _ := err.RetryAfterSeconds(); s != 60 {
		t.Errorf("RetryAfterSeconds() = %d, body value should win over the header", s)
	}
}

func TestSnippet(t *testing.T) {
	if got := snippet("  short  ", 10); got != "short" {
		t.Errorf("snippet() = %q", got)
	}
	if got := snippet("ééééé", 3); got != "ééé..." {
		t.Errorf("snippet() = %q, want rune-safe truncation", got)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	if _, err := decodeJSON([]byte(`[1,2`)); err == nil {
		t.Error("decodeJSON() accepted truncated JSON")
	}
	if _, err := decodeJSON([]byte(`1 2`)); !errors.Is(err, ErrNotJSON) {
		t.Errorf("decodeJSON(two values) = %v, want ErrNotJSON", err)
	}
}

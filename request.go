package moltbook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the API root; a leading "/" is added if missing.
	Path string
	// Query values that are nil or "" are omitted.
	Query map[string]any
	// JSON is marshalled as the request body. Mutually exclusive with Raw.
	JSON any
	// Raw is sent verbatim with ContentType. Mutually exclusive with JSON.
	Raw         []byte
	ContentType string
	Headers     map[string]string
	// RequireAuth attaches the bearer key.
	RequireAuth bool
	// RequireJSON turns an empty or non-JSON success body into a KindMalformed error.
	RequireJSON bool
}

func (r Request) op() string {
	return strings.ToUpper(r.Method) + " " + normalizePath(r.Path)
}

func normalizePath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// pathOnly drops any query written into the path.
func pathOnly(p string) string {
	p, _, _ = strings.Cut(normalizePath(p), "?")
	return p
}

// buildURL joins the API root, path and encoded query, then re-checks the host.
func buildURL(base string, r Request) (string, error) {
	u, err := url.Parse(base + normalizePath(r.Path))
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	if !isCanonicalHost(u) || u.Scheme != "https" {
		return "", ErrUnsafeHost
	}

	// Parameters already in the path are kept; Query entries replace them by name.
	q := u.Query()
	for k, v := range r.Query {
		if s, ok := queryValue(v); ok {
			q.Set(k, s)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func queryValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case *string:
		if t == nil || *t == "" {
			return "", false
		}
		return *t, true
	case *int:
		if t == nil {
			return "", false
		}
		return fmt.Sprint(*t), true
	default:
		return fmt.Sprint(t), true
	}
}

// body returns the encoded request body and its content type.
func (r Request) body() ([]byte, string, error) {
	switch {
	case r.JSON != nil && r.Raw != nil:
		return nil, "", ErrBodyConflict
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encoding JSON body: %w", err)
		}
		return data, "application/json", nil
	case r.Raw != nil:
		return r.Raw, r.ContentType, nil
	}
	return nil, "", nil
}

// readBody reads at most maxResponseBody bytes of a response.
func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	_, err := io.Copy(&buf, io.LimitReader(resp.Body, maxResponseBody))
	return buf.Bytes(), err
}

const maxResponseBody = 10 << 20

package moltbook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest file Upload will send.
const MaxUploadSize = 2 << 20

// Upload describes a multipart upload of a single file.
type Upload struct {
	// Path is the API path, for example "/agents/me/avatar".
	Path string
	// FilePath is the local file to send.
	FilePath string
	// FieldName defaults to "file".
	FieldName string
	// ContentType is guessed from the file extension when empty.
	ContentType string
	// Fields are extra string form fields.
	Fields map[string]string
}

// Upload sends a file as multipart/form-data with POST. The file size is
// checked before the file is read. Uploads are never retried.
func (c *Client) Upload(ctx context.Context, u Upload) (*Result, error) {
	body, contentType, err := buildMultipart(u)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, Request{
		Method:      http.MethodPost,
		Path:        u.Path,
		Raw:         body,
		ContentType: contentType,
		RequireAuth: true,
	})
}

func buildMultipart(u Upload) ([]byte, string, error) {
	info, err := os.Stat(u.FilePath)
	if err != nil {
		return nil, "", validationError(err, fmt.Sprintf("cannot read %s: %v", u.FilePath, err))
	}
	if info.IsDir() {
		return nil, "", validationError(ErrMissingInput, u.FilePath+" is a directory")
	}
	if info.Size() > MaxUploadSize {
		return nil, "", validationError(ErrFileTooLarge, fmt.Sprintf("%s is %d bytes; the limit is %d", u.FilePath, info.Size(), MaxUploadSize))
	}

	f, err := os.Open(u.FilePath)
	if err != nil {
		return nil, "", validationError(err, fmt.Sprintf("cannot open %s: %v", u.FilePath, err))
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	// multipart.NewWriter picks a fresh random boundary for every writer.
	w := multipart.NewWriter(&buf)

	for k, v := range u.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}

	field := u.FieldName
	if field == "" {
		field = "file"
	}
	name := filepath.Base(u.FilePath)
	ct := u.ContentType
	if ct == "" {
		ct = guessContentType(name)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(name)))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}
	// Read one byte past the limit in case the file grew after Stat.
	n, err := io.Copy(part, io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", u.FilePath, err)
	}
	if n > MaxUploadSize {
		return nil, "", validationError(ErrFileTooLarge, fmt.Sprintf("%s exceeds the %d byte limit", u.FilePath, MaxUploadSize))
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

func guessContentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

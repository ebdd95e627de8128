package moltbook

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// isIdempotent reports whether a method may be retried without risking a
// duplicated side effect.
func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// retryOnTimeout is a retryablehttp.CheckRetry that retries timeout-class
// transport failures only. HTTP status codes are never retried.
func retryOnTimeout(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return isTimeout(err), nil
}

// LinearBackoff waits base * n before the n-th retry (n starts at 1).
// It satisfies retryablehttp.Backoff; base is the client's RetryWaitMin.
func LinearBackoff(base, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	return base * time.Duration(attemptNum+1)
}

var _ retryablehttp.Backoff = LinearBackoff

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTLSError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		headerErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		authorityEr x509.UnknownAuthorityError
		hostErr     x509.HostnameError
		invalidErr  x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &headerErr) ||
		errors.As(err, &alertErr) ||
		errors.As(err, &authorityEr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr)
}

// classifyTransportError maps a failure that produced no usable response.
func classifyTransportError(op string, err error) *APIError {
	switch {
	case errors.Is(err, context.Canceled):
		return &APIError{Kind: KindCanceled, Op: op, Message: "request canceled", Err: err}
	case isTimeout(err):
		return &APIError{Kind: KindTimeout, Op: op, Message: ErrTimeout.Error(), Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	case isTLSError(err):
		return &APIError{Kind: KindTLS, Op: op, Message: "TLS failure: " + err.Error(), Err: err}
	default:
		return &APIError{Kind: KindNetwork, Op: op, Message: "network error: " + err.Error(), Err: err}
	}
}

type attemptsKey struct{}

// withAttemptCounter lets the request hook count attempts for one call.
func withAttemptCounter(ctx context.Context, n *int) context.Context {
	return context.WithValue(ctx, attemptsKey{}, n)
}

func countAttempt(ctx context.Context) int {
	n, ok := ctx.Value(attemptsKey{}).(*int)
	if !ok {
		return 0
	}
	*n++
	return *n
}

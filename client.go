package moltbook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// CallRecord describes one finished call. It never contains bodies, headers
// or the query string.
type CallRecord struct {
	At         time.Time
	Method     string
	Path       string
	StatusCode int
	Attempts   int
	Duration   time.Duration
	// ErrorKind is empty for calls that produced a Result.
	ErrorKind string
}

// CallRecorder receives a CallRecord after every call. Errors are logged
// and otherwise ignored.
type CallRecorder interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// Client is the authenticated HTTP client for the Moltbook API.
// It is meant for one foreground caller and is not safe for concurrent use.
type Client struct {
	config    Config
	transport http.RoundTripper
	retrying  *retryablehttp.Client
	single    *retryablehttp.Client
	debug     *DebugLogger
	authOut   io.Writer
	recorder  CallRecorder
}

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the round tripper used for every attempt.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

// WithAuthDebugWriter sets where masked auth-debug lines are printed.
// Defaults to stdout.
func WithAuthDebugWriter(w io.Writer) Option {
	return func(c *Client) {
		c.authOut = w
	}
}

// WithDebugLogger sets the request logger.
func WithDebugLogger(l *DebugLogger) Option {
	return func(c *Client) {
		c.debug = l
	}
}

// WithRecorder sets a CallRecorder.
func WithRecorder(r CallRecorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// New creates a client. A base URL off CanonicalHost is rejected with a
// KindConfig error before anything touches the network.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, configError(err, fmt.Sprintf("refusing base URL %q: must be https://%s%s", cfg.BaseURL, CanonicalHost, APIBasePath))
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError(err, err.Error())
	}

	c := &Client{
		config:  cfg,
		authOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: c.transport,
		// Following a redirect to another host would drop or leak the Authorization header.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	c.retrying = c.newRetryClient(httpClient, cfg.MaxRetries)
	c.single = c.newRetryClient(httpClient, 0)

	return c, nil
}

func (c *Client) newRetryClient(httpClient *http.Client, retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.Logger = nil
	rc.RetryMax = retryMax
	rc.RetryWaitMin = c.config.BackoffBase
	rc.RetryWaitMax = c.config.BackoffBase * time.Duration(retryMax+1)
	rc.Backoff = LinearBackoff
	rc.CheckRetry = retryOnTimeout
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, _ int) {
		n := countAttempt(req.Context())
		c.debug.LogAttempt(req.Method, req.URL.Path, n)
	}
	return rc
}

// Config returns the effective configuration with the API key removed.
func (c *Client) Config() Config {
	cfg := c.config
	cfg.APIKey = ""
	return cfg
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.config.APIKey != ""
}

// SetAuthDebug toggles printing of the masked Authorization header.
func (c *Client) SetAuthDebug(on bool) {
	c.config.AuthDebug = on
}

// Call performs one API request and normalizes the response.
//
// Statuses >= 400 and every transport failure are returned as *APIError.
// Statuses 300-399 are returned as a Result carrying a warning and the
// Location value; redirects are never followed.
func (c *Client) Call(ctx context.Context, req Request) (*Result, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)
	op := req.op()

	attempts := 0
	start := time.Now()
	res, err := c.do(withAttemptCounter(ctx, &attempts), op, req)
	elapsed := time.Since(start)

	if err != nil {
		c.debug.LogError(op, err)
	}
	c.record(ctx, req, res, err, attempts, start, elapsed)
	return res, err
}

func (c *Client) do(ctx context.Context, op string, req Request) (*Result, error) {
	if req.RequireAuth && c.config.APIKey == "" {
		return nil, &APIError{Kind: KindConfig, Op: op, Message: "an API key is required for this call", Err: ErrEmptyKey}
	}

	body, contentType, err := req.body()
	if err != nil {
		return nil, &APIError{Kind: KindConfig, Op: op, Message: err.Error(), Err: err}
	}

	target, err := buildURL(c.config.BaseURL, req)
	if err != nil {
		return nil, &APIError{Kind: KindConfig, Op: op, Message: err.Error(), Err: err}
	}

	var rawBody any
	if body != nil {
		rawBody = body
	}
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, &APIError{Kind: KindConfig, Op: op, Message: "creating request: " + err.Error(), Err: err}
	}
	c.setHeaders(httpReq, req, contentType)

	client := c.single
	if isIdempotent(req.Method) {
		client = c.retrying
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, classifyTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := readBody(resp)
	if err != nil {
		apiErr := classifyTransportError(op, err)
		apiErr.StatusCode = resp.StatusCode
		return nil, apiErr
	}
	c.debug.LogResponse(op, resp.StatusCode, time.Since(start), len(data))

	return normalize(op, resp, data, req.RequireJSON)
}

func (c *Client) setHeaders(httpReq *retryablehttp.Request, req Request, contentType string) {
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Close = true

	if req.RequireAuth {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		if c.config.AuthDebug && c.authOut != nil {
			_, _ = fmt.Fprintf(c.authOut, "[auth-debug] %s Authorization: Bearer %s\n", req.op(), MaskKey(c.config.APIKey))
		}
	}
}

func (c *Client) record(ctx context.Context, req Request, res *Result, err error, attempts int, at time.Time, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	rec := CallRecord{
		At:       at.UTC(),
		Method:   req.Method,
		Path:     pathOnly(req.Path),
		Attempts: attempts,
		Duration: elapsed,
	}
	if res != nil {
		rec.StatusCode = res.StatusCode
	}
	if apiErr, ok := err.(*APIError); ok {
		rec.StatusCode = apiErr.StatusCode
		rec.ErrorKind = apiErr.Kind.String()
	} else if err != nil {
		rec.ErrorKind = "unknown"
	}
	// Recording must not be skipped because the call itself was canceled.
	if recErr := c.recorder.RecordCall(context.WithoutCancel(ctx), rec); recErr != nil {
		c.debug.LogError("record call", recErr)
	}
}

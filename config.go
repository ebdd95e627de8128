package moltbook

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// CanonicalHost is the only host the client will send requests to.
	// The apex domain redirects here, and redirects can drop the Authorization header.
	CanonicalHost = "www.moltbook.com"

	// APIBasePath prefixes every API path.
	APIBasePath = "/api/v1"

	// DefaultBaseURL is the API root.
	DefaultBaseURL = "https://" + CanonicalHost + APIBasePath

	// EnvAPIKey names the environment variable holding the fallback API key.
	EnvAPIKey = "MOLTBOOK_API_KEY"

	// MaxRetriesLimit caps Config.MaxRetries.
	MaxRetriesLimit = 5
)

// Config configures the Moltbook client.
type Config struct {
	// BaseURL is the API root. Must be on CanonicalHost over https.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey authenticates requests. Only calls that do not require
	// authentication (agent registration) may run without it.
	APIKey string

	// Timeout bounds a single attempt. Defaults to 30 seconds.
	Timeout time.Duration

	// MaxRetries is how many extra attempts an idempotent request gets
	// after a timeout. DefaultConfig sets 2; zero disables retries.
	MaxRetries int

	// BackoffBase is multiplied by the retry number to get the wait before
	// each retry. Defaults to 1 second.
	BackoffBase time.Duration

	// AuthDebug prints the masked Authorization header for every
	// authenticated call. It is printed, never written to the debug log.
	AuthDebug bool

	// Debug enables verbose logging of request metadata.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string

	// UserAgent identifies the client. Defaults to "moltbook-cli/dev".
	UserAgent string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     30 * time.Second,
		MaxRetries:  2,
		BackoffBase: time.Second,
		UserAgent:   "moltbook-cli/dev",
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	MOLTBOOK_API_KEY      → APIKey
//	MOLTBOOK_BASE_URL     → BaseURL
//	MOLTBOOK_TIMEOUT      → Timeout ("30s", or plain seconds)
//	MOLTBOOK_MAX_RETRIES  → MaxRetries
//	MOLTBOOK_AUTH_DEBUG   → AuthDebug (1/true/yes enables)
//	MOLTBOOK_DEBUG        → Debug (any non-empty value enables)
//	MOLTBOOK_DEBUG_LOG    → DebugLogPath
//
// Unset or unparseable values are left zero so WithDefaults can fill them.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:       SanitizeKey(os.Getenv(EnvAPIKey)),
		BaseURL:      os.Getenv("MOLTBOOK_BASE_URL"),
		Timeout:      envDuration("MOLTBOOK_TIMEOUT"),
		AuthDebug:    envBool("MOLTBOOK_AUTH_DEBUG"),
		Debug:        os.Getenv("MOLTBOOK_DEBUG") != "",
		DebugLogPath: os.Getenv("MOLTBOOK_DEBUG_LOG"),
	}
	if v := os.Getenv("MOLTBOOK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
	return cfg
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if err := ValidateBaseURL(c.BaseURL); err != nil {
		return &ValidationError{Field: "BaseURL", Message: err.Error()}
	}

	if c.Timeout <= 0 {
		return &ValidationError{Field: "Timeout", Message: "must be positive"}
	}

	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return &ValidationError{Field: "MaxRetries", Message: "must be between 0 and " + strconv.Itoa(MaxRetriesLimit)}
	}

	if c.BackoffBase < 0 {
		return &ValidationError{Field: "BackoffBase", Message: "must be non-negative"}
	}

	return nil
}

// WithDefaults fills in default values for unset fields.
// MaxRetries is left alone: zero is a valid choice.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = defaults.BackoffBase
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	c.APIKey = SanitizeKey(c.APIKey)

	return c
}

// ValidateBaseURL rejects any base URL that is not https on CanonicalHost
// under APIBasePath.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrUnsafeHost
	}
	if u.Scheme != "https" || u.User != nil {
		return ErrUnsafeHost
	}
	if !isCanonicalHost(u) {
		return ErrUnsafeHost
	}
	if u.Path != APIBasePath && !strings.HasPrefix(u.Path, APIBasePath+"/") {
		return ErrUnsafeHost
	}
	return nil
}

func isCanonicalHost(u *url.URL) bool {
	return u.Host == CanonicalHost
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// envDuration accepts values like "30s" or a plain number of seconds.
func envDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

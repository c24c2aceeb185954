package pipeline

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/loregen/providers/settings"
)

// Default configuration values applied by [New] when the corresponding
// Config field is zero.
const (
	// DefaultTryLimit is the maximum number of attempts for one logical
	// request, including the first.
	DefaultTryLimit = 3
	// DefaultResponsePath is the dot-path into the raw response JSON where
	// OpenAI-compatible endpoints carry the answer text.
	DefaultResponsePath = "choices.0.message.content"
)

// BackoffConfig holds the tuning parameters for the wait between retry
// attempts. Zero values are replaced with the defaults documented below when
// [New] is called.
type BackoffConfig struct {
	// Initial is the wait duration before the second attempt. Default: 1s.
	Initial time.Duration
	// Max caps the computed backoff so it never exceeds this value.
	// Default: 30s.
	Max time.Duration
	// Factor is the exponential growth multiplier applied to Initial on
	// successive retries. Default: 2.0.
	Factor float64
	// JitterFraction adds random noise to the computed backoff in the range
	// [0, JitterFraction * backoff]. Default: 0.1 (10% jitter).
	JitterFraction float64
}

// Config carries everything a [Pipeline] needs. All fields are read-only
// after [New]; concurrent ProcessRequest calls share it without coordination.
type Config struct {
	// PayloadTemplate is the request body template containing the
	// Placeholder* markers. Its rendered form must parse as a JSON object.
	PayloadTemplate string

	// BaseURL is the target endpoint. When it carries no scheme, one is
	// composed from the HTTPS flag.
	BaseURL string

	// HTTPS selects the scheme used when BaseURL has none.
	HTTPS bool

	// APIKey, when non-empty, is attached as a bearer Authorization header.
	APIKey string

	// TryLimit is the maximum number of attempts for one logical request,
	// including the first. Default: DefaultTryLimit.
	TryLimit int

	// ResponsePath is the dot-path walked into the raw response JSON to find
	// the answer text. Default: DefaultResponsePath.
	ResponsePath string

	// ReasoningEndTag, when non-empty and present in the answer text, marks
	// where chain-of-thought ends; everything through its first occurrence
	// is discarded.
	ReasoningEndTag string

	// RetrySchemaMismatch makes schema validation failures retryable instead
	// of fatal.
	RetrySchemaMismatch bool

	// ModelFilter restricts ListModels results to identifiers containing
	// this substring. Empty means no filtering.
	ModelFilter string

	// HTTPClient overrides the HTTP client used for requests.
	HTTPClient *http.Client

	// Logger receives warning logs for retried attempts and error logs for
	// final failures. Default: slog.Default().
	Logger *slog.Logger

	Backoff BackoffConfig
}

// FromStore builds a Config by reading the namespaced settings keys. Values
// are read once; call FromStore again to pick up changed settings.
func FromStore(store settings.Store) Config {
	return Config{
		PayloadTemplate:     settings.GetString(store, settings.KeyPayloadTemplate, ""),
		BaseURL:             settings.GetString(store, settings.KeyBaseURL, ""),
		HTTPS:               settings.GetBool(store, settings.KeyHTTPS, true),
		APIKey:              settings.GetString(store, settings.KeyAPIKey, ""),
		TryLimit:            settings.GetInt(store, settings.KeyTryLimit, DefaultTryLimit),
		ResponsePath:        settings.GetString(store, settings.KeyResponsePath, DefaultResponsePath),
		ReasoningEndTag:     settings.GetString(store, settings.KeyReasoningEndTag, ""),
		ModelFilter:         settings.GetString(store, settings.KeyModelFilter, ""),
		RetrySchemaMismatch: false,
	}
}

// applyDefaults fills in zero-valued fields in config with sensible defaults.
func applyDefaults(config *Config) {
	if config.TryLimit <= 0 {
		config.TryLimit = DefaultTryLimit
	}
	if config.ResponsePath == "" {
		config.ResponsePath = DefaultResponsePath
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Backoff.Initial == 0 {
		config.Backoff.Initial = time.Second
	}
	if config.Backoff.Max == 0 {
		config.Backoff.Max = 30 * time.Second
	}
	if config.Backoff.Factor == 0 {
		config.Backoff.Factor = 2.0
	}
	if config.Backoff.JitterFraction == 0 {
		config.Backoff.JitterFraction = 0.1
	}
}

// endpoint composes the request URL from the protocol flag and the configured
// base URL. A base URL that already carries a scheme is used as-is.
func (c Config) endpoint() string {
	if strings.Contains(c.BaseURL, "://") {
		return c.BaseURL
	}
	scheme := "http"
	if c.HTTPS {
		scheme = "https"
	}
	return scheme + "://" + c.BaseURL
}

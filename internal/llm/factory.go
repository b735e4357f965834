package llm

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/autocategorize/internal/metrics"
)

// Option customizes a classifier built by NewClassifier.
type Option func(*options)

type options struct {
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger sets the logger that receives no-match warnings and failure errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records every call in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func (o options) httpClient(timeout time.Duration) *http.Client {
	if o.client != nil {
		return o.client
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewClassifier builds the backend named by cfg.Provider. "ollama" selects
// the Ollama backend; "openai", an empty name or any unrecognized name
// selects OpenAI. Backend settings are not validated here; bad values show up
// as a failure on the first Classify call.
func NewClassifier(cfg Config, opts ...Option) Classifier {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama:
		return newOllamaClassifier(cfg, o)
	default:
		return newOpenAIClassifier(cfg, o)
	}
}

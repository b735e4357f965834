package llm

import (
	"context"
	"time"

	"github.com/Veraticus/autocategorize/internal/model"
)

// Provider names understood by NewClassifier.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Defaults applied when a Config value is empty.
const (
	DefaultProvider    = ProviderOpenAI
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "gpt-oss:20b"
	DefaultOpenAIURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-5"
)

// Classifier suggests the single best category for a transaction.
//
// A result with a nil Category is a normal no-match. Any failure is returned
// as *OllamaError or *OpenAIError depending on the backend.
type Classifier interface {
	Classify(ctx context.Context, categories []string, transaction model.Transaction) (model.ClassificationResult, error)
	Provider() string
}

// Config holds the settings for every backend. Each backend reads only its
// own fields.
type Config struct {
	Provider     string
	OllamaURL    string
	OllamaModel  string
	OpenAIURL    string
	OpenAIModel  string
	OpenAIAPIKey string
	// Timeout is applied to the default HTTP client. Zero means no timeout.
	Timeout time.Duration
}

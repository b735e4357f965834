package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/spf13/viper"
)

// Viper keys and the environment variables bound to them. The environment
// names match the ones the finance application already exports.
const (
	KeyProvider     = "llm.provider"
	KeyTimeout      = "llm.timeout"
	KeyOllamaURL    = "ollama.url"
	KeyOllamaModel  = "ollama.model"
	KeyOpenAIURL    = "openai.url"
	KeyOpenAIModel  = "openai.model"
	KeyOpenAIAPIKey = "openai.api_key"

	KeyDatabasePath = "database.path"
	KeyServerAddr   = "server.addr"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
)

// Default values for settings outside the llm package.
const (
	DefaultDatabasePath = "$HOME/.local/share/autocat/journal.db"
	DefaultServerAddr   = ":8080"
)

var envBindings = map[string]string{
	KeyProvider:     "LLM_PROVIDER",
	KeyTimeout:      "LLM_TIMEOUT",
	KeyOllamaURL:    "OLLAMA_URL",
	KeyOllamaModel:  "OLLAMA_MODEL",
	KeyOpenAIURL:    "OPENAI_URL",
	KeyOpenAIModel:  "OPENAI_MODEL",
	KeyOpenAIAPIKey: "OPENAI_API_KEY",
	KeyDatabasePath: "AUTOCAT_DATABASE_PATH",
	KeyServerAddr:   "AUTOCAT_SERVER_ADDR",
}

// Bind registers defaults and environment bindings on v.
func Bind(v *viper.Viper) error {
	v.SetDefault(KeyProvider, llm.DefaultProvider)
	v.SetDefault(KeyOllamaURL, llm.DefaultOllamaURL)
	v.SetDefault(KeyOllamaModel, llm.DefaultOllamaModel)
	v.SetDefault(KeyOpenAIURL, llm.DefaultOpenAIURL)
	v.SetDefault(KeyOpenAIModel, llm.DefaultOpenAIModel)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyServerAddr, DefaultServerAddr)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// LLM reads the classifier settings from v. The API key has no default and
// is passed through as-is; an empty key fails on first use.
func LLM(v *viper.Viper) (llm.Config, error) {
	timeout, err := ParseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return llm.Config{}, err
	}

	return llm.Config{
		Provider:     v.GetString(KeyProvider),
		Timeout:      timeout,
		OllamaURL:    v.GetString(KeyOllamaURL),
		OllamaModel:  v.GetString(KeyOllamaModel),
		OpenAIURL:    v.GetString(KeyOpenAIURL),
		OpenAIModel:  v.GetString(KeyOpenAIModel),
		OpenAIAPIKey: v.GetString(KeyOpenAIAPIKey),
	}, nil
}

// ParseTimeout reads a transport timeout. A bare number is seconds; anything
// else must be a Go duration such as "90s" or "2m". Empty means no timeout.
func ParseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("%w: %s must not be negative: %q", common.ErrInvalidConfig, envBindings[KeyTimeout], raw)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s must be seconds or a duration like 30s: %q", common.ErrInvalidConfig, envBindings[KeyTimeout], raw)
	}
	return d, nil
}

// DatabasePath returns the expanded journal database path.
func DatabasePath(v *viper.Viper) string {
	return ExpandPath(v.GetString(KeyDatabasePath))
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/metrics"
	"github.com/Veraticus/autocategorize/internal/model"
)

// OllamaClassifier classifies through Ollama's /api/generate endpoint and
// resolves the free-text answer with ExtractCategory.
type OllamaClassifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	baseURL    string
	model      string
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func newOllamaClassifier(cfg Config, o options) *OllamaClassifier {
	baseURL := cfg.OllamaURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	modelName := cfg.OllamaModel
	if modelName == "" {
		modelName = DefaultOllamaModel
	}

	return &OllamaClassifier{
		httpClient: o.httpClient(cfg.Timeout),
		logger:     o.logger,
		metrics:    o.metrics,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      modelName,
	}
}

// Provider returns "ollama".
func (c *OllamaClassifier) Provider() string {
	return ProviderOllama
}

// Classify sends one generate request and extracts a category from the answer.
func (c *OllamaClassifier) Classify(ctx context.Context, categories []string, transaction model.Transaction) (model.ClassificationResult, error) {
	start := time.Now()

	result, err := c.classify(ctx, categories, transaction)
	if err != nil {
		failure := normalizeOllama(err)
		code, _ := failure.StatusCode()
		c.logger.Error("Ollama classification failed",
			"error", failure.Body,
			"status", code,
			"model", c.model)
		c.metrics.RecordBackendFailure(ProviderOllama, code)
		c.metrics.RecordClassification(ProviderOllama, metrics.OutcomeFailed, time.Since(start).Seconds())
		return model.ClassificationResult{}, failure
	}

	outcome := metrics.OutcomeMatched
	if !result.Matched() {
		outcome = metrics.OutcomeNoMatch
		c.logger.Warn("Ollama could not classify the transaction",
			"prompt", result.Prompt,
			"response", result.Response)
	}
	c.metrics.RecordClassification(ProviderOllama, outcome, time.Since(start).Seconds())

	return result, nil
}

func (c *OllamaClassifier) classify(ctx context.Context, categories []string, transaction model.Transaction) (model.ClassificationResult, error) {
	if len(categories) == 0 {
		return model.ClassificationResult{}, common.ErrNoCategories
	}

	prompt := BuildGeneratePrompt(categories, transaction)

	jsonBody, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	if !isSuccess(resp.StatusCode) {
		return model.ClassificationResult{}, newOllamaError(resp, string(body), nil)
	}

	var response ollamaGenerateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return model.ClassificationResult{
		Prompt:   prompt,
		Response: response.Response,
		Category: ExtractCategory(response.Response, categories),
	}, nil
}

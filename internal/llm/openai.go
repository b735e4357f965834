package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/metrics"
	"github.com/Veraticus/autocategorize/internal/model"
)

// OpenAIClassifier classifies through the OpenAI completions API.
//
// Unlike OllamaClassifier it accepts the answer only when it equals one of
// the categories exactly, case included.
type OpenAIClassifier struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	baseURL    string
	apiKey     string
	model      string
}

type openAICompletionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// openAICompletionResponse represents the completions API response structure.
type openAICompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Created int64 `json:"created"`
}

func newOpenAIClassifier(cfg Config, o options) *OpenAIClassifier {
	baseURL := cfg.OpenAIURL
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}

	modelName := cfg.OpenAIModel
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}

	return &OpenAIClassifier{
		httpClient: o.httpClient(cfg.Timeout),
		logger:     o.logger,
		metrics:    o.metrics,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.OpenAIAPIKey,
		model:      modelName,
	}
}

// Provider returns "openai".
func (c *OpenAIClassifier) Provider() string {
	return ProviderOpenAI
}

// Classify sends one completion request and checks the answer against categories.
func (c *OpenAIClassifier) Classify(ctx context.Context, categories []string, transaction model.Transaction) (model.ClassificationResult, error) {
	start := time.Now()

	result, err := c.classify(ctx, categories, transaction)
	if err != nil {
		failure := normalizeOpenAI(err)
		code, _ := failure.StatusCode()
		c.logger.Error("OpenAI classification failed",
			"error", failure.Body,
			"status", code,
			"model", c.model)
		c.metrics.RecordBackendFailure(ProviderOpenAI, code)
		c.metrics.RecordClassification(ProviderOpenAI, metrics.OutcomeFailed, time.Since(start).Seconds())
		return model.ClassificationResult{}, failure
	}

	outcome := metrics.OutcomeMatched
	if !result.Matched() {
		outcome = metrics.OutcomeNoMatch
		c.logger.Warn("OpenAI could not classify the transaction",
			"prompt", result.Prompt,
			"guess", result.Response)
	}
	c.metrics.RecordClassification(ProviderOpenAI, outcome, time.Since(start).Seconds())

	return result, nil
}

func (c *OpenAIClassifier) classify(ctx context.Context, categories []string, transaction model.Transaction) (model.ClassificationResult, error) {
	if len(categories) == 0 {
		return model.ClassificationResult{}, common.ErrNoCategories
	}

	prompt := BuildCompletionPrompt(categories, transaction)

	jsonBody, err := json.Marshal(openAICompletionRequest{
		Model:  c.model,
		Prompt: prompt,
	})
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		return model.ClassificationResult{}, newOpenAIError(resp, string(body), nil)
	}

	var response openAICompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return model.ClassificationResult{}, fmt.Errorf("no completion choices returned")
	}

	text := response.Choices[0].Text
	result := model.ClassificationResult{
		Prompt:   prompt,
		Response: text,
	}

	guess := strings.TrimSpace(strings.Replace(text, "\n", "", 1))
	if slices.Contains(categories, guess) {
		result.Category = &guess
	}

	return result, nil
}

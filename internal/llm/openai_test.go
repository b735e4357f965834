package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) (*OpenAIClassifier, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, buf := newTestLogger()
	classifier := NewClassifier(Config{
		Provider:     "openai",
		OpenAIURL:    server.URL + "/v1",
		OpenAIModel:  "gpt-test",
		OpenAIAPIKey: "test-key",
	}, WithLogger(logger), WithHTTPClient(server.Client()))

	openAI, ok := classifier.(*OpenAIClassifier)
	require.True(t, ok)
	return openAI, buf
}

func completionHandler(t *testing.T, text string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAICompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.NotEmpty(t, req.Prompt)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "text_completion",
			"choices": []map[string]any{
				{"text": text, "index": 0, "finish_reason": "stop"},
			},
		})
	}
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	categories := []string{"Groceries", "Transport"}
	tx := model.Transaction{Description: "Ticket", DestinationName: "Deutsche Bahn"}

	tests := []struct {
		want   *string
		name   string
		text   string
		noWarn bool
	}{
		{name: "trailing space trimmed", text: "Transport ", want: ptr("Transport"), noWarn: true},
		{name: "leading newline removed", text: "\nTransport", want: ptr("Transport"), noWarn: true},
		{name: "lowercase is not a match", text: "transport", want: nil},
		{name: "sentence is not a match", text: "It is Transport", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier, logs := newTestOpenAI(t, completionHandler(t, tt.text))

			result, err := classifier.Classify(context.Background(), categories, tx)
			require.NoError(t, err)

			assert.Equal(t, BuildCompletionPrompt(categories, tx), result.Prompt)
			assert.Equal(t, tt.text, result.Response)
			if tt.want == nil {
				assert.Nil(t, result.Category)
				assert.Contains(t, logs.String(), "OpenAI could not classify the transaction")
				return
			}
			require.NotNil(t, result.Category)
			assert.Equal(t, *tt.want, *result.Category)
			if tt.noWarn {
				assert.NotContains(t, logs.String(), "level=WARN")
			}
		})
	}
}

func TestOpenAIClassifier_HTTPFailure(t *testing.T) {
	classifier, logs := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	})

	_, err := classifier.Classify(context.Background(), []string{"Groceries"}, model.Transaction{})
	require.Error(t, err)

	var failure *OpenAIError
	require.True(t, errors.As(err, &failure))
	code, ok := failure.StatusCode()
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, failure.Body, "Incorrect API key")
	assert.NotNil(t, failure.Response)
	assert.True(t, errors.Is(err, common.ErrClassificationFailed))

	var ollamaErr *OllamaError
	assert.False(t, errors.As(err, &ollamaErr))
	assert.Contains(t, logs.String(), "level=ERROR")
}

func TestOpenAIClassifier_NoChoices(t *testing.T) {
	classifier, _ := newTestOpenAI(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := classifier.Classify(context.Background(), []string{"Groceries"}, model.Transaction{})
	require.Error(t, err)

	var failure *OpenAIError
	require.True(t, errors.As(err, &failure))
	assert.Nil(t, failure.Code)
	assert.Equal(t, "no completion choices returned", failure.Body)
	assert.Equal(t, "error while communicating with OpenAI: no completion choices returned", err.Error())
}

func TestOpenAIClassifier_CanceledContext(t *testing.T) {
	classifier, _ := newTestOpenAI(t, completionHandler(t, "Groceries"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := classifier.Classify(ctx, []string{"Groceries"}, model.Transaction{})
	require.Error(t, err)

	var failure *OpenAIError
	require.True(t, errors.As(err, &failure))
	assert.Nil(t, failure.Code)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOpenAIClassifier_EmptyCategories(t *testing.T) {
	classifier, _ := newTestOpenAI(t, completionHandler(t, "Groceries"))

	_, err := classifier.Classify(context.Background(), []string{}, model.Transaction{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoCategories))
}

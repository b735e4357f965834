package llm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/autocategorize/internal/common"
)

// Failure is the shape shared by every backend error. Code and Response are
// nil when the failure did not come from an HTTP status.
type Failure struct {
	Code     *int
	Response *http.Response
	cause    error
	Body     string
	provider string
}

func (f *Failure) Error() string {
	if f.Code != nil {
		return fmt.Sprintf("error while communicating with %s: %d - %s", f.provider, *f.Code, f.Body)
	}
	return fmt.Sprintf("error while communicating with %s: %s", f.provider, f.Body)
}

// Unwrap returns the underlying error for unexpected failures.
func (f *Failure) Unwrap() error {
	return f.cause
}

// Is matches common.ErrClassificationFailed.
func (f *Failure) Is(target error) bool {
	return target == common.ErrClassificationFailed
}

// StatusCode returns the HTTP status, if the failure carries one.
func (f *Failure) StatusCode() (int, bool) {
	if f.Code == nil {
		return 0, false
	}
	return *f.Code, true
}

// OllamaError is returned by the Ollama backend.
type OllamaError struct {
	Failure
}

// OpenAIError is returned by the OpenAI backend.
type OpenAIError struct {
	Failure
}

func newOllamaError(resp *http.Response, body string, cause error) *OllamaError {
	return &OllamaError{Failure: newFailure("Ollama", resp, body, cause)}
}

func newOpenAIError(resp *http.Response, body string, cause error) *OpenAIError {
	return &OpenAIError{Failure: newFailure("OpenAI", resp, body, cause)}
}

func newFailure(provider string, resp *http.Response, body string, cause error) Failure {
	f := Failure{
		Response: resp,
		Body:     body,
		cause:    cause,
		provider: provider,
	}
	if resp != nil {
		code := resp.StatusCode
		f.Code = &code
	}
	return f
}

// normalizeOllama returns err unchanged when it is already an *OllamaError
// and wraps anything else with a nil status.
func normalizeOllama(err error) *OllamaError {
	var failure *OllamaError
	if errors.As(err, &failure) {
		return failure
	}
	return newOllamaError(nil, err.Error(), err)
}

// normalizeOpenAI is the OpenAI counterpart of normalizeOllama.
func normalizeOpenAI(err error) *OpenAIError {
	var failure *OpenAIError
	if errors.As(err, &failure) {
		return failure
	}
	return newOpenAIError(nil, err.Error(), err)
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

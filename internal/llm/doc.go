// Package llm classifies transactions into a caller-supplied category set by
// delegating to a large language model. Two backends are supported: a
// generate-style Ollama backend and a completion-style OpenAI backend. Both
// expose the same Classifier contract, so callers never need to know which
// one is in use.
package llm

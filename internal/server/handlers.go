package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/Veraticus/autocategorize/internal/model"
	"github.com/Veraticus/autocategorize/internal/storage"
)

const maxRequestBytes = 1 << 20

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Categories  []string          `json:"categories"`
	Transaction model.Transaction `json:"transaction"`
}

// ErrorResponse is returned for 4xx and 5xx responses. Code carries the
// backend's HTTP status when the failure came from the backend.
type ErrorResponse struct {
	Code  *int   `json:"code,omitempty"`
	Error string `json:"error"`
}

type statusCoder interface {
	StatusCode() (int, bool)
}

func handleClassify(classifier llm.Classifier, journal Journal, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ClassifyRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		if len(req.Categories) == 0 {
			writeError(w, "categories must not be empty", http.StatusBadRequest)
			return
		}

		result, err := classifier.Classify(r.Context(), req.Categories, req.Transaction)

		if journal != nil {
			entry := storage.NewEntry(classifier.Provider(), req.Transaction, result, err)
			if saveErr := journal.SaveEntry(r.Context(), entry); saveErr != nil {
				logger.Warn("failed to record classification", "error", saveErr)
			}
		}

		if err != nil {
			resp := ErrorResponse{Error: err.Error()}
			var sc statusCoder
			if errors.As(err, &sc) {
				if code, ok := sc.StatusCode(); ok {
					resp.Code = &code
				}
			}
			writeJSON(w, resp, http.StatusBadGateway)
			return
		}

		writeJSON(w, result, http.StatusOK)
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/autocategorize/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidEntry = errors.New("invalid journal entry")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateEntry(entry *model.JournalEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.Provider == "" {
		return fmt.Errorf("%w: missing provider", ErrInvalidEntry)
	}
	switch entry.Outcome {
	case model.OutcomeMatched:
		if entry.Category == nil {
			return fmt.Errorf("%w: matched entry without category", ErrInvalidEntry)
		}
	case model.OutcomeNoMatch:
	case model.OutcomeFailed:
		if entry.Error == "" {
			return fmt.Errorf("%w: failed entry without error", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidEntry, entry.Outcome)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/autocategorize/internal/common"
	"github.com/Veraticus/autocategorize/internal/model"
)

// DefaultListLimit caps ListEntries when the caller passes a non-positive limit.
const DefaultListLimit = 50

// statusCoder is implemented by backend failures that carry an HTTP status.
type statusCoder interface {
	StatusCode() (int, bool)
}

// NewEntry builds a journal entry for one classify call. A non-nil err
// records a failed call; otherwise the outcome follows the result's category.
func NewEntry(provider string, tx model.Transaction, result model.ClassificationResult, err error) *model.JournalEntry {
	entry := &model.JournalEntry{
		Fingerprint:     tx.Fingerprint(),
		Provider:        provider,
		Description:     tx.Description,
		DestinationName: tx.DestinationName,
		Prompt:          result.Prompt,
		Response:        result.Response,
	}

	switch {
	case err != nil:
		entry.Outcome = model.OutcomeFailed
		entry.Error = err.Error()
		var sc statusCoder
		if errors.As(err, &sc) {
			if code, ok := sc.StatusCode(); ok {
				entry.StatusCode = &code
			}
		}
	case result.Category != nil:
		entry.Outcome = model.OutcomeMatched
		category := *result.Category
		entry.Category = &category
	default:
		entry.Outcome = model.OutcomeNoMatch
	}

	return entry
}

// SaveEntry inserts an entry, assigning an ID and timestamp when unset.
func (s *SQLiteStorage) SaveEntry(ctx context.Context, entry *model.JournalEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (
			id, fingerprint, provider, outcome, category, status_code,
			description, destination_name, prompt, response, error, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Fingerprint,
		entry.Provider,
		string(entry.Outcome),
		nullString(entry.Category),
		nullInt(entry.StatusCode),
		entry.Description,
		entry.DestinationName,
		entry.Prompt,
		entry.Response,
		entry.Error,
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

// GetEntry returns the entry whose ID is id or starts with it. A prefix
// matching more than one entry is an error; no match is common.ErrNotFound.
func (s *SQLiteStorage) GetEntry(ctx context.Context, id string) (*model.JournalEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectEntry+` WHERE substr(id, 1, length(?)) = ? LIMIT 2`, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*model.JournalEntry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", scanErr)
		}
		found = append(found, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("journal entry %s: %w", id, common.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("journal entry prefix %s matches more than one entry", id)
	}
}

// ListEntries returns the most recent entries, newest first.
func (s *SQLiteStorage) ListEntries(ctx context.Context, limit int) ([]*model.JournalEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, selectEntry+` ORDER BY recorded_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*model.JournalEntry
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", scanErr)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

const selectEntry = `
	SELECT id, fingerprint, provider, outcome, category, status_code,
		description, destination_name, prompt, response, error, recorded_at
	FROM journal`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*model.JournalEntry, error) {
	var (
		entry       model.JournalEntry
		outcome     string
		category    sql.NullString
		statusCode  sql.NullInt64
		description sql.NullString
		destination sql.NullString
		response    sql.NullString
		errText     sql.NullString
	)

	if err := row.Scan(
		&entry.ID,
		&entry.Fingerprint,
		&entry.Provider,
		&outcome,
		&category,
		&statusCode,
		&description,
		&destination,
		&entry.Prompt,
		&response,
		&errText,
		&entry.RecordedAt,
	); err != nil {
		return nil, err
	}

	entry.Outcome = model.JournalOutcome(outcome)
	if category.Valid {
		entry.Category = &category.String
	}
	if statusCode.Valid {
		code := int(statusCode.Int64)
		entry.StatusCode = &code
	}
	entry.Description = description.String
	entry.DestinationName = destination.String
	entry.Response = response.String
	entry.Error = errText.String

	return &entry, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

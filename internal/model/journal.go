package model

import "time"

// JournalOutcome summarizes how a recorded classify call ended.
type JournalOutcome string

// Journal outcome constants.
const (
	OutcomeMatched JournalOutcome = "MATCHED"
	OutcomeNoMatch JournalOutcome = "NO_MATCH"
	OutcomeFailed  JournalOutcome = "FAILED"
)

// JournalEntry is one classify call as recorded by the CLI or server.
// Entries are an audit trail; nothing reads them back to answer a call.
type JournalEntry struct {
	RecordedAt      time.Time      `json:"recorded_at"`
	Category        *string        `json:"category"`
	StatusCode      *int           `json:"status_code,omitempty"`
	ID              string         `json:"id"`
	Fingerprint     string         `json:"fingerprint"`
	Provider        string         `json:"provider"`
	Description     string         `json:"description,omitempty"`
	DestinationName string         `json:"destination_name,omitempty"`
	Prompt          string         `json:"prompt"`
	Response        string         `json:"response"`
	Error           string         `json:"error,omitempty"`
	Outcome         JournalOutcome `json:"outcome"`
}

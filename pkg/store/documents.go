package store

import (
	"fmt"
	"time"

	"talewire/pkg/message"
)

// SchemaVersion is the only document schema this layer reads or writes.
const SchemaVersion = 1

// InboxFile holds envelopes waiting for a downstream stage. New messages
// are inserted at the front; entries already present keep their order.
type InboxFile struct {
	SchemaVersion int                `json:"schema_version"`
	Messages      []message.Envelope `json:"messages"`
}

// LogFile is the append-ordered record of every routed envelope.
type LogFile struct {
	SchemaVersion int                `json:"schema_version"`
	Messages      []message.Envelope `json:"messages"`
}

// StatusFile carries a single free-text line describing current pipeline
// activity. It is fully replaced on each update, never appended.
type StatusFile struct {
	SchemaVersion int       `json:"schema_version"`
	Line          string    `json:"line"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MetricsFile is an append-only list of externally-timed operations.
type MetricsFile struct {
	SchemaVersion int           `json:"schema_version"`
	Entries       []MetricEntry `json:"entries"`
}

// MetricEntry records one timed external call, such as a single AI-stage
// invocation.
type MetricEntry struct {
	At         time.Time `json:"at"`
	Model      string    `json:"model"`
	OK         bool      `json:"ok"`
	DurationMS int64     `json:"duration_ms"`
	Stage      string    `json:"stage"`
	Session    string    `json:"session"`
	Error      string    `json:"error,omitempty"`
}

func emptyInbox() InboxFile     { return InboxFile{SchemaVersion: SchemaVersion, Messages: []message.Envelope{}} }
func emptyLog() LogFile         { return LogFile{SchemaVersion: SchemaVersion, Messages: []message.Envelope{}} }
func emptyStatus() StatusFile   { return StatusFile{SchemaVersion: SchemaVersion} }
func emptyMetrics() MetricsFile { return MetricsFile{SchemaVersion: SchemaVersion, Entries: []MetricEntry{}} }

func (f InboxFile) validate() error {
	if err := checkVersion(f.SchemaVersion); err != nil {
		return err
	}
	return checkMessages(f.Messages)
}

func (f LogFile) validate() error {
	if err := checkVersion(f.SchemaVersion); err != nil {
		return err
	}
	return checkMessages(f.Messages)
}

func (f StatusFile) validate() error {
	return checkVersion(f.SchemaVersion)
}

func (f MetricsFile) validate() error {
	return checkVersion(f.SchemaVersion)
}

func checkVersion(version int) error {
	if version != SchemaVersion {
		return fmt.Errorf("expected schema_version %d, got %d", SchemaVersion, version)
	}
	return nil
}

func checkMessages(messages []message.Envelope) error {
	for i, env := range messages {
		if err := env.Validate(); err != nil {
			return fmt.Errorf("messages[%d]: %v", i, err)
		}
	}
	return nil
}

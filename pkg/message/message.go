// Package message defines the envelope exchanged between pipeline stages
// and the status state machine that governs its lifecycle.
package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"talewire/pkg/ident"
)

// Status is the lifecycle state of an envelope. The zero value means the
// envelope has not entered the pipeline yet.
type Status string

const (
	StatusQueued            Status = "queued"
	StatusSent              Status = "sent"
	StatusProcessing        Status = "processing"
	StatusPendingStateApply Status = "pending_state_apply"
	StatusDone              Status = "done"
	StatusError             Status = "error"
)

// AwaitingRollPrefix marks the parametrized awaiting_roll_<n> states, where
// <n> identifies the pending roll request.
const AwaitingRollPrefix = "awaiting_roll_"

// MetaStatusUpdatedAt is the reserved meta key maintained by TrySetStatus.
// No other component writes it.
const MetaStatusUpdatedAt = "status_updated_at"

// Envelope is the unit of communication between stages. Envelopes are value
// objects: every lifecycle change produces a new value, nothing mutates a
// stored envelope in place.
type Envelope struct {
	ID            string            `json:"id"`
	Sender        string            `json:"sender"`
	Content       string            `json:"content"`
	CreatedAt     time.Time         `json:"created_at"`
	Type          string            `json:"type,omitempty"`
	Stage         string            `json:"stage,omitempty"`
	Slot          int               `json:"slot,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	ReplyTo       string            `json:"reply_to,omitempty"`
	Priority      int               `json:"priority,omitempty"`
	Status        Status            `json:"status,omitempty"`
	Flags         []string          `json:"flags,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
}

// Input carries the caller-supplied fields for New. Zero-valued optionals
// are treated as absent.
type Input struct {
	ID            string
	Sender        string
	Content       string
	CreatedAt     time.Time
	Type          string
	Stage         string
	Slot          int
	CorrelationID string
	ReplyTo       string
	Priority      int
	Status        Status
	Flags         []string
	Meta          map[string]string
}

// New constructs a fresh envelope, defaulting id, created_at, and
// correlation_id when not supplied.
func New(in Input) Envelope {
	env := Envelope{
		ID:            strings.TrimSpace(in.ID),
		Sender:        strings.TrimSpace(in.Sender),
		Content:       in.Content,
		CreatedAt:     in.CreatedAt,
		Type:          strings.TrimSpace(in.Type),
		Stage:         strings.TrimSpace(in.Stage),
		Slot:          in.Slot,
		CorrelationID: strings.TrimSpace(in.CorrelationID),
		ReplyTo:       strings.TrimSpace(in.ReplyTo),
		Priority:      in.Priority,
		Status:        in.Status,
	}

	if env.ID == "" {
		env.ID = ident.LogID(ident.DefaultWidth)
	}
	if env.CreatedAt.IsZero() {
		env.CreatedAt = time.Now().UTC()
	}
	if env.CorrelationID == "" {
		env.CorrelationID = uuid.NewString()
	}

	if len(in.Flags) > 0 {
		env.Flags = append([]string(nil), in.Flags...)
	}
	if len(in.Meta) > 0 {
		env.Meta = make(map[string]string, len(in.Meta))
		for key, value := range in.Meta {
			env.Meta[key] = value
		}
	}

	return env
}

// Validate checks the invariants every persisted envelope must hold.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("id must be a non-empty string")
	}
	if strings.TrimSpace(e.Sender) == "" {
		return fmt.Errorf("sender must be a non-empty string")
	}
	if e.Content == "" {
		return fmt.Errorf("content must be a non-empty string")
	}
	return nil
}

// HasFlag reports whether a flag marker is present.
func (e Envelope) HasFlag(flag string) bool {
	for _, item := range e.Flags {
		if item == flag {
			return true
		}
	}
	return false
}

// IsAwaitingRoll reports whether a status is one of the parametrized
// awaiting_roll_<n> states.
func IsAwaitingRoll(s Status) bool {
	return strings.HasPrefix(string(s), AwaitingRollPrefix) &&
		len(s) > len(AwaitingRollPrefix)
}

// IsTerminal reports whether no further transition is defined from s.
func IsTerminal(s Status) bool {
	return s == StatusDone || s == StatusError
}

// CanTransition reports whether from -> to appears in the transition table.
func CanTransition(from Status, to Status) bool {
	if IsAwaitingRoll(from) {
		return to == StatusProcessing || to == StatusDone || to == StatusError
	}

	switch from {
	case "":
		return to == StatusSent || to == StatusQueued
	case StatusQueued:
		return to == StatusSent || to == StatusProcessing || to == StatusError
	case StatusSent:
		return to == StatusProcessing || to == StatusError
	case StatusProcessing:
		return to == StatusDone || to == StatusPendingStateApply ||
			to == StatusError || IsAwaitingRoll(to)
	case StatusPendingStateApply:
		return to == StatusProcessing || to == StatusError
	default:
		// done, error, and unknown statuses have no outgoing transitions.
		return false
	}
}

// TrySetStatus validates and applies a status transition. An invalid
// transition is not an error: it returns the input envelope unchanged and
// false. On success it returns a copy with status and the reserved
// meta.status_updated_at key updated, all other fields untouched. Nothing
// is persisted here.
func TrySetStatus(env Envelope, target Status) (Envelope, bool) {
	if !CanTransition(env.Status, target) {
		return env, false
	}

	next := env
	next.Status = target

	meta := make(map[string]string, len(env.Meta)+1)
	for key, value := range env.Meta {
		meta[key] = value
	}
	meta[MetaStatusUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	next.Meta = meta

	return next, true
}

// Package pipeline glues the router to the durable stores: one Submit call
// is one hop of an envelope through the pipeline.
package pipeline

import (
	"fmt"
	"log/slog"

	"talewire/pkg/message"
	"talewire/pkg/router"
	"talewire/pkg/store"
)

// Driver routes envelopes and persists the results for one data root.
// It assumes the single-active-driver-per-slot deployment contract; there
// is no cross-process locking, and a crash between the log write and the
// inbox write can leave the two out of sync.
type Driver struct {
	store  *store.Store
	router *router.Router
	log    *slog.Logger
}

// NewDriver wires a driver. A nil router gets a trace-less default; a nil
// logger disables the driver's own diagnostics.
func NewDriver(st *store.Store, rt *router.Router, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if rt == nil {
		rt = router.New(nil)
	}
	return &Driver{store: st, router: rt, log: log.With("component", "pipeline")}
}

// Submit routes one envelope and persists the outcome: the log entry is
// appended, the outbox envelope (when the decision produced one) is
// prepended to the slot inbox, and the status line is rewritten to
// describe the hop. Storage errors propagate so the caller halts the slot
// instead of guessing at repair; routing itself never fails.
//
// Data slots are numbered from 1. An envelope slot of 0 means unset and is
// stamped with the submit slot.
func (d *Driver) Submit(slot int, env message.Envelope) (router.Decision, error) {
	if slot <= 0 {
		return router.Decision{}, fmt.Errorf("slot must be positive, got %d", slot)
	}
	if err := env.Validate(); err != nil {
		return router.Decision{}, fmt.Errorf("submit envelope: %w", err)
	}
	if env.Slot == 0 {
		env.Slot = slot
	}

	// Bootstrap the slot inbox up front: its existence must not depend on
	// whether the first hop happened to forward.
	if err := d.store.EnsureInbox(slot); err != nil {
		return router.Decision{}, err
	}

	decision := d.router.Route(env)

	if err := d.store.AppendLog(slot, decision.Log); err != nil {
		return router.Decision{}, err
	}

	line := fmt.Sprintf("logged %s from %s", decision.Log.ID, decision.Log.Sender)
	if decision.Outbox != nil {
		if err := d.store.AddToInbox(slot, *decision.Outbox); err != nil {
			return router.Decision{}, err
		}
		line = fmt.Sprintf("forwarded %s from %s to stage %q",
			decision.Outbox.ID, decision.Outbox.Sender, decision.Outbox.Stage)
	}

	if err := d.store.WriteStatusLine(slot, line); err != nil {
		return router.Decision{}, err
	}

	d.log.Info("envelope submitted",
		"slot", slot,
		"id", env.ID,
		"sender", env.Sender,
		"stage", env.Stage,
		"forwarded", decision.Forwarded(),
	)

	return decision, nil
}

// Drain claims every envelope waiting in the slot inbox (newest first) and
// rewrites an empty inbox. This is how a downstream stage takes its work.
func (d *Driver) Drain(slot int) ([]message.Envelope, error) {
	if err := d.store.EnsureInbox(slot); err != nil {
		return nil, err
	}

	doc, err := d.store.ReadInbox(slot)
	if err != nil {
		return nil, err
	}
	if len(doc.Messages) == 0 {
		return nil, nil
	}

	claimed := doc.Messages
	doc.Messages = []message.Envelope{}
	if err := d.store.WriteInbox(slot, doc); err != nil {
		return nil, err
	}

	d.log.Info("inbox drained", "slot", slot, "count", len(claimed))

	return claimed, nil
}

// Peek returns the slot inbox contents without consuming them.
func (d *Driver) Peek(slot int) ([]message.Envelope, error) {
	if err := d.store.EnsureInbox(slot); err != nil {
		return nil, err
	}

	doc, err := d.store.ReadInbox(slot)
	if err != nil {
		return nil, err
	}

	return doc.Messages, nil
}

// Store exposes the underlying document store for read-side tooling.
func (d *Driver) Store() *store.Store {
	return d.store
}

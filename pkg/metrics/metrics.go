// Package metrics appends timing/outcome records for externally-timed
// operations. Recording is independent of routing correctness: failures
// here never interrupt the pipeline.
package metrics

import (
	"log/slog"
	"time"

	"talewire/pkg/store"
)

// Recorder appends entries to named per-slot metrics documents. No
// aggregation, rotation, or size bounding happens at this layer.
type Recorder struct {
	store *store.Store
	log   *slog.Logger
}

// NewRecorder wires a recorder to a store. A nil logger disables the
// recorder's own diagnostics.
func NewRecorder(st *store.Store, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Recorder{store: st, log: log.With("component", "metrics")}
}

// Record ensures the named metrics document exists, appends one entry, and
// rewrites the whole document. A zero entry.At is defaulted to now.
func (r *Recorder) Record(slot int, name string, entry store.MetricEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	if err := r.store.EnsureMetrics(slot, name); err != nil {
		return err
	}

	// Corrupt documents read back empty, so one bad file loses history
	// rather than blocking new entries.
	doc := r.store.ReadMetrics(slot, name)
	doc.Entries = append(doc.Entries, entry)

	if err := r.store.WriteMetrics(slot, name, doc); err != nil {
		return err
	}

	r.log.Debug("recorded metric entry",
		"slot", slot,
		"name", name,
		"model", entry.Model,
		"ok", entry.OK,
		"duration_ms", entry.DurationMS,
		"stage", entry.Stage,
	)

	return nil
}

// Timed starts a timer and returns a closure that records the elapsed
// duration and outcome. Intended for wrapping one external call:
//
//	done := recorder.Timed(slot, "ai", "gpt-5", "ruling", session)
//	err := callStage()
//	done(err)
func (r *Recorder) Timed(slot int, name string, model string, stage string, session string) func(error) {
	started := time.Now()

	return func(callErr error) {
		entry := store.MetricEntry{
			At:         started.UTC(),
			Model:      model,
			OK:         callErr == nil,
			DurationMS: time.Since(started).Milliseconds(),
			Stage:      stage,
			Session:    session,
		}
		if callErr != nil {
			entry.Error = callErr.Error()
		}

		if err := r.Record(slot, name, entry); err != nil {
			r.log.Warn("metric entry dropped", "slot", slot, "name", name, "error", err)
		}
	}
}

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"talewire/pkg/store"
)

func newRecorder(t *testing.T) (*Recorder, *store.Store) {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return NewRecorder(st, nil), st
}

func TestRecordCreatesAndAppends(t *testing.T) {
	recorder, st := newRecorder(t)

	if err := recorder.Record(1, "ai", store.MetricEntry{Model: "gpt-5", OK: true, DurationMS: 100}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := recorder.Record(1, "ai", store.MetricEntry{Model: "gpt-5", OK: false, DurationMS: 50, Error: "timeout"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	doc := st.ReadMetrics(1, "ai")
	if len(doc.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(doc.Entries))
	}
	if doc.Entries[0].At.IsZero() {
		t.Fatal("zero at must be defaulted to now")
	}
	if doc.Entries[1].Error != "timeout" {
		t.Fatalf("error = %q", doc.Entries[1].Error)
	}
}

func TestRecordSurvivesCorruptDocument(t *testing.T) {
	recorder, st := newRecorder(t)

	path := st.MetricsPath(1, "ai")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := recorder.Record(1, "ai", store.MetricEntry{Model: "gpt-5", OK: true}); err != nil {
		t.Fatalf("Record over corrupt document: %v", err)
	}

	doc := st.ReadMetrics(1, "ai")
	if len(doc.Entries) != 1 {
		t.Fatalf("entries = %d, want 1 (history lost, recording continues)", len(doc.Entries))
	}
}

func TestTimedRecordsOutcome(t *testing.T) {
	recorder, st := newRecorder(t)

	done := recorder.Timed(1, "ai", "gpt-5", "ruling", "s1")
	done(nil)

	failed := recorder.Timed(1, "ai", "gpt-5", "ruling", "s1")
	failed(errors.New("boom"))

	doc := st.ReadMetrics(1, "ai")
	if len(doc.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(doc.Entries))
	}
	if !doc.Entries[0].OK || doc.Entries[0].Error != "" {
		t.Fatalf("first entry should be ok: %#v", doc.Entries[0])
	}
	if doc.Entries[1].OK || doc.Entries[1].Error != "boom" {
		t.Fatalf("second entry should carry the error: %#v", doc.Entries[1])
	}
	if doc.Entries[1].Stage != "ruling" || doc.Entries[1].Session != "s1" {
		t.Fatalf("stage/session not recorded: %#v", doc.Entries[1])
	}
}

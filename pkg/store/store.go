// Package store persists the four slot-scoped pipeline documents (inbox,
// log, status, metrics) as whole JSON files. Every mutation is a full
// synchronous read-modify-write of one document; there is no fine-grained
// locking. The deployment contract is a single active driver per data slot.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"talewire/pkg/message"
)

// ErrSchema marks fatal document corruption: wrong schema_version, a shape
// that does not match the declared document type, or entries failing
// per-field checks. The message names the expected schema so an operator
// can repair the file by hand.
var ErrSchema = errors.New("schema violation")

// Store resolves and owns document paths under one data root.
type Store struct {
	root string
}

// New resolves the data root to an absolute path and creates it when
// missing.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("data root must not be empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}

	return &Store{root: filepath.Clean(absRoot)}, nil
}

// Root returns the absolute data root path.
func (s *Store) Root() string {
	return s.root
}

// SlotDir returns the directory owning one data slot's documents.
func (s *Store) SlotDir(slot int) string {
	return filepath.Join(s.root, fmt.Sprintf("slot-%d", slot))
}

func (s *Store) InboxPath(slot int) string {
	return filepath.Join(s.SlotDir(slot), "inbox.json")
}

func (s *Store) LogPath(slot int) string {
	return filepath.Join(s.SlotDir(slot), "log.json")
}

func (s *Store) StatusPath(slot int) string {
	return filepath.Join(s.SlotDir(slot), "status.json")
}

func (s *Store) MetricsPath(slot int, name string) string {
	return filepath.Join(s.SlotDir(slot), "metrics", name+".json")
}

type validatable interface {
	validate() error
}

// readDoc parses and validates one document. The inbox, log, and status
// documents are presence-mandatory: a missing or malformed file is an
// error, never silently repaired.
func readDoc[D validatable](path string, kind string) (D, error) {
	var doc D

	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s document: %w", kind, err)
	}

	if err := json.Unmarshal(stripComments(raw), &doc); err != nil {
		return doc, fmt.Errorf("%w: %s document %s does not match the expected shape: %v",
			ErrSchema, kind, path, err)
	}
	if err := doc.validate(); err != nil {
		return doc, fmt.Errorf("%w: %s document %s: %v", ErrSchema, kind, path, err)
	}

	return doc, nil
}

// writeDoc serializes a full document, overwriting prior content. Append
// semantics are implemented by callers as read-modify-write.
func writeDoc(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	return nil
}

// ensureDoc idempotently creates a default document when none exists.
func ensureDoc(path string, def any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat document: %w", err)
	}

	return writeDoc(path, def)
}

func (s *Store) ReadInbox(slot int) (InboxFile, error) {
	return readDoc[InboxFile](s.InboxPath(slot), "inbox")
}

func (s *Store) WriteInbox(slot int, doc InboxFile) error {
	return writeDoc(s.InboxPath(slot), doc)
}

func (s *Store) EnsureInbox(slot int) error {
	return ensureDoc(s.InboxPath(slot), emptyInbox())
}

// AddToInbox prepends one envelope: the inbox is newest-first, and entries
// already present keep their positions.
func (s *Store) AddToInbox(slot int, env message.Envelope) error {
	if err := env.Validate(); err != nil {
		return fmt.Errorf("inbox envelope: %w", err)
	}
	if err := s.EnsureInbox(slot); err != nil {
		return err
	}

	doc, err := s.ReadInbox(slot)
	if err != nil {
		return err
	}

	doc.Messages = append([]message.Envelope{env}, doc.Messages...)
	return s.WriteInbox(slot, doc)
}

func (s *Store) ReadLog(slot int) (LogFile, error) {
	return readDoc[LogFile](s.LogPath(slot), "log")
}

func (s *Store) WriteLog(slot int, doc LogFile) error {
	return writeDoc(s.LogPath(slot), doc)
}

func (s *Store) EnsureLog(slot int) error {
	return ensureDoc(s.LogPath(slot), emptyLog())
}

// AppendLog adds one envelope at the end of the slot log.
func (s *Store) AppendLog(slot int, env message.Envelope) error {
	if err := env.Validate(); err != nil {
		return fmt.Errorf("log envelope: %w", err)
	}
	if err := s.EnsureLog(slot); err != nil {
		return err
	}

	doc, err := s.ReadLog(slot)
	if err != nil {
		return err
	}

	doc.Messages = append(doc.Messages, env)
	return s.WriteLog(slot, doc)
}

func (s *Store) ReadStatus(slot int) (StatusFile, error) {
	return readDoc[StatusFile](s.StatusPath(slot), "status")
}

func (s *Store) EnsureStatus(slot int) error {
	return ensureDoc(s.StatusPath(slot), emptyStatus())
}

// WriteStatusLine fully replaces the slot status line.
func (s *Store) WriteStatusLine(slot int, line string) error {
	return writeDoc(s.StatusPath(slot), StatusFile{
		SchemaVersion: SchemaVersion,
		Line:          line,
		UpdatedAt:     time.Now().UTC(),
	})
}

// ReadMetrics is best-effort: a missing or corrupt metrics document
// degrades to an empty one. Metrics are telemetry, not correctness state.
func (s *Store) ReadMetrics(slot int, name string) MetricsFile {
	doc, err := readDoc[MetricsFile](s.MetricsPath(slot, name), "metrics")
	if err != nil {
		return emptyMetrics()
	}
	return doc
}

func (s *Store) WriteMetrics(slot int, name string, doc MetricsFile) error {
	return writeDoc(s.MetricsPath(slot, name), doc)
}

func (s *Store) EnsureMetrics(slot int, name string) error {
	return ensureDoc(s.MetricsPath(slot, name), emptyMetrics())
}

package patients

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange is returned for a patient index outside the collection.
var ErrIndexOutOfRange = errors.New("patient index out of range")

// Store persists the ordered patient collection as a single JSON document.
// All access goes through the store's mutex: Save replaces the whole
// collection (last writer wins) and then refreshes the in-memory copy, so
// readers never observe a half-written file.
type Store struct {
	path string

	mu      sync.Mutex
	records []Record
	loaded  bool
}

// NewStore creates a store over the given collection file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns a copy of the patient collection, reading the file on first
// use. Records missing a stable ID are assigned one and the file is
// written back once, without re-stamping metadata.
func (s *Store) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.copyRecords(), nil
}

// Get returns the record at the given position.
func (s *Store) Get(index int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return Record{}, err
	}
	if index < 0 || index >= len(s.records) {
		return Record{}, ErrIndexOutOfRange
	}
	return s.records[index], nil
}

// Count returns the number of records in the collection.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}
	return len(s.records), nil
}

// Save persists the full collection, stamping every record's
// metadata.last_modified with the same instant, not only edited records.
// Downstream consumers rely on the whole-collection re-stamp; see
// DESIGN.md before changing it.
func (s *Store) Save(records []Record) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stamp := now.Format(time.RFC3339Nano)
	for i := range records {
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
		records[i].Metadata.LastModified = stamp
	}

	if err := s.writeFile(records); err != nil {
		return time.Time{}, err
	}

	s.records = records
	s.loaded = true
	return now, nil
}

// Update replaces the record at index with the given record, preserving
// the existing stable ID, and saves the whole collection.
func (s *Store) Update(index int, rec Record) (time.Time, error) {
	s.mu.Lock()

	if err := s.ensureLoaded(); err != nil {
		s.mu.Unlock()
		return time.Time{}, err
	}
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return time.Time{}, ErrIndexOutOfRange
	}

	records := s.copyRecords()
	if rec.ID == uuid.Nil {
		rec.ID = records[index].ID
	}
	records[index] = rec
	s.mu.Unlock()

	return s.Save(records)
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading patient collection %s: %w", s.path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing patient collection %s: %w", s.path, err)
	}

	assigned := 0
	for i := range records {
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
			assigned++
		}
	}
	if assigned > 0 {
		if err := s.writeFile(records); err != nil {
			return fmt.Errorf("persisting assigned patient ids: %w", err)
		}
		slog.Info("assigned stable ids to patient records", "count", assigned)
	}

	s.records = records
	s.loaded = true
	return nil
}

func (s *Store) writeFile(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling patient collection: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing patient collection %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) copyRecords() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

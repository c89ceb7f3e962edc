// Package store persists the sample history as a plain JSON array with a
// bounded in-memory working set. The file format matches what the dashboard's
// export tooling expects: records sorted oldest-first, timestamps in RFC3339.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sh44ni/internetkit/internal/models"
	"github.com/sh44ni/internetkit/internal/observability"
)

// Store holds recent samples in memory and persists them to a JSON file.
// The in-memory set is capped at maxRecords; appending past the cap drops the
// oldest records. All methods are safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	path       string
	maxRecords int
	records    []models.SpeedSample
	logger     *zap.Logger
}

// Open creates a Store backed by the given file and loads any existing
// history. A missing or corrupt file starts empty; corruption is logged, not
// fatal, because losing history must never stop the monitor.
func Open(path string, maxRecords int, logger *zap.Logger) *Store {
	s := &Store{
		path:       path,
		maxRecords: maxRecords,
		logger:     logger,
	}
	var loaded []models.SpeedSample
	if err := ReadJSON(path, &loaded); err != nil {
		logger.Warn("history file unreadable, starting empty",
			zap.String("path", path), zap.Error(err))
		loaded = nil
	}
	if len(loaded) > maxRecords {
		loaded = loaded[len(loaded)-maxRecords:]
	}
	s.records = loaded
	observability.StoreRecords.Set(float64(len(s.records)))
	return s
}

// Append adds a sample, evicting the oldest when the cap is reached.
func (s *Store) Append(rec models.SpeedSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if len(s.records) > s.maxRecords {
		s.records = append(s.records[:0], s.records[len(s.records)-s.maxRecords:]...)
	}
	observability.StoreRecords.Set(float64(len(s.records)))
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Range returns records with timestamps in [from, to].
func (s *Store) Range(from, to time.Time) []models.SpeedSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SpeedSample, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Persist writes the current records to disk atomically.
func (s *Store) Persist() error {
	s.mu.Lock()
	snapshot := make([]models.SpeedSample, len(s.records))
	copy(snapshot, s.records)
	s.mu.Unlock()

	start := time.Now()
	if err := WriteJSON(s.path, snapshot); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	observability.PersistDuration.Observe(time.Since(start).Seconds())
	return nil
}

// CleanupOlderThan drops records older than cutoff and returns how many were
// removed. The caller decides whether to persist afterwards.
func (s *Store) CleanupOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, rec := range s.records {
		if !rec.Timestamp.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	if removed > 0 {
		observability.CleanupRemovedTotal.Add(float64(removed))
		observability.StoreRecords.Set(float64(len(s.records)))
	}
	return removed
}

// ReadJSON unmarshals the file at path into v. A missing or empty file leaves
// v untouched and returns nil.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// WriteJSON marshals v and atomically replaces the file at path: the payload
// goes to a temp file in the same directory first, then renames over the
// target so readers never observe a partial write.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp_*.json")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

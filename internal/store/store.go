/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store owns the authoritative alarm list and its persistence. The
// whole list is serialized to a single JSON file on every structural change;
// there is no incremental persistence.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/friendsincode/heimdall_wake/internal/events"
	"github.com/friendsincode/heimdall_wake/internal/models"
)

// ErrCorruptStore marks a persisted alarm file that exists, is non-empty,
// and fails to parse. The store fails soft: the bad file is kept aside for
// inspection and the in-memory list starts empty.
var ErrCorruptStore = errors.New("alarm store corrupt")

// ErrNotFound marks a lookup for an alarm id that no longer exists.
var ErrNotFound = errors.New("alarm not found")

// Store persists the alarm list to a single JSON file.
type Store struct {
	path   string
	bus    *events.Bus
	logger zerolog.Logger

	mu     sync.Mutex
	alarms []models.Alarm
}

// New creates a store backed by the given file path.
func New(path string, bus *events.Bus, logger zerolog.Logger) *Store {
	return &Store{
		path:   path,
		bus:    bus,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted file into memory and returns a snapshot.
//
// A missing file is created empty. An empty file yields an empty list. A
// non-empty file that fails to parse is moved aside and reported as
// ErrCorruptStore together with an empty list, so one bad edit never takes
// the process down. IDs are renormalized to [0..len) after every load.
func (s *Store) Load() ([]models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read alarm file: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
		if err := os.WriteFile(s.path, nil, 0o644); err != nil {
			return nil, fmt.Errorf("create alarm file: %w", err)
		}
		s.alarms = nil
		return nil, nil
	}

	if len(data) == 0 {
		s.alarms = nil
		return nil, nil
	}

	var alarms []models.Alarm
	if err := json.Unmarshal(data, &alarms); err != nil {
		quarantine := s.path + ".corrupt"
		if renameErr := os.Rename(s.path, quarantine); renameErr != nil {
			s.logger.Error().Err(renameErr).Msg("failed to quarantine corrupt alarm file")
		} else {
			s.logger.Warn().Str("kept", quarantine).Msg("corrupt alarm file moved aside")
		}
		s.alarms = nil
		if s.bus != nil {
			s.bus.Publish(events.EventStoreCorrupt, events.Payload{"path": s.path, "error": err.Error()})
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}

	s.alarms = alarms
	s.reindex()
	return s.snapshot(), nil
}

// List returns the in-memory snapshot without touching the disk.
func (s *Store) List() []models.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Add appends a new alarm, persists, and reindexes. The id is the list
// length before insertion.
func (s *Store) Add(name string, trigger models.TriggerTime, days [7]bool, source models.Source) (models.Alarm, error) {
	alarm := models.Alarm{
		Name:    name,
		Trigger: trigger,
		Active:  true,
		Days:    days,
		Source:  source,
	}
	if err := alarm.Validate(); err != nil {
		return models.Alarm{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alarm.ID = uint(len(s.alarms))
	s.alarms = append(s.alarms, alarm)
	s.reindex()

	if err := s.save(); err != nil {
		s.alarms = s.alarms[:len(s.alarms)-1]
		return models.Alarm{}, err
	}

	s.publishUpdated("add", alarm.ID)
	return alarm, nil
}

// Delete removes the alarm whose id matches. Lookup is by value, not by
// index: a concurrent caller may hold a stale id. Deleting a file-backed
// alarm also removes its acquired audio file, best effort.
func (s *Store) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("delete alarm %d: %w", id, ErrNotFound)
	}

	if src := s.alarms[idx].Source; src.Kind == models.SourceFile {
		if err := os.Remove(src.SongPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", src.SongPath).Msg("failed to remove alarm song file")
		}
	}

	s.alarms = append(s.alarms[:idx], s.alarms[idx+1:]...)
	s.reindex()

	if err := s.save(); err != nil {
		return err
	}

	s.publishUpdated("delete", id)
	return nil
}

// ToggleActive flips the activation flag of the matching alarm and persists.
func (s *Store) ToggleActive(id uint) (models.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alarms {
		if s.alarms[i].ID == id {
			s.alarms[i].Active = !s.alarms[i].Active
			if err := s.save(); err != nil {
				s.alarms[i].Active = !s.alarms[i].Active
				return models.Alarm{}, err
			}
			s.publishUpdated("toggle", id)
			return s.alarms[i], nil
		}
	}
	return models.Alarm{}, fmt.Errorf("toggle alarm %d: %w", id, ErrNotFound)
}

// Save persists the given list wholesale, replacing the in-memory state.
func (s *Store) Save(alarms []models.Alarm) error {
	for i := range alarms {
		if err := alarms[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alarms = append([]models.Alarm(nil), alarms...)
	s.reindex()
	return s.save()
}

// save writes the list atomically: temp file in the same directory, then
// rename over the target. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.alarms, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "alarms-*.json")
	if err != nil {
		return fmt.Errorf("create temp alarm file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write alarm file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close alarm file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace alarm file: %w", err)
	}
	return nil
}

// reindex renumbers ids to [0..len) in list order. Callers hold s.mu.
func (s *Store) reindex() {
	for i := range s.alarms {
		s.alarms[i].ID = uint(i)
	}
}

func (s *Store) snapshot() []models.Alarm {
	return append([]models.Alarm(nil), s.alarms...)
}

func (s *Store) publishUpdated(op string, id uint) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.EventStoreUpdated, events.Payload{"op": op, "alarm_id": id})
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"encoding/json"
	"fmt"

	"github.com/friendsincode/heimdall_wake/internal/stations"
)

// TriggerTime is the time-of-day an alarm fires, matched to the exact second.
type TriggerTime struct {
	Hour   int
	Minute int
	Second int
}

// Validate checks field ranges.
func (t TriggerTime) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("hour %d out of range", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("minute %d out of range", t.Minute)
	}
	if t.Second < 0 || t.Second > 59 {
		return fmt.Errorf("second %d out of range", t.Second)
	}
	return nil
}

func (t TriggerTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// SourceKind discriminates the audio source variant of an alarm.
type SourceKind string

const (
	SourceRadio SourceKind = "radio"
	SourceFile  SourceKind = "file"
)

// Source is a tagged union: a radio station or a local audio file, never both.
type Source struct {
	Kind      SourceKind
	Station   stations.Station // set when Kind == SourceRadio
	SongPath  string           // set when Kind == SourceFile
	SongTitle string
}

// RadioSource builds a radio-backed source.
func RadioSource(st stations.Station) Source {
	return Source{Kind: SourceRadio, Station: st}
}

// FileSource builds a local-file source. The file is materialized by the
// song acquisition step, not by the core.
func FileSource(path, title string) Source {
	return Source{Kind: SourceFile, SongPath: path, SongTitle: title}
}

// Validate enforces the exactly-one-variant invariant.
func (s Source) Validate() error {
	switch s.Kind {
	case SourceRadio:
		if !stations.Valid(s.Station) {
			return fmt.Errorf("radio source with unknown station %q", s.Station)
		}
		if s.SongPath != "" {
			return fmt.Errorf("radio source must not carry a song path")
		}
	case SourceFile:
		if s.SongPath == "" {
			return fmt.Errorf("file source without song path")
		}
		if s.Station != "" {
			return fmt.Errorf("file source must not carry a station")
		}
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	return nil
}

// Alarm is a persisted trigger combining a time-of-day, a weekday mask, an
// activation flag, and an audio source.
//
// IDs are position-derived and dense: after every structural mutation the
// store renumbers them to [0..len). They are not stable across mutations.
type Alarm struct {
	ID      uint
	Name    string
	Trigger TriggerTime
	Active  bool
	// Days is Monday-first: index 0 = Monday .. 6 = Sunday.
	Days   [7]bool
	Source Source
}

// Validate checks the alarm's invariants.
func (a Alarm) Validate() error {
	if err := a.Trigger.Validate(); err != nil {
		return fmt.Errorf("alarm %q: %w", a.Name, err)
	}
	if err := a.Source.Validate(); err != nil {
		return fmt.Errorf("alarm %q: %w", a.Name, err)
	}
	return nil
}

// alarmJSON is the persisted layout. It keeps the original flat shape
// (is_radio flag, nullable station, possibly-empty song fields) so existing
// alarm files keep loading.
type alarmJSON struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	Hour      int               `json:"hour"`
	Minute    int               `json:"minute"`
	Second    int               `json:"second"`
	Active    bool              `json:"active"`
	IsRadio   bool              `json:"is_radio"`
	Station   *stations.Station `json:"station"`
	SongPath  string            `json:"song_path"`
	SongTitle string            `json:"song_title"`
	Days      [7]bool           `json:"days"`
}

// MarshalJSON encodes the alarm in the persisted layout.
func (a Alarm) MarshalJSON() ([]byte, error) {
	out := alarmJSON{
		ID:     a.ID,
		Name:   a.Name,
		Hour:   a.Trigger.Hour,
		Minute: a.Trigger.Minute,
		Second: a.Trigger.Second,
		Active: a.Active,
		Days:   a.Days,
	}
	switch a.Source.Kind {
	case SourceRadio:
		out.IsRadio = true
		st := a.Source.Station
		out.Station = &st
	case SourceFile:
		out.SongPath = a.Source.SongPath
		out.SongTitle = a.Source.SongTitle
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the persisted layout and rebuilds the tagged source.
func (a *Alarm) UnmarshalJSON(data []byte) error {
	var in alarmJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	alarm := Alarm{
		ID:      in.ID,
		Name:    in.Name,
		Trigger: TriggerTime{Hour: in.Hour, Minute: in.Minute, Second: in.Second},
		Active:  in.Active,
		Days:    in.Days,
	}
	if in.IsRadio {
		if in.Station == nil {
			return fmt.Errorf("alarm %q: radio alarm without station", in.Name)
		}
		alarm.Source = RadioSource(*in.Station)
	} else {
		alarm.Source = FileSource(in.SongPath, in.SongTitle)
	}

	if err := alarm.Validate(); err != nil {
		return err
	}
	*a = alarm
	return nil
}

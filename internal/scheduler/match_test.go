/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"testing"

	"github.com/friendsincode/heimdall_wake/internal/clock"
	"github.com/friendsincode/heimdall_wake/internal/models"
	"github.com/friendsincode/heimdall_wake/internal/stations"
)

func wednesdayAlarm() models.Alarm {
	return models.Alarm{
		ID:      0,
		Name:    "midweek",
		Trigger: models.TriggerTime{Hour: 8, Minute: 30, Second: 0},
		Active:  true,
		Days:    [7]bool{false, false, true, false, false, false, false},
		Source:  models.RadioSource(stations.FranceInfo),
	}
}

func TestFirstMatchExactInstant(t *testing.T) {
	reading := clock.Reading{Hour: 8, Minute: 30, Second: 0}
	alarms := []models.Alarm{wednesdayAlarm()}

	got, ok := FirstMatch(reading, 2, alarms)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Name != "midweek" {
		t.Errorf("unexpected alarm %+v", got)
	}
}

func TestFirstMatchRejectsAnyFieldMismatch(t *testing.T) {
	base := clock.Reading{Hour: 8, Minute: 30, Second: 0}

	tests := []struct {
		name    string
		reading clock.Reading
		weekday int
		mutate  func(*models.Alarm)
	}{
		{"wrong hour", clock.Reading{Hour: 9, Minute: 30, Second: 0}, 2, nil},
		{"wrong minute", clock.Reading{Hour: 8, Minute: 31, Second: 0}, 2, nil},
		{"wrong second", clock.Reading{Hour: 8, Minute: 30, Second: 1}, 2, nil},
		{"wrong day", base, 3, nil},
		{"inactive", base, 2, func(a *models.Alarm) { a.Active = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alarm := wednesdayAlarm()
			if tt.mutate != nil {
				tt.mutate(&alarm)
			}
			if _, ok := FirstMatch(tt.reading, tt.weekday, []models.Alarm{alarm}); ok {
				t.Fatal("expected no match")
			}
		})
	}
}

func TestFirstMatchTieBreakIsListOrder(t *testing.T) {
	first := wednesdayAlarm()
	first.Name = "first"
	second := wednesdayAlarm()
	second.ID = 1
	second.Name = "second"

	reading := clock.Reading{Hour: 8, Minute: 30, Second: 0}
	alarms := []models.Alarm{first, second}

	// Deterministic across repeated calls.
	for i := 0; i < 10; i++ {
		got, ok := FirstMatch(reading, 2, alarms)
		if !ok || got.Name != "first" {
			t.Fatalf("call %d: expected first alarm, got %+v (ok=%v)", i, got, ok)
		}
	}
}

func TestFirstMatchNoAlarms(t *testing.T) {
	if _, ok := FirstMatch(clock.Reading{Hour: 1}, 0, nil); ok {
		t.Fatal("expected no match on empty list")
	}
}

func TestFirstMatchDoesNotMutateInput(t *testing.T) {
	alarm := wednesdayAlarm()
	alarms := []models.Alarm{alarm}

	FirstMatch(clock.Reading{Hour: 8, Minute: 30, Second: 0}, 2, alarms)

	if alarms[0] != alarm {
		t.Fatal("matcher mutated its input")
	}
}

func TestFirstMatchInvalidWeekday(t *testing.T) {
	alarms := []models.Alarm{wednesdayAlarm()}
	if _, ok := FirstMatch(clock.Reading{Hour: 8, Minute: 30, Second: 0}, 7, alarms); ok {
		t.Fatal("expected no match for out-of-range weekday")
	}
}

/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"github.com/friendsincode/heimdall_wake/internal/clock"
	"github.com/friendsincode/heimdall_wake/internal/models"
)

// FirstMatch scans alarms in list order and returns the first one that
// should fire at the given instant: active, exact hour/minute/second
// equality, and the weekday bit set. List order is the tie-break when
// several alarms share an instant.
//
// Matching is exact-second: an alarm fires during exactly one 1 Hz tick. If
// the driving timer misses that tick the alarm silently does not fire; with
// a steady tick source this cannot happen, and it is the accepted boundary
// of the design.
//
// The function is pure: it never mutates alarms or any playback state.
func FirstMatch(reading clock.Reading, weekday int, alarms []models.Alarm) (models.Alarm, bool) {
	if weekday < 0 || weekday > 6 {
		return models.Alarm{}, false
	}
	for _, alarm := range alarms {
		if !alarm.Active {
			continue
		}
		if alarm.Trigger.Hour != reading.Hour ||
			alarm.Trigger.Minute != reading.Minute ||
			alarm.Trigger.Second != reading.Second {
			continue
		}
		if !alarm.Days[weekday] {
			continue
		}
		return alarm, true
	}
	return models.Alarm{}, false
}

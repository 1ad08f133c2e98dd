/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package clock

import "time"

// Clock abstracts the wall clock so matching can be tested at an exact
// instant.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Time
}

// Reading is one wall-clock sample, recomputed per tick; it carries no
// identity.
type Reading struct {
	Hour   int
	Minute int
	Second int
}

// ReadingAt extracts a Reading from an instant in local time.
func ReadingAt(t time.Time) Reading {
	return Reading{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// WeekdayIndex maps an instant to the Monday-first day index (0 = Monday
// .. 6 = Sunday) used by alarm day masks.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

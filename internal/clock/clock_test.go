package clock

import (
	"testing"
	"time"
)

func TestReadingAt(t *testing.T) {
	instant := time.Date(2025, 3, 5, 8, 30, 0, 0, time.Local)
	got := ReadingAt(instant)
	want := Reading{Hour: 8, Minute: 30, Second: 0}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestWeekdayIndexMondayFirst(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), 0}, // Monday
		{time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), 2}, // Wednesday
		{time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), 5}, // Saturday
		{time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC), 6}, // Sunday
	}

	for _, tt := range tests {
		if got := WeekdayIndex(tt.date); got != tt.want {
			t.Errorf("%s: expected index %d, got %d", tt.date.Weekday(), tt.want, got)
		}
	}
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	c := FixedClock{Time: instant}
	if !c.Now().Equal(instant) {
		t.Fatal("fixed clock drifted")
	}
}

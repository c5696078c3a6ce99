package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTimeWindow(t *testing.T) {
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	later := base.Add(30 * time.Minute)
	earlier := base.Add(-30 * time.Minute)

	if _, err := NewTimeWindow(base, &later, later.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewTimeWindow(base, nil, base); err != nil {
		t.Fatalf("zero length window should be valid: %v", err)
	}

	bad := []struct {
		name     string
		min      time.Time
		maxStart *time.Time
		maxEnd   time.Time
	}{
		{"max start before min", base, &earlier, base.Add(time.Hour)},
		{"max end before max start", base, &later, base},
		{"max end before min", base, nil, earlier},
	}
	for _, tt := range bad {
		_, err := NewTimeWindow(tt.min, tt.maxStart, tt.maxEnd)
		if !errors.Is(err, ErrInvalidTimeWindow) {
			t.Errorf("%s: expected ErrInvalidTimeWindow, got %v", tt.name, err)
		}
	}
}

func TestTimeWindow_Overlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 5, h, 0, 0, 0, time.UTC) }

	a := TimeWindow{MinStartTime: at(8), MaxEndTime: at(10)}
	b := TimeWindow{MinStartTime: at(9), MaxEndTime: at(11)}
	c := TimeWindow{MinStartTime: at(10), MaxEndTime: at(12)}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("expected a and b to overlap")
	}
	if a.Overlaps(c) {
		t.Fatal("touching windows must not overlap")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want Clock
	}{
		{"08:30", 8*60 + 30},
		{"8.15", 8*60 + 15},
		{"0730", 7*60 + 30},
		{"9", 9 * 60},
		{"24:00", 24 * 60},
		{"12:00:00", 12 * 60},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseClock(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	for _, in := range []string{"", "25:00", "12:60", "abc", "12345"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) expected error", in)
		}
	}
}

func TestClock_On(t *testing.T) {
	loc := time.FixedZone("+01:00", 3600)
	day := time.Date(2026, 1, 5, 15, 45, 0, 0, loc)

	got := Clock(7*60 + 5).On(day)
	want := time.Date(2026, 1, 5, 7, 5, 0, 0, loc)
	if !got.Equal(want) || got.Location() != loc {
		t.Fatalf("On = %v, want %v", got, want)
	}
}

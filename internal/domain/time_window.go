package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeWindow bounds the arrival of a visit.
// MinStartTime <= MaxStartTime <= MaxEndTime when MaxStartTime is set.
type TimeWindow struct {
	MinStartTime time.Time
	MaxStartTime *time.Time
	MaxEndTime   time.Time
}

// NewTimeWindow validates the ordering of the bounds. A window that would
// produce an unsatisfiable constraint is rejected, never clamped.
func NewTimeWindow(minStart time.Time, maxStart *time.Time, maxEnd time.Time) (TimeWindow, error) {
	if maxStart != nil {
		if maxStart.Before(minStart) {
			return TimeWindow{}, fmt.Errorf("%w: max start %s before min start %s",
				ErrInvalidTimeWindow, maxStart.Format(time.RFC3339), minStart.Format(time.RFC3339))
		}
		if maxEnd.Before(*maxStart) {
			return TimeWindow{}, fmt.Errorf("%w: max end %s before max start %s",
				ErrInvalidTimeWindow, maxEnd.Format(time.RFC3339), maxStart.Format(time.RFC3339))
		}
	}
	if maxEnd.Before(minStart) {
		return TimeWindow{}, fmt.Errorf("%w: max end %s before min start %s",
			ErrInvalidTimeWindow, maxEnd.Format(time.RFC3339), minStart.Format(time.RFC3339))
	}

	return TimeWindow{MinStartTime: minStart, MaxStartTime: maxStart, MaxEndTime: maxEnd}, nil
}

// Overlaps reports whether two windows share any instant (strict overlap).
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.MinStartTime.Before(o.MaxEndTime) && o.MinStartTime.Before(w.MaxEndTime)
}

// Clock is a wall-clock time of day in minutes after midnight.
type Clock int

// ParseClock accepts "HH:MM", "HH.MM", "HHMM" and "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse clock: empty value")
	}

	var hh, mm string
	switch {
	case strings.ContainsAny(s, ":."):
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '.' })
		if len(parts) < 2 {
			return 0, fmt.Errorf("parse clock %q: missing minutes", s)
		}
		hh, mm = parts[0], parts[1]
	case len(s) == 4:
		hh, mm = s[:2], s[2:]
	case len(s) <= 2:
		hh, mm = s, "0"
	default:
		return 0, fmt.Errorf("parse clock %q: unsupported format", s)
	}

	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: hours: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: minutes: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}

	return Clock(h*60 + m), nil
}

// On places the clock on the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(c) * time.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

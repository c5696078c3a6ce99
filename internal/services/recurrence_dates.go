package services

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// weeklyDates returns every date in [from, until) falling on day, stepping
// intervalWeeks weeks. from is expected to be a Monday at midnight; results
// keep from's location.
func weeklyDates(from, until time.Time, day time.Weekday, intervalWeeks int) ([]time.Time, error) {
	if intervalWeeks < 1 {
		return nil, fmt.Errorf("weekly dates: interval must be positive, got %d", intervalWeeks)
	}
	if !until.After(from) {
		return []time.Time{}, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  intervalWeeks,
		Wkst:      rrule.MO,
		Byweekday: []rrule.Weekday{rruleWeekdays[day]},
		Dtstart:   from,
		Until:     until.Add(-time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("weekly dates: build rule: %w", err)
	}

	return r.All(), nil
}

// weekIndex returns how many whole weeks lie between planningStart and t.
func weekIndex(planningStart, t time.Time) int {
	days := int(t.Sub(planningStart).Hours() / 24)
	if days < 0 {
		return -1
	}
	return days / 7
}

package services

import (
	"fmt"
	"time"
	"visit-model-service/internal/domain"
)

// DaySpecificWindow pins a visit to one calendar date around its nominal start.
//
//	minStart = date@start - flexBefore
//	maxStart = date@start + flexAfter
//	maxEnd   = maxStart + duration
func DaySpecificWindow(
	date time.Time,
	start domain.Clock,
	duration time.Duration,
	flexBefore time.Duration,
	flexAfter time.Duration,
) (domain.TimeWindow, error) {
	nominal := start.On(date)
	minStart := nominal.Add(-flexBefore)
	maxStart := nominal.Add(flexAfter)
	maxEnd := maxStart.Add(duration)

	w, err := domain.NewTimeWindow(minStart, &maxStart, maxEnd)
	if err != nil {
		return domain.TimeWindow{}, fmt.Errorf("day specific window %s: %w", date.Format("2006-01-02"), err)
	}
	return w, nil
}

// FullPeriodWindow lets the solver pick any day of a period that starts on
// periodStart (a Monday) and lasts periodWeeks weeks.
//
//	minStart = periodStart@dayStart
//	maxEnd   = (periodStart + periodWeeks*7 - 1 day)@dayEnd
//	maxStart = maxEnd - duration
func FullPeriodWindow(
	periodStart time.Time,
	periodWeeks int,
	dayStart domain.Clock,
	dayEnd domain.Clock,
	duration time.Duration,
) (domain.TimeWindow, error) {
	if periodWeeks < 1 {
		return domain.TimeWindow{}, fmt.Errorf("full period window: period weeks must be positive, got %d", periodWeeks)
	}

	lastDay := periodStart.AddDate(0, 0, periodWeeks*7-1)
	minStart := dayStart.On(periodStart)
	maxEnd := dayEnd.On(lastDay)
	maxStart := maxEnd.Add(-duration)

	w, err := domain.NewTimeWindow(minStart, &maxStart, maxEnd)
	if err != nil {
		return domain.TimeWindow{}, fmt.Errorf("full period window %s+%dw: %w", periodStart.Format("2006-01-02"), periodWeeks, err)
	}
	return w, nil
}

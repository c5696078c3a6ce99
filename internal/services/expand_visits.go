package services

import (
	"fmt"
	"log"
	"time"
	"visit-model-service/internal/config"
	"visit-model-service/internal/domain"
)

// Expander turns recurring visit records into dated occurrences for one
// planning window. The occurrence id counter belongs to the Expander, so a
// new Expander must be created for every run.
type Expander struct {
	planningStart time.Time
	planningEnd   time.Time
	weeks         int
	dayStart      domain.Clock
	dayEnd        domain.Clock
	nextID        int
}

func NewExpander(planning config.Planning) (*Expander, error) {
	if err := planning.Validate(); err != nil {
		return nil, fmt.Errorf("new expander: %w", err)
	}

	dayStart, err := domain.ParseClock(planning.DayStart)
	if err != nil {
		return nil, fmt.Errorf("new expander: day start: %w", err)
	}
	dayEnd, err := domain.ParseClock(planning.DayEnd)
	if err != nil {
		return nil, fmt.Errorf("new expander: day end: %w", err)
	}
	if dayEnd <= dayStart {
		return nil, fmt.Errorf("new expander: day end %s must be after day start %s", dayEnd, dayStart)
	}

	return &Expander{
		planningStart: planning.PlanningStart(),
		planningEnd:   planning.PlanningEnd(),
		weeks:         planning.Weeks,
		dayStart:      dayStart,
		dayEnd:        dayEnd,
	}, nil
}

// Expand expands every record. Records are independent of one another; only
// the id counter is shared.
func (e *Expander) Expand(records []domain.VisitRecord, report *BuildReport) []domain.VisitOccurrence {
	out := make([]domain.VisitOccurrence, 0, len(records)*e.weeks)
	for _, rec := range records {
		if report != nil {
			report.RecordsRead++
		}
		occs := e.ExpandRecord(rec, report)
		out = append(out, occs...)
	}
	if report != nil {
		report.Occurrences = len(out)
	}
	return out
}

// ExpandRecord expands one record across the planning window.
func (e *Expander) ExpandRecord(rec domain.VisitRecord, report *BuildReport) []domain.VisitOccurrence {
	if rec.Inactive() {
		report.inc(func(r *BuildReport) { r.InactiveSkipped++ })
		report.record(domain.Skipped(rec.ID, domain.ReasonInactive))
		return nil
	}

	freq, ok := domain.ParseFrequency(rec.Frequency)
	if !ok {
		report.inc(func(r *BuildReport) { r.FrequencyDefaulted++ })
		log.Printf("expand: frequency defaulted source_id=%s code=%q freq=%s", rec.ID, rec.Frequency, freq)
	}

	start, err := domain.ParseClock(rec.StartTime)
	if err != nil {
		log.Printf("expand: unusable start time source_id=%s err=%v", rec.ID, err)
		report.record(domain.Fatal(rec.ID, err.Error()))
		return nil
	}
	duration := time.Duration(rec.DurationMinutes) * time.Minute

	if freq.DaySpecific() {
		day, ok := domain.ResolveWeekday(rec.Recurrence)
		if !ok {
			report.inc(func(r *BuildReport) { r.WeekdayDefaulted++ })
			log.Printf("expand: weekday defaulted to Monday source_id=%s recurrence=%q", rec.ID, rec.Recurrence)
		}
		return e.expandDaySpecific(rec, day, start, duration, report)
	}

	return e.expandFullPeriod(rec, freq.PeriodWeeks(), duration, report)
}

func (e *Expander) expandDaySpecific(
	rec domain.VisitRecord,
	day time.Weekday,
	start domain.Clock,
	duration time.Duration,
	report *BuildReport,
) []domain.VisitOccurrence {
	dates, err := weeklyDates(e.planningStart, e.planningEnd, day, 1)
	if err != nil {
		report.record(domain.Fatal(rec.ID, err.Error()))
		return nil
	}

	flexBefore := time.Duration(rec.FlexBeforeMinutes) * time.Minute
	flexAfter := time.Duration(rec.FlexAfterMinutes) * time.Minute

	out := make([]domain.VisitOccurrence, 0, len(dates))
	for _, date := range dates {
		w, err := DaySpecificWindow(date, start, duration, flexBefore, flexAfter)
		if err == nil {
			err = e.checkRange(w)
		}
		if err != nil {
			report.inc(func(r *BuildReport) { r.InvalidWindows++ })
			report.record(domain.Fatal(rec.ID, err.Error()))
			log.Printf("expand: rejected occurrence source_id=%s err=%v", rec.ID, err)
			continue
		}
		out = append(out, e.newOccurrence(rec, date, w, duration))
	}
	return out
}

func (e *Expander) expandFullPeriod(
	rec domain.VisitRecord,
	periodWeeks int,
	duration time.Duration,
	report *BuildReport,
) []domain.VisitOccurrence {
	if periodWeeks > e.weeks {
		report.inc(func(r *BuildReport) { r.PeriodTooLong++ })
		report.record(domain.Skipped(rec.ID, domain.ReasonPeriodExceedsRange))
		return nil
	}

	periodStarts, err := weeklyDates(e.planningStart, e.planningEnd, time.Monday, periodWeeks)
	if err != nil {
		report.record(domain.Fatal(rec.ID, err.Error()))
		return nil
	}

	out := make([]domain.VisitOccurrence, 0, len(periodStarts))
	for _, ps := range periodStarts {
		// A trailing partial period would reach past the planning window.
		if ps.AddDate(0, 0, periodWeeks*7).After(e.planningEnd) {
			break
		}

		w, err := FullPeriodWindow(ps, periodWeeks, e.dayStart, e.dayEnd, duration)
		if err == nil {
			err = e.checkRange(w)
		}
		if err != nil {
			report.inc(func(r *BuildReport) { r.InvalidWindows++ })
			report.record(domain.Fatal(rec.ID, err.Error()))
			log.Printf("expand: rejected occurrence source_id=%s err=%v", rec.ID, err)
			continue
		}
		out = append(out, e.newOccurrence(rec, ps, w, duration))
	}
	return out
}

// checkRange rejects windows that begin before the planning start or end
// after the planning end. Flex and duration can push a window on the first
// or last day of the range across the boundary.
func (e *Expander) checkRange(w domain.TimeWindow) error {
	if w.MinStartTime.Before(e.planningStart) || w.MaxEndTime.After(e.planningEnd) {
		return fmt.Errorf("%w: window %s..%s outside planning range %s..%s", domain.ErrInvalidTimeWindow,
			w.MinStartTime.Format(time.RFC3339), w.MaxEndTime.Format(time.RFC3339),
			e.planningStart.Format(time.RFC3339), e.planningEnd.Format(time.RFC3339))
	}
	return nil
}

func (e *Expander) newOccurrence(
	rec domain.VisitRecord,
	date time.Time,
	w domain.TimeWindow,
	duration time.Duration,
) domain.VisitOccurrence {
	e.nextID++
	return domain.VisitOccurrence{
		ID:        e.nextID,
		SourceID:  rec.ID,
		Client:    rec.Client,
		Address:   rec.Address,
		Location:  rec.Location,
		Duration:  duration,
		Window:    w,
		GroupKey:  rec.GroupKey,
		WeekIndex: weekIndex(e.planningStart, date),
		Date:      date,
		StaffName: rec.StaffName,
		Area:      rec.Area,
	}
}

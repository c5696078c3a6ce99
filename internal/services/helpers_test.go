package services

import (
	"testing"
	"time"
	"visit-model-service/internal/config"
	"visit-model-service/internal/domain"
)

// 2026-01-05 is a Monday.
func testPlanning(weeks int) config.Planning {
	p := config.DefaultPlanning()
	p.StartDate = "2026-01-05"
	p.Weeks = weeks
	p.GeocodeDelay = 0
	return p
}

var stockholm = domain.Coordinates{Lon: 18.0686, Lat: 59.3293}

func visitRecord(id, client, freq, recurrence, start string) domain.VisitRecord {
	return domain.VisitRecord{
		ID:                id,
		Client:            client,
		Location:          stockholm,
		Frequency:         freq,
		Recurrence:        recurrence,
		StartTime:         start,
		DurationMinutes:   30,
		FlexBeforeMinutes: 15,
		FlexAfterMinutes:  15,
	}
}

func mustExpand(t *testing.T, p config.Planning, recs ...domain.VisitRecord) ([]domain.VisitOccurrence, *BuildReport) {
	t.Helper()
	e, err := NewExpander(p)
	if err != nil {
		t.Fatalf("NewExpander: %v", err)
	}
	report := &BuildReport{}
	return e.Expand(recs, report), report
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

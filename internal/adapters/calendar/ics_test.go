package calendar

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
	"visit-model-service/internal/domain"

	ical "github.com/arran4/golang-ical"
)

func sampleVehicle() domain.Vehicle {
	loc := time.FixedZone("+01:00", 3600)
	start := time.Date(2026, 1, 5, 7, 0, 0, 0, loc)
	base := domain.Coordinates{Lon: 18.07, Lat: 59.33}
	return domain.Vehicle{
		ID:       "anna",
		Name:     "Anna",
		Area:     "Norr",
		Location: base,
		Shifts: []domain.Shift{
			{
				ID: "anna_20260105_0700", StartLocation: base, Start: start, End: start.Add(9 * time.Hour),
				Break: &domain.Break{
					ID: "anna_20260105_0700_break", MinStartTime: start.Add(4 * time.Hour),
					MaxEndTime: start.Add(6 * time.Hour), Duration: 30 * time.Minute, Location: &base,
				},
			},
			{ID: "anna_20260106_0700", StartLocation: base, Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 1).Add(9 * time.Hour)},
		},
	}
}

func TestWriteShiftCalendar(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShiftCalendar(&buf, sampleVehicle(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cal, err := ical.ParseCalendar(&buf)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	events := cal.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events (2 shifts + 1 break), got %d", len(events))
	}

	if got := events[0].Id(); got != "anna_20260105_0700" {
		t.Fatalf("first event uid = %q", got)
	}
	start, err := events[0].GetStartAt()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !start.Equal(time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start)
	}
	if p := events[1].GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Anna break (30 min)" {
		t.Fatalf("break summary = %v", p)
	}
}

func TestExportShiftCalendars(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ics")
	paths, err := ExportShiftCalendars(dir, []domain.Vehicle{sampleVehicle()}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "anna.ics" {
		t.Fatalf("paths = %v", paths)
	}
	b, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(b, []byte("BEGIN:VCALENDAR")) {
		t.Fatal("missing VCALENDAR")
	}
}

package calendar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"visit-model-service/internal/domain"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//visit-model-service//shift calendar//EN"

// WriteShiftCalendar renders the shifts of one vehicle as an iCalendar
// document. Each break becomes its own event inside the shift.
func WriteShiftCalendar(w io.Writer, v domain.Vehicle, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(v.Name)

	loc := fmt.Sprintf("%.6f,%.6f", v.Location.Lat, v.Location.Lon)

	for _, s := range v.Shifts {
		ev := cal.AddEvent(s.ID)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(s.Start)
		ev.SetEndAt(s.End)
		ev.SetSummary(v.Name)
		ev.SetLocation(loc)
		if v.Area != "" {
			ev.SetDescription("Area: " + v.Area)
		}

		if s.Break == nil {
			continue
		}
		b := s.Break
		bev := cal.AddEvent(b.ID)
		bev.SetDtStampTime(stamp)
		bev.SetStartAt(b.MinStartTime)
		bev.SetEndAt(b.MaxEndTime)
		bev.SetSummary(fmt.Sprintf("%s break (%d min)", v.Name, int(b.Duration.Minutes())))
		if b.Location != nil {
			bev.SetLocation(fmt.Sprintf("%.6f,%.6f", b.Location.Lat, b.Location.Lon))
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("write shift calendar %s: %w", v.ID, err)
	}
	return nil
}

// ExportShiftCalendars writes <dir>/<vehicle id>.ics for every vehicle and
// returns the written paths.
func ExportShiftCalendars(dir string, vehicles []domain.Vehicle, stamp time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export shift calendars: create dir %q: %w", dir, err)
	}

	paths := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		path := filepath.Join(dir, v.ID+".ics")
		if err := writeFile(path, v, stamp); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, v domain.Vehicle, stamp time.Time) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export shift calendars: create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export shift calendars: close %q: %w", path, cerr)
		}
	}()
	return WriteShiftCalendar(f, v, stamp)
}

package services

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"
	"visit-model-service/internal/config"
	"visit-model-service/internal/domain"
)

// shiftTemplate is one distinct (weekday, start, end) shift of a vehicle
// with its optional break. Employee sources repeat a row per client served,
// so the same template shows up many times.
type shiftTemplate struct {
	day        time.Weekday
	start      domain.Clock
	end        domain.Clock
	breakDur   int
	breakStart domain.Clock
	breakEnd   domain.Clock
	hasBreak   bool
	breakLoc   *domain.Coordinates
}

func (t shiftTemplate) key() string {
	return fmt.Sprintf("%d|%d|%d", t.day, t.start, t.end)
}

type vehicleDraft struct {
	name      string
	area      string
	location  domain.Coordinates
	templates []shiftTemplate
	seen      map[string]int
}

// GenerateVehicles derives one vehicle per distinct normalized shift name
// and emits its shifts for every planning date it works. Vehicles without a
// single working weekday are left out.
func GenerateVehicles(planning config.Planning, rows []domain.EmployeeRecord, report *BuildReport) ([]domain.Vehicle, error) {
	if err := planning.Validate(); err != nil {
		return nil, fmt.Errorf("generate vehicles: %w", err)
	}

	excluded := make(map[string]struct{}, len(planning.ExcludedShiftNames))
	for _, n := range planning.ExcludedShiftNames {
		excluded[domain.NormalizeShiftName(n)] = struct{}{}
	}

	order := make([]string, 0)
	drafts := make(map[string]*vehicleDraft)

	for _, row := range rows {
		report.inc(func(r *BuildReport) { r.EmployeeRowsRead++ })

		norm := domain.NormalizeShiftName(row.ShiftName)
		if _, skip := excluded[norm]; skip || row.Inactive() {
			report.inc(func(r *BuildReport) { r.EmployeeRowsSkip++ })
			continue
		}

		tmpls, err := rowTemplates(row)
		if err != nil {
			report.inc(func(r *BuildReport) { r.EmployeeRowsSkip++ })
			report.record(domain.Fatal(row.ShiftName, err.Error()))
			log.Printf("calendar: rejected employee row shift=%q err=%v", row.ShiftName, err)
			continue
		}

		d, ok := drafts[norm]
		if !ok {
			d = &vehicleDraft{name: strings.Join(strings.Fields(row.ShiftName), " "), seen: make(map[string]int)}
			drafts[norm] = d
			order = append(order, norm)
		}
		if d.location.IsZero() && !row.Location.IsZero() {
			d.location = row.Location
		}
		if d.area == "" {
			d.area = strings.TrimSpace(row.Area)
		}

		for _, t := range tmpls {
			k := t.key()
			if i, dup := d.seen[k]; dup {
				report.inc(func(r *BuildReport) { r.DuplicateShiftRows++ })
				// A repeat that carries the break fills in a row without one.
				if !d.templates[i].hasBreak && t.hasBreak {
					d.templates[i] = t
				}
				continue
			}
			d.seen[k] = len(d.templates)
			d.templates = append(d.templates, t)
		}
	}

	ids := newIDAllocator()
	start, end := planning.PlanningStart(), planning.PlanningEnd()

	out := make([]domain.Vehicle, 0, len(order))
	for _, norm := range order {
		d := drafts[norm]
		if len(d.templates) == 0 {
			continue
		}

		v := domain.Vehicle{
			ID:       ids.next(slug(d.name)),
			Name:     d.name,
			Area:     d.area,
			Location: d.location,
		}
		for _, t := range d.templates {
			dates, err := weeklyDates(start, end, t.day, 1)
			if err != nil {
				return nil, fmt.Errorf("generate vehicles: %s: %w", v.ID, err)
			}
			for _, date := range dates {
				v.Shifts = append(v.Shifts, buildShift(v, t, date))
			}
		}
		sort.SliceStable(v.Shifts, func(i, j int) bool { return v.Shifts[i].Start.Before(v.Shifts[j].Start) })
		uniqueShiftIDs(v.Shifts)

		report.inc(func(r *BuildReport) { r.Shifts += len(v.Shifts) })
		out = append(out, v)
	}

	report.inc(func(r *BuildReport) { r.Vehicles = len(out) })
	return out, nil
}

// uniqueShiftIDs suffixes shifts of one vehicle that start at the same
// instant, e.g. 08:00-12:00 and 08:00-16:00 on the same Monday.
func uniqueShiftIDs(shifts []domain.Shift) {
	seen := make(map[string]int, len(shifts))
	for i := range shifts {
		s := &shifts[i]
		seen[s.ID]++
		if n := seen[s.ID]; n > 1 {
			s.ID = fmt.Sprintf("%s_%d", s.ID, n)
			if s.Break != nil {
				s.Break.ID = s.ID + "_break"
			}
		}
	}
}

func rowTemplates(row domain.EmployeeRecord) ([]shiftTemplate, error) {
	start, err := domain.ParseClock(row.ShiftStart)
	if err != nil {
		return nil, fmt.Errorf("shift start: %w", err)
	}
	end, err := domain.ParseClock(row.ShiftEnd)
	if err != nil {
		return nil, fmt.Errorf("shift end: %w", err)
	}
	if start == end {
		return nil, fmt.Errorf("shift %s-%s has zero length", start, end)
	}

	base := shiftTemplate{start: start, end: end, breakLoc: row.BreakLocation}
	if row.BreakDurationMinutes > 0 && row.BreakStart != "" && row.BreakEnd != "" {
		bs, err := domain.ParseClock(row.BreakStart)
		if err != nil {
			return nil, fmt.Errorf("break start: %w", err)
		}
		be, err := domain.ParseClock(row.BreakEnd)
		if err != nil {
			return nil, fmt.Errorf("break end: %w", err)
		}
		base.hasBreak = true
		base.breakDur = row.BreakDurationMinutes
		base.breakStart = bs
		base.breakEnd = be
	}

	days := WorkingDays(row.Weekdays)
	out := make([]shiftTemplate, 0, len(days))
	for _, d := range days {
		t := base
		t.day = d
		out = append(out, t)
	}
	return out, nil
}

func buildShift(v domain.Vehicle, t shiftTemplate, date time.Time) domain.Shift {
	start := t.start.On(date)
	end := t.end.On(date)
	if !end.After(start) {
		// Overnight shift.
		end = end.Add(24 * time.Hour)
	}

	s := domain.Shift{
		ID:            fmt.Sprintf("%s_%s_%s", v.ID, date.Format("20060102"), start.Format("1504")),
		StartLocation: v.Location,
		Start:         start,
		End:           end,
	}

	if t.hasBreak {
		bStart := t.breakStart.On(date)
		bEnd := t.breakEnd.On(date)
		if bStart.Before(start) {
			bStart = bStart.Add(24 * time.Hour)
			bEnd = bEnd.Add(24 * time.Hour)
		}
		if !bEnd.After(bStart) {
			bEnd = bEnd.Add(24 * time.Hour)
		}

		loc := t.breakLoc
		if loc == nil || loc.IsZero() {
			base := v.Location
			loc = &base
		}
		s.Break = &domain.Break{
			ID:           s.ID + "_break",
			MinStartTime: bStart,
			MaxEndTime:   bEnd,
			Duration:     time.Duration(t.breakDur) * time.Minute,
			Location:     loc,
		}
	}
	return s
}

var (
	allDayMarkers = []string{"daily", "every day", "all days", "dagligen", "alla dagar", "varje dag"}
	weekdayMarker = []string{"weekdays", "vardagar"}
	dayRange      = regexp.MustCompile(`(\p{L}+)\s*[-–]\s*(\p{L}+)`)
)

// WorkingDays resolves the weekday set of an employee row. Besides listed
// names it understands "daily", "weekdays" and ranges such as "mån-fre".
func WorkingDays(text string) []time.Weekday {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, m := range allDayMarkers {
		if strings.Contains(lower, m) {
			return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
		}
	}
	for _, m := range weekdayMarker {
		if strings.Contains(lower, m) {
			return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
		}
	}

	seen := make(map[time.Weekday]struct{}, 7)
	out := make([]time.Weekday, 0, 7)
	add := func(d time.Weekday) {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}

	for _, m := range dayRange.FindAllStringSubmatch(lower, -1) {
		from, ok1 := domain.ResolveWeekday(m[1])
		to, ok2 := domain.ResolveWeekday(m[2])
		if !ok1 || !ok2 {
			continue
		}
		for d := from; ; d = (d + 1) % 7 {
			add(d)
			if d == to {
				break
			}
		}
	}
	for _, d := range domain.ResolveWeekdays(lower) {
		add(d)
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

var slugFold = strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e", "ü", "u")

func slug(name string) string {
	s := slugFold.Replace(strings.ToLower(name))
	s = strings.Trim(nonSlug.ReplaceAllString(s, "_"), "_")
	if s == "" {
		return "vehicle"
	}
	return s
}

// idAllocator hands out unique ids, suffixing collisions with _2, _3, ...
type idAllocator struct {
	used map[string]struct{}
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: make(map[string]struct{})}
}

func (a *idAllocator) next(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := a.used[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
	a.used[id] = struct{}{}
	return id
}

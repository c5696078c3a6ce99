package source

import (
	"errors"
	"fmt"
	"io"
	"log"
	"visit-model-service/internal/domain"
)

// Format names a visit table layout.
type Format string

const (
	FormatStandard Format = "standard"
	FormatLegacy   Format = "legacy"
)

// visitColumns lists the accepted header names per canonical field.
type visitColumns struct {
	id, client, address, lat, lon, frequency, recurrence, start, duration,
	flexBefore, flexAfter, group, shiftType, note, staff, area []string
}

var visitFormats = map[Format]visitColumns{
	FormatStandard: {
		id:         []string{"id", "visit_id", "record_id"},
		client:     []string{"client", "client_id", "visit_name"},
		address:    []string{"address", "street_address"},
		lat:        []string{"lat", "latitude"},
		lon:        []string{"lon", "lng", "longitude"},
		frequency:  []string{"frequency", "freq"},
		recurrence: []string{"recurrence", "weekday", "weekdays"},
		start:      []string{"start_time", "start"},
		duration:   []string{"duration", "duration_minutes", "duration_min"},
		flexBefore: []string{"flex_before", "flex_before_minutes"},
		flexAfter:  []string{"flex_after", "flex_after_minutes"},
		group:      []string{"group_key", "group", "visit_group"},
		shiftType:  []string{"shift_type", "status"},
		note:       []string{"note", "notes", "comment"},
		staff:      []string{"staff", "staff_name", "employee", "assigned_staff"},
		area:       []string{"area", "service_area", "district"},
	},
	FormatLegacy: {
		id:         []string{"besöksid", "besöks-id", "insats-id", "insatsid"},
		client:     []string{"kund", "kundnamn", "brukare"},
		address:    []string{"adress", "gatuadress", "besöksadress"},
		lat:        []string{"latitud", "lat"},
		lon:        []string{"longitud", "long", "lon"},
		frequency:  []string{"frekvens", "återkommande"},
		recurrence: []string{"veckodag", "dagar", "återkommande dagar"},
		start:      []string{"starttid", "start"},
		duration:   []string{"längd", "tidsåtgång", "tidsåtgång (min)", "varaktighet"},
		flexBefore: []string{"flex före", "före", "tidigast (min)"},
		flexAfter:  []string{"flex efter", "efter", "senast (min)"},
		group:      []string{"dubbelbemanning", "gruppnyckel", "samplanering"},
		shiftType:  []string{"skifttyp", "passtyp", "status"},
		note:       []string{"notering", "anteckning", "kommentar"},
		staff:      []string{"personal", "utförare", "medarbetare"},
		area:       []string{"område", "distrikt", "grupp"},
	},
}

// detectFormat picks the layout whose id and client columns are present.
func detectFormat(t *table) (Format, error) {
	for _, f := range []Format{FormatStandard, FormatLegacy} {
		c := visitFormats[f]
		if t.has(c.id...) && t.has(c.client...) && t.has(c.start...) {
			return f, nil
		}
	}
	return "", errors.New("unrecognized visit table header")
}

// ReadVisits reads a visit table in either supported layout and normalizes
// every row into a domain.VisitRecord. Rows that fail validation are
// returned as RowErrors and left out; err is reserved for unreadable input.
func ReadVisits(r io.Reader) (_ []domain.VisitRecord, rowErrs []RowError, err error) {
	t, err := readTable(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read visits: %w", err)
	}
	format, err := detectFormat(t)
	if err != nil {
		return nil, nil, fmt.Errorf("read visits: %w", err)
	}
	c := visitFormats[format]

	out := make([]domain.VisitRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		if blankRow(row) {
			continue
		}

		rec, err := visitRow(t, c, row)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		out = append(out, rec)
	}

	log.Printf("source: read visits format=%s rows=%d accepted=%d rejected=%d", format, len(t.rows), len(out), len(rowErrs))
	return out, rowErrs, nil
}

func visitRow(t *table, c visitColumns, row []string) (domain.VisitRecord, error) {
	loc, err := parseCoordinates(t.get(row, c.lat...), t.get(row, c.lon...))
	if err != nil {
		return domain.VisitRecord{}, err
	}
	duration, err := parseMinutes(t.get(row, c.duration...))
	if err != nil {
		return domain.VisitRecord{}, fmt.Errorf("duration: %w", err)
	}
	before, err := parseMinutes(t.get(row, c.flexBefore...))
	if err != nil {
		return domain.VisitRecord{}, fmt.Errorf("flex before: %w", err)
	}
	after, err := parseMinutes(t.get(row, c.flexAfter...))
	if err != nil {
		return domain.VisitRecord{}, fmt.Errorf("flex after: %w", err)
	}

	return domain.VisitRecord{
		ID:                t.get(row, c.id...),
		Client:            t.get(row, c.client...),
		Address:           t.get(row, c.address...),
		Location:          loc,
		Frequency:         t.get(row, c.frequency...),
		Recurrence:        t.get(row, c.recurrence...),
		StartTime:         t.get(row, c.start...),
		DurationMinutes:   duration,
		FlexBeforeMinutes: before,
		FlexAfterMinutes:  after,
		GroupKey:          t.get(row, c.group...),
		ShiftType:         t.get(row, c.shiftType...),
		Note:              t.get(row, c.note...),
		StaffName:         t.get(row, c.staff...),
		Area:              t.get(row, c.area...),
	}, nil
}

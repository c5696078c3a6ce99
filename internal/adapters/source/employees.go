package source

import (
	"errors"
	"fmt"
	"io"
	"log"
	"visit-model-service/internal/domain"
)

var (
	colShiftName  = []string{"shift_name", "shift", "employee", "passnamn", "pass", "medarbetare", "namn"}
	colWeekdays   = []string{"weekdays", "weekday", "days", "veckodagar", "veckodag", "dagar"}
	colShiftStart = []string{"shift_start", "start", "starttid", "passtart", "pass start"}
	colShiftEnd   = []string{"shift_end", "end", "sluttid", "passlut", "pass slut"}
	colBreakMins  = []string{"break_duration", "break_minutes", "rast", "rast (min)", "rastlängd"}
	colBreakStart = []string{"break_start", "rast start", "rast från"}
	colBreakEnd   = []string{"break_end", "rast slut", "rast till"}
	colLat        = []string{"lat", "latitude", "latitud"}
	colLon        = []string{"lon", "lng", "longitude", "longitud"}
	colBreakLat   = []string{"break_lat", "rast latitud"}
	colBreakLon   = []string{"break_lon", "rast longitud"}
	colShiftType  = []string{"shift_type", "type", "passtyp", "skifttyp", "status"}
	colArea       = []string{"area", "service_area", "område", "distrikt"}
	colClient     = []string{"client", "kund", "brukare"}
)

// ReadEmployees reads an employee/shift table. Like ReadVisits, bad rows are
// reported and skipped.
func ReadEmployees(r io.Reader) (_ []domain.EmployeeRecord, rowErrs []RowError, err error) {
	t, err := readTable(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read employees: %w", err)
	}
	if !t.has(colShiftName...) || !t.has(colShiftStart...) || !t.has(colShiftEnd...) {
		return nil, nil, errors.New("read employees: unrecognized employee table header")
	}

	out := make([]domain.EmployeeRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		if blankRow(row) {
			continue
		}

		rec, err := employeeRow(t, row)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		out = append(out, rec)
	}

	log.Printf("source: read employees rows=%d accepted=%d rejected=%d", len(t.rows), len(out), len(rowErrs))
	return out, rowErrs, nil
}

func employeeRow(t *table, row []string) (domain.EmployeeRecord, error) {
	loc, err := parseCoordinates(t.get(row, colLat...), t.get(row, colLon...))
	if err != nil {
		return domain.EmployeeRecord{}, err
	}
	breakMins, err := parseMinutes(t.get(row, colBreakMins...))
	if err != nil {
		return domain.EmployeeRecord{}, fmt.Errorf("break duration: %w", err)
	}

	rec := domain.EmployeeRecord{
		ShiftName:            t.get(row, colShiftName...),
		Weekdays:             t.get(row, colWeekdays...),
		ShiftStart:           t.get(row, colShiftStart...),
		ShiftEnd:             t.get(row, colShiftEnd...),
		BreakDurationMinutes: breakMins,
		BreakStart:           t.get(row, colBreakStart...),
		BreakEnd:             t.get(row, colBreakEnd...),
		Location:             loc,
		ShiftType:            t.get(row, colShiftType...),
		Area:                 t.get(row, colArea...),
		Client:               t.get(row, colClient...),
	}

	bLat, bLon := t.get(row, colBreakLat...), t.get(row, colBreakLon...)
	if bLat != "" || bLon != "" {
		bl, err := parseCoordinates(bLat, bLon)
		if err != nil {
			return domain.EmployeeRecord{}, fmt.Errorf("break location: %w", err)
		}
		rec.BreakLocation = &bl
	}
	return rec, nil
}

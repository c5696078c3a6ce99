package domain

import (
	"strings"
	"time"
)

// EmployeeRecord is one canonical employee/shift source row. The source table
// repeats a row per client served, so several rows can describe one shift.
type EmployeeRecord struct {
	ShiftName            string       `json:"shift_name" validate:"required"`
	Weekdays             string       `json:"weekdays"`
	ShiftStart           string       `json:"shift_start" validate:"required"`
	ShiftEnd             string       `json:"shift_end" validate:"required"`
	BreakDurationMinutes int          `json:"break_duration_minutes" validate:"gte=0,lte=480"`
	BreakStart           string       `json:"break_start,omitempty"`
	BreakEnd             string       `json:"break_end,omitempty"`
	Location             Coordinates  `json:"location"`
	BreakLocation        *Coordinates `json:"break_location,omitempty"`
	ShiftType            string       `json:"shift_type,omitempty"`
	Area                 string       `json:"area,omitempty"`
	Client               string       `json:"client,omitempty"`
}

// Inactive reports whether the row carries the inactive shift-type sentinel.
func (e EmployeeRecord) Inactive() bool {
	st := strings.ToLower(strings.TrimSpace(e.ShiftType))
	for _, m := range inactiveShiftTypes {
		if st == m {
			return true
		}
	}
	return false
}

// Vehicle is one schedulable caregiver identity with its generated shifts.
type Vehicle struct {
	ID       string
	Name     string
	Area     string
	Location Coordinates
	Shifts   []Shift
}

// Shift is one working period of a vehicle on one date.
type Shift struct {
	ID            string
	StartLocation Coordinates
	Start         time.Time
	End           time.Time
	Break         *Break
}

// Break is an optional rest period nested in a shift.
type Break struct {
	ID           string
	MinStartTime time.Time
	MaxEndTime   time.Time
	Duration     time.Duration
	Location     *Coordinates
}

// NormalizeShiftName is the identity key for deduplicating vehicles.
func NormalizeShiftName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

package domain

import (
	"regexp"
	"strings"
	"time"
)

// VisitRecord is one canonical recurring-visit source row. Both source table
// formats are normalized into this shape before expansion.
type VisitRecord struct {
	ID                string      `json:"id" validate:"required"`
	Client            string      `json:"client" validate:"required"`
	Address           string      `json:"address,omitempty"`
	Location          Coordinates `json:"location"`
	Frequency         string      `json:"frequency,omitempty"`
	Recurrence        string      `json:"recurrence,omitempty"`
	StartTime         string      `json:"start_time" validate:"required"`
	DurationMinutes   int         `json:"duration_minutes" validate:"gt=0,lte=1440"`
	FlexBeforeMinutes int         `json:"flex_before_minutes" validate:"gte=0,lte=1440"`
	FlexAfterMinutes  int         `json:"flex_after_minutes" validate:"gte=0,lte=1440"`
	GroupKey          string      `json:"group_key,omitempty"`
	ShiftType         string      `json:"shift_type,omitempty"`
	Note              string      `json:"note,omitempty"`
	StaffName         string      `json:"staff_name,omitempty"`
	Area              string      `json:"area,omitempty"`
}

var inactiveShiftTypes = []string{"inactive", "inaktiv", "vilande"}
var inactiveNoteMarkers = []string{"inactive", "inaktiv", "vilande", "avslutad"}

// Inactive reports whether the record carries an explicit inactive marker.
func (r VisitRecord) Inactive() bool {
	st := strings.ToLower(strings.TrimSpace(r.ShiftType))
	for _, m := range inactiveShiftTypes {
		if st == m {
			return true
		}
	}
	note := strings.ToLower(r.Note)
	return containsAny(note, inactiveNoteMarkers)
}

// VisitOccurrence is one dated instance of a VisitRecord inside the planning
// window. Only Location may change after creation.
type VisitOccurrence struct {
	ID        int
	SourceID  string
	Client    string
	Address   string
	Location  Coordinates
	Duration  time.Duration
	Window    TimeWindow
	GroupKey  string
	WeekIndex int
	Date      time.Time
	StaffName string
	Area      string
}

// Person is the client identity continuity is measured on.
func (o VisitOccurrence) Person() string { return PersonOf(o.Client) }

// VisitGroup is a set of occurrences served simultaneously by distinct vehicles.
type VisitGroup struct {
	ID     string
	Visits []VisitOccurrence
}

var sequenceSuffix = regexp.MustCompile(`^(.*?\S)[\s_\-]+\d+$`)

// PersonOf strips the trailing sequence suffix of a visit-name client:
// "C12_2" and "C12 - 2" both belong to person "C12".
func PersonOf(visitName string) string {
	name := strings.TrimSpace(visitName)
	if m := sequenceSuffix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}

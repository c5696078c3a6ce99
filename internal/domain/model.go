package domain

import (
	"fmt"
	"time"
)

// Model is the scheduling document handed verbatim to the external optimizer.
type Model struct {
	Visits      []ModelVisit      `json:"visits"`
	VisitGroups []ModelVisitGroup `json:"visitGroups"`
	Vehicles    []ModelVehicle    `json:"vehicles"`
}

type ModelVisit struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Location        [2]float64 `json:"location"`
	ServiceDuration string     `json:"serviceDuration"`
	MinStartTime    time.Time  `json:"minStartTime"`
	MaxStartTime    *time.Time `json:"maxStartTime,omitempty"`
	MaxEndTime      time.Time  `json:"maxEndTime"`
	AllowedVehicles []string   `json:"allowedVehicles,omitempty"`
}

type ModelVisitGroup struct {
	ID     string       `json:"id"`
	Visits []ModelVisit `json:"visits"`
}

type ModelVehicle struct {
	ID     string       `json:"id"`
	Shifts []ModelShift `json:"shifts"`
}

type ModelShift struct {
	ID             string       `json:"id"`
	StartLocation  [2]float64   `json:"startLocation"`
	MinStartTime   time.Time    `json:"minStartTime"`
	MaxEndTime     time.Time    `json:"maxEndTime"`
	RequiredBreaks []ModelBreak `json:"requiredBreaks,omitempty"`
}

type ModelBreak struct {
	ID           string      `json:"id"`
	MinStartTime time.Time   `json:"minStartTime"`
	MaxEndTime   time.Time   `json:"maxEndTime"`
	Duration     string      `json:"duration"`
	Location     *[2]float64 `json:"location,omitempty"`
}

// Window returns the visit's time window as a domain value.
func (v ModelVisit) Window() TimeWindow {
	return TimeWindow{MinStartTime: v.MinStartTime, MaxStartTime: v.MaxStartTime, MaxEndTime: v.MaxEndTime}
}

// EachVisit calls fn for every standalone visit and every group member.
func (m *Model) EachVisit(fn func(v *ModelVisit)) {
	for i := range m.Visits {
		fn(&m.Visits[i])
	}
	for g := range m.VisitGroups {
		for i := range m.VisitGroups[g].Visits {
			fn(&m.VisitGroups[g].Visits[i])
		}
	}
}

// VehicleIDs returns the ids of all vehicles in model order.
func (m *Model) VehicleIDs() []string {
	out := make([]string, 0, len(m.Vehicles))
	for _, v := range m.Vehicles {
		out = append(out, v.ID)
	}
	return out
}

// SolverOutput is the assignment result returned by the external optimizer.
type SolverOutput struct {
	Assignments []Assignment `json:"assignments"`
	Unassigned  []string     `json:"unassigned,omitempty"`
}

type Assignment struct {
	VisitID   string `json:"visitId"`
	VehicleID string `json:"vehicleId"`
}

// ContinuityPools maps a person to the capped, ordered vehicle ids allowed to
// serve them.
type ContinuityPools map[string][]string

// FormatISODuration renders d as an ISO-8601 duration ("PT1H30M").
func FormatISODuration(d time.Duration) string {
	if d <= 0 {
		return "PT0S"
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	s := int((d % time.Minute) / time.Second)

	out := "PT"
	if h > 0 {
		out += fmt.Sprintf("%dH", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dM", m)
	}
	if s > 0 {
		out += fmt.Sprintf("%dS", s)
	}
	if out == "PT" {
		out = "PT0S"
	}
	return out
}

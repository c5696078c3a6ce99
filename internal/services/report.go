package services

import (
	"log"
	"visit-model-service/internal/domain"
)

// BuildReport counts what the pipeline did with the source data. Degradations
// are counted here rather than aborting the batch.
type BuildReport struct {
	RecordsRead        int `json:"records_read"`
	InactiveSkipped    int `json:"inactive_skipped"`
	FrequencyDefaulted int `json:"frequency_defaulted"`
	WeekdayDefaulted   int `json:"weekday_defaulted"`
	PeriodTooLong      int `json:"period_too_long"`
	InvalidWindows     int `json:"invalid_windows"`
	Occurrences        int `json:"occurrences"`
	MissingCoordinates int `json:"missing_coordinates"`
	GeocodeCalls       int `json:"geocode_calls"`
	GeocodeCacheHits   int `json:"geocode_cache_hits"`
	StandaloneVisits   int `json:"standalone_visits"`
	VisitGroups        int `json:"visit_groups"`
	EmployeeRowsRead   int `json:"employee_rows_read"`
	EmployeeRowsSkip   int `json:"employee_rows_skipped"`
	DuplicateShiftRows int `json:"duplicate_shift_rows"`
	Vehicles           int `json:"vehicles"`
	Shifts             int `json:"shifts"`
	PooledPeople       int `json:"pooled_people"`
	PatchedVisits      int `json:"patched_visits"`

	// Outcomes lists every skipped or fatal record/occurrence.
	Outcomes []domain.Outcome `json:"outcomes,omitempty"`
}

func (r *BuildReport) inc(fn func(r *BuildReport)) {
	if r != nil {
		fn(r)
	}
}

func (r *BuildReport) record(o domain.Outcome) {
	if r == nil || o.Kind == domain.OutcomeOK {
		return
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Fatal returns the outcomes that indicate defects in the source data.
func (r *BuildReport) Fatal() []domain.Outcome {
	out := make([]domain.Outcome, 0)
	for _, o := range r.Outcomes {
		if o.Kind == domain.OutcomeFatal {
			out = append(out, o)
		}
	}
	return out
}

func (r *BuildReport) log() {
	log.Printf(
		"build report records=%d inactive=%d freq_defaulted=%d weekday_defaulted=%d period_too_long=%d invalid_windows=%d occurrences=%d missing_coords=%d geocode_calls=%d geocode_hits=%d standalone=%d groups=%d vehicles=%d shifts=%d pooled_people=%d",
		r.RecordsRead, r.InactiveSkipped, r.FrequencyDefaulted, r.WeekdayDefaulted, r.PeriodTooLong,
		r.InvalidWindows, r.Occurrences, r.MissingCoordinates, r.GeocodeCalls, r.GeocodeCacheHits,
		r.StandaloneVisits, r.VisitGroups, r.Vehicles, r.Shifts, r.PooledPeople,
	)
}

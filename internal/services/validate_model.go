package services

import (
	"errors"
	"fmt"
	"visit-model-service/internal/domain"
)

// ValidateModel checks a built (or externally edited) model before it is
// handed to the optimizer. All problems are collected and returned joined;
// a nil result means the model is consistent.
func ValidateModel(m *domain.Model) error {
	var errs []error

	vehicleIDs := make(map[string]struct{}, len(m.Vehicles))
	shiftIDs := make(map[string]struct{})
	for _, v := range m.Vehicles {
		if _, dup := vehicleIDs[v.ID]; dup {
			errs = append(errs, fmt.Errorf("vehicle %s: %w", v.ID, domain.ErrDuplicateID))
		}
		vehicleIDs[v.ID] = struct{}{}

		for _, s := range v.Shifts {
			if _, dup := shiftIDs[s.ID]; dup {
				errs = append(errs, fmt.Errorf("shift %s: %w", s.ID, domain.ErrDuplicateID))
			}
			shiftIDs[s.ID] = struct{}{}

			if !s.MaxEndTime.After(s.MinStartTime) {
				errs = append(errs, fmt.Errorf("shift %s: %w: end not after start", s.ID, domain.ErrInvalidTimeWindow))
			}
			for _, b := range s.RequiredBreaks {
				if b.MaxEndTime.Before(b.MinStartTime) {
					errs = append(errs, fmt.Errorf("break %s: %w: end before start", b.ID, domain.ErrInvalidTimeWindow))
				}
			}
		}
	}

	visitIDs := make(map[string]struct{})
	checkVisit := func(v *domain.ModelVisit) {
		if _, dup := visitIDs[v.ID]; dup {
			errs = append(errs, fmt.Errorf("visit %s: %w", v.ID, domain.ErrDuplicateID))
		}
		visitIDs[v.ID] = struct{}{}

		if _, err := domain.NewTimeWindow(v.MinStartTime, v.MaxStartTime, v.MaxEndTime); err != nil {
			errs = append(errs, fmt.Errorf("visit %s: %w", v.ID, err))
		}
		for _, id := range v.AllowedVehicles {
			if _, ok := vehicleIDs[id]; !ok {
				errs = append(errs, fmt.Errorf("visit %s: allowed vehicle %q: %w", v.ID, id, domain.ErrUnknownVehicle))
			}
		}
	}
	m.EachVisit(checkVisit)

	for _, g := range m.VisitGroups {
		if err := validateGroup(g); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateGroup requires at least two members whose windows pairwise overlap.
func validateGroup(g domain.ModelVisitGroup) error {
	if len(g.Visits) < 2 {
		return fmt.Errorf("visit group %s: %w: %d member(s)", g.ID, domain.ErrGroupOverlap, len(g.Visits))
	}
	for i := 0; i < len(g.Visits); i++ {
		for j := i + 1; j < len(g.Visits); j++ {
			a, b := g.Visits[i], g.Visits[j]
			if !a.Window().Overlaps(b.Window()) {
				return fmt.Errorf("visit group %s: %w: %s and %s", g.ID, domain.ErrGroupOverlap, a.ID, b.ID)
			}
		}
	}
	return nil
}

// ValidateGroups checks the overlap invariant on groups straight out of
// GroupVisits.
func ValidateGroups(groups []domain.VisitGroup) error {
	var errs []error
	for _, g := range groups {
		if len(g.Visits) < 2 {
			errs = append(errs, fmt.Errorf("visit group %s: %w: %d member(s)", g.ID, domain.ErrGroupOverlap, len(g.Visits)))
			continue
		}
	pairs:
		for i := 0; i < len(g.Visits); i++ {
			for j := i + 1; j < len(g.Visits); j++ {
				if !g.Visits[i].Window.Overlaps(g.Visits[j].Window) {
					errs = append(errs, fmt.Errorf("visit group %s: %w: occurrences %d and %d",
						g.ID, domain.ErrGroupOverlap, g.Visits[i].ID, g.Visits[j].ID))
					break pairs
				}
			}
		}
	}
	return errors.Join(errs...)
}

// CheckSolution verifies that every assignment references a visit and a
// vehicle of m.
func CheckSolution(m *domain.Model, out domain.SolverOutput) error {
	visits := make(map[string]struct{})
	m.EachVisit(func(v *domain.ModelVisit) { visits[v.ID] = struct{}{} })
	vehicles := make(map[string]struct{}, len(m.Vehicles))
	for _, id := range m.VehicleIDs() {
		vehicles[id] = struct{}{}
	}

	var errs []error
	for _, a := range out.Assignments {
		if _, ok := visits[a.VisitID]; !ok {
			errs = append(errs, fmt.Errorf("assignment: %w: visit %s", domain.ErrNotFound, a.VisitID))
		}
		if _, ok := vehicles[a.VehicleID]; !ok {
			errs = append(errs, fmt.Errorf("assignment %s: %w %s", a.VisitID, domain.ErrUnknownVehicle, a.VehicleID))
		}
	}
	return errors.Join(errs...)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"visit-model-service/internal/adapters/cache"
	"visit-model-service/internal/adapters/geocode"
	"visit-model-service/internal/domain"
)

func TestBuildModel_EndToEnd(t *testing.T) {
	a := visitRecord("1", "C1_1", "weekly x2", "måndag", "09:00")
	b := visitRecord("2", "C1_2", "weekly x2", "måndag", "09:00")
	a.GroupKey, b.GroupKey = "G1", "G1"
	a.StaffName, b.StaffName = "Anna", "Bertil"

	c := visitRecord("3", "C2", "varannan vecka", "", "10:00")
	c.Location = domain.Coordinates{}
	c.Address = "Storgatan 1"
	c.StaffName = "Anna"

	lost := visitRecord("4", "C3", "weekly", "", "10:00")
	lost.Location = domain.Coordinates{}
	lost.Address = "Nowhere 0"

	in := BuildInput{
		Visits: []domain.VisitRecord{a, b, c, lost},
		Employees: []domain.EmployeeRecord{
			employeeRow("Anna", "mån-fre", "07:00", "16:00"),
			employeeRow("Bertil", "mån-fre", "07:00", "16:00"),
		},
	}
	opts := BuildOptions{
		Geocoder: geocode.NewMockGeocoder(map[string]domain.Coordinates{"Storgatan 1": {Lon: 18.0, Lat: 59.0}}),
		Cache:    cache.NewMemoryGeocodeCache(),
		Pool:     SourcePoolStrategy{FilterToKnown: true},
	}

	res, err := BuildModel(context.Background(), testPlanning(2), in, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := res.Model
	if len(m.VisitGroups) != 2 {
		t.Fatalf("expected 2 groups (one per week), got %d", len(m.VisitGroups))
	}
	if len(m.Visits) != 1 {
		t.Fatalf("expected 1 standalone visit, got %d", len(m.Visits))
	}
	if len(m.Vehicles) != 2 || len(m.Vehicles[0].Shifts) != 10 {
		t.Fatalf("expected 2 vehicles with 10 shifts each, got %+v", m.Vehicles)
	}
	if m.Visits[0].Location != [2]float64{59.0, 18.0} {
		t.Fatalf("geocoded location = %v", m.Visits[0].Location)
	}
	if m.Visits[0].ServiceDuration != "PT30M" {
		t.Fatalf("service duration = %q", m.Visits[0].ServiceDuration)
	}
	if res.Report.MissingCoordinates != 2 {
		t.Fatalf("missing coordinates = %d, want 2", res.Report.MissingCoordinates)
	}

	if got := res.Pools["C1"]; len(got) != 2 || got[0] != "anna" || got[1] != "bertil" {
		t.Fatalf("C1 pool = %v", got)
	}
	for _, g := range m.VisitGroups {
		for _, v := range g.Visits {
			if len(v.AllowedVehicles) != 2 {
				t.Fatalf("group member %s allowed = %v", v.ID, v.AllowedVehicles)
			}
		}
	}

	if err := ValidateModel(&m); err != nil {
		t.Fatalf("built model should validate: %v", err)
	}

	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"visitGroups"`, `"serviceDuration"`, `"minStartTime"`, `"allowedVehicles"`, `"startLocation"`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("model json missing %s", key)
		}
	}
}

func TestBuildModel_UnknownStaffStaysInPoolsOnly(t *testing.T) {
	a := visitRecord("1", "C1", "weekly x2", "måndag", "09:00")
	a.StaffName = "Anna"
	b := visitRecord("2", "C2", "weekly x2", "tisdag", "09:00")
	b.StaffName = "Vikarie"

	in := BuildInput{
		Visits:    []domain.VisitRecord{a, b},
		Employees: []domain.EmployeeRecord{employeeRow("Anna", "mån-fre", "07:00", "16:00")},
	}
	opts := BuildOptions{Cache: cache.NewMemoryGeocodeCache(), Pool: SourcePoolStrategy{}}

	res, err := BuildModel(context.Background(), testPlanning(1), in, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Pools["C2"]; len(got) != 1 || got[0] != "Vikarie" {
		t.Fatalf("C2 pool = %v", got)
	}
	if res.Report.PatchedVisits != 1 {
		t.Fatalf("patched visits = %d, want 1", res.Report.PatchedVisits)
	}
	if err := ValidateModel(&res.Model); err != nil {
		t.Fatalf("built model should validate: %v", err)
	}
}

func TestBuildModel_NonOverlappingGroupMembersStayStandalone(t *testing.T) {
	a := visitRecord("1", "C1", "weekly x2", "måndag", "08:00")
	b := visitRecord("2", "C1", "weekly x2", "måndag", "15:00")
	a.GroupKey, b.GroupKey = "G", "G"

	in := BuildInput{
		Visits:    []domain.VisitRecord{a, b},
		Employees: []domain.EmployeeRecord{employeeRow("Anna", "mån-fre", "07:00", "16:00")},
	}
	res, err := BuildModel(context.Background(), testPlanning(1), in, BuildOptions{Cache: cache.NewMemoryGeocodeCache()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Model.VisitGroups) != 0 || len(res.Model.Visits) != 2 {
		t.Fatalf("expected 2 standalone visits, got %d visits and %d groups", len(res.Model.Visits), len(res.Model.VisitGroups))
	}
	if err := ValidateModel(&res.Model); err != nil {
		t.Fatalf("built model should validate: %v", err)
	}
}

func TestBuildModel_RequiresCache(t *testing.T) {
	_, err := BuildModel(context.Background(), testPlanning(1), BuildInput{}, BuildOptions{})
	if err == nil {
		t.Fatal("expected error without cache")
	}
}

func TestValidateModel_DetectsDefects(t *testing.T) {
	p := testPlanning(1)
	a := visitRecord("1", "C1", "weekly x2", "måndag", "09:00")
	b := visitRecord("2", "C1", "weekly x2", "måndag", "09:00")
	a.GroupKey, b.GroupKey = "G", "G"

	res, err := BuildModel(context.Background(), p, BuildInput{Visits: []domain.VisitRecord{a, b}}, BuildOptions{Cache: cache.NewMemoryGeocodeCache()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := res.Model
	if err := ValidateModel(&m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Move one member to another day.
	g := &m.VisitGroups[0]
	shifted := g.Visits[1]
	shifted.MinStartTime = shifted.MinStartTime.AddDate(0, 0, 1)
	maxStart := shifted.MaxStartTime.AddDate(0, 0, 1)
	shifted.MaxStartTime = &maxStart
	shifted.MaxEndTime = shifted.MaxEndTime.AddDate(0, 0, 1)
	g.Visits[1] = shifted

	g.Visits[0].AllowedVehicles = []string{"ghost"}

	err = ValidateModel(&m)
	if !errors.Is(err, domain.ErrGroupOverlap) {
		t.Fatalf("expected ErrGroupOverlap, got %v", err)
	}
	if !errors.Is(err, domain.ErrUnknownVehicle) {
		t.Fatalf("expected ErrUnknownVehicle, got %v", err)
	}
}

func TestValidateModel_WindowOrderAndDuplicates(t *testing.T) {
	p := testPlanning(1)
	start := p.PlanningStart()

	m := &domain.Model{
		Visits: []domain.ModelVisit{
			{ID: "V1", MinStartTime: start.Add(2 * time.Hour), MaxEndTime: start},
			{ID: "V1", MinStartTime: start, MaxEndTime: start},
		},
	}

	err := ValidateModel(m)
	if !errors.Is(err, domain.ErrInvalidTimeWindow) {
		t.Fatalf("expected ErrInvalidTimeWindow, got %v", err)
	}
	if !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestCheckSolution(t *testing.T) {
	m := &domain.Model{
		Visits:   []domain.ModelVisit{{ID: "V1"}, {ID: "V2"}},
		Vehicles: []domain.ModelVehicle{{ID: "anna"}},
	}

	ok := domain.SolverOutput{Assignments: []domain.Assignment{{VisitID: "V1", VehicleID: "anna"}}, Unassigned: []string{"V2"}}
	if err := CheckSolution(m, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := domain.SolverOutput{Assignments: []domain.Assignment{
		{VisitID: "V9", VehicleID: "anna"},
		{VisitID: "V2", VehicleID: "ghost"},
	}}
	err := CheckSolution(m, bad)
	if !errors.Is(err, domain.ErrNotFound) || !errors.Is(err, domain.ErrUnknownVehicle) {
		t.Fatalf("expected unknown visit and vehicle, got %v", err)
	}
}

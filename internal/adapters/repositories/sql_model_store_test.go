package repositories

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/db"
	"visit-model-service/internal/ports"
)

func newSQLiteStore(t *testing.T) *SQLModelStore {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "models.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSQLModelStore(conn, db.DialectSQLite)
}

func sampleModel() domain.Model {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.FixedZone("+01:00", 3600))
	return domain.Model{
		Visits: []domain.ModelVisit{{
			ID: "V1", Name: "C1_1", Location: [2]float64{59.3, 18.0},
			ServiceDuration: "PT30M", MinStartTime: start, MaxEndTime: start.Add(time.Hour),
		}},
		VisitGroups: []domain.ModelVisitGroup{},
		Vehicles: []domain.ModelVehicle{{ID: "anna", Shifts: []domain.ModelShift{{
			ID: "anna_20260105_0700", MinStartTime: start.Add(-2 * time.Hour), MaxEndTime: start.Add(7 * time.Hour),
		}}}},
	}
}

func TestSQLModelStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	run := &ports.ModelRun{Label: "week 2", Model: sampleModel()}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be set, got %+v", run)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Label != "week 2" || len(got.Model.Visits) != 1 || got.Model.Visits[0].ID != "V1" {
		t.Fatalf("unexpected run %+v", got)
	}
	if !got.Model.Visits[0].MinStartTime.Equal(run.Model.Visits[0].MinStartTime) {
		t.Fatalf("min start = %v", got.Model.Visits[0].MinStartTime)
	}
	if got.Solution != nil {
		t.Fatal("expected no solution yet")
	}
}

func TestSQLModelStore_SolutionAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	run := &ports.ModelRun{Model: sampleModel()}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("save: %v", err)
	}

	out := domain.SolverOutput{Assignments: []domain.Assignment{{VisitID: "V1", VehicleID: "anna"}}}
	if err := s.SaveSolution(ctx, run.ID, out); err != nil {
		t.Fatalf("save solution: %v", err)
	}

	m := run.Model
	m.Visits[0].AllowedVehicles = []string{"anna"}
	if err := s.UpdateModel(ctx, run.ID, m); err != nil {
		t.Fatalf("update model: %v", err)
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Solution == nil || len(got.Solution.Assignments) != 1 || got.Solution.Assignments[0].VehicleID != "anna" {
		t.Fatalf("solution = %+v", got.Solution)
	}
	if len(got.Model.Visits[0].AllowedVehicles) != 1 {
		t.Fatalf("allowed vehicles = %v", got.Model.Visits[0].AllowedVehicles)
	}
}

func TestSQLModelStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveSolution(ctx, "missing", domain.SolverOutput{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLModelStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, label := range []string{"old", "mid", "new"} {
		run := &ports.ModelRun{Label: label, CreatedAt: base.Add(time.Duration(i) * time.Hour), Model: sampleModel()}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].Label != "new" || runs[1].Label != "mid" {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

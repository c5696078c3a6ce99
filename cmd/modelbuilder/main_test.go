package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"visit-model-service/internal/domain"
)

const testVisits = `id,client,lat,lon,frequency,recurrence,start_time,duration,flex_before,flex_after,staff
1,C1_1,59.33,18.07,weekly x2,måndag,09:00,30,15,15,Anna
2,C2,59.34,18.05,weekly,,10:00,45,0,0,Bertil
`

const testEmployees = `shift_name,weekdays,shift_start,shift_end,break_duration,break_start,break_end,lat,lon
Anna,mån-fre,07:00,16:00,30,11:00,13:00,59.33,18.07
Bertil,mån-fre,07:00,16:00,,,,59.33,18.07
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append(args, "--start", "2026-01-05", "--weeks", "2"))
	err := root.Execute()
	return buf.String(), err
}

func TestBuildPoolValidate(t *testing.T) {
	dir := t.TempDir()
	visits := writeFile(t, dir, "visits.csv", testVisits)
	employees := writeFile(t, dir, "employees.csv", testEmployees)
	modelPath := filepath.Join(dir, "model.json")

	out, err := run(t, "build", "--visits", visits, "--employees", employees, "--out", modelPath, "--ics-dir", filepath.Join(dir, "ics"), "--pool", "source")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if !strings.Contains(out, "occurrences") {
		t.Fatalf("expected report table, got:\n%s", out)
	}

	var m domain.Model
	if err := readJSON(modelPath, &m); err != nil {
		t.Fatal(err)
	}
	if len(m.Visits) != 4 || len(m.Vehicles) != 2 {
		t.Fatalf("model has %d visits and %d vehicles", len(m.Visits), len(m.Vehicles))
	}
	for _, id := range []string{"anna", "bertil"} {
		if _, err := os.Stat(filepath.Join(dir, "ics", id+".ics")); err != nil {
			t.Fatalf("missing calendar for %s: %v", id, err)
		}
	}

	var sol domain.SolverOutput
	m.EachVisit(func(v *domain.ModelVisit) {
		sol.Assignments = append(sol.Assignments, domain.Assignment{VisitID: v.ID, VehicleID: "bertil"})
	})
	solPath := filepath.Join(dir, "solution.json")
	if err := writeJSON(nil, solPath, sol); err != nil {
		t.Fatal(err)
	}

	next := filepath.Join(dir, "next.json")
	if out, err := run(t, "build", "--visits", visits, "--employees", employees, "--out", next); err != nil {
		t.Fatalf("second build: %v\n%s", err, out)
	}

	out, err = run(t, "pool", "--prior-model", modelPath, "--prior-solution", solPath, "--apply", next)
	if err != nil {
		t.Fatalf("pool: %v\n%s", err, out)
	}
	if !strings.Contains(out, "C1") || !strings.Contains(out, "bertil") {
		t.Fatalf("expected pool table, got:\n%s", out)
	}

	var patched domain.Model
	if err := readJSON(next, &patched); err != nil {
		t.Fatal(err)
	}
	for _, v := range patched.Visits {
		if len(v.AllowedVehicles) != 1 || v.AllowedVehicles[0] != "bertil" {
			t.Fatalf("visit %s allowed = %v", v.ID, v.AllowedVehicles)
		}
	}

	if out, err := run(t, "validate", next, solPath); err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}

	bad := writeFile(t, dir, "bad.json", `{"assignments":[{"visitId":"V1","vehicleId":"ghost"}]}`)
	if _, err := run(t, "validate", next, bad); err == nil {
		t.Fatal("expected validate to reject unknown vehicle")
	}
}

func TestBuildStrict(t *testing.T) {
	dir := t.TempDir()
	visits := writeFile(t, dir, "visits.csv", testVisits+"3,C3,59.3,18.0,weekly,,09:00,0,0,0,\n")

	args := []string{"build", "--visits", visits, "--out", filepath.Join(dir, "model.json")}
	if out, err := run(t, args...); err != nil {
		t.Fatalf("lenient build: %v\n%s", err, out)
	}
	if _, err := run(t, append(args, "--strict")...); err == nil {
		t.Fatal("expected strict build to fail on the rejected row")
	}
}

func TestShiftsICS(t *testing.T) {
	dir := t.TempDir()
	employees := writeFile(t, dir, "employees.csv", testEmployees)

	out, err := run(t, "shifts-ics", "--employees", employees, "--dir", filepath.Join(dir, "cal"))
	if err != nil {
		t.Fatalf("shifts-ics: %v\n%s", err, out)
	}
	if !strings.Contains(out, "anna.ics") || !strings.Contains(out, "bertil.ics") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

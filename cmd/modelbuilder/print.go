package main

import (
	"io"
	"visit-model-service/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
)

func printReport(w io.Writer, runID string, r *services.BuildReport, rowErrors int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("run " + runID)
	tw.AppendHeader(table.Row{"Stage", "Count"})
	tw.AppendRows([]table.Row{
		{"records read", r.RecordsRead},
		{"rows rejected", rowErrors},
		{"inactive skipped", r.InactiveSkipped},
		{"frequency defaulted", r.FrequencyDefaulted},
		{"weekday defaulted", r.WeekdayDefaulted},
		{"period too long", r.PeriodTooLong},
		{"invalid windows", r.InvalidWindows},
		{"occurrences", r.Occurrences},
		{"missing coordinates", r.MissingCoordinates},
		{"geocode calls", r.GeocodeCalls},
		{"geocode cache hits", r.GeocodeCacheHits},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"standalone visits", r.StandaloneVisits},
		{"visit groups", r.VisitGroups},
		{"vehicles", r.Vehicles},
		{"shifts", r.Shifts},
		{"pooled people", r.PooledPeople},
		{"patched visits", r.PatchedVisits},
	})
	tw.Render()

	fatal := r.Fatal()
	if len(fatal) == 0 {
		return
	}
	ft := table.NewWriter()
	ft.SetOutputMirror(w)
	ft.SetTitle("rejected occurrences")
	ft.AppendHeader(table.Row{"Source", "Reason"})
	for _, o := range fatal {
		ft.AppendRow(table.Row{o.SourceID, o.Reason})
	}
	ft.Render()
}

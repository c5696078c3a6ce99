package services

import (
	"testing"
	"visit-model-service/internal/domain"
)

func TestGroupVisits_SameWeekdaySharesGroup(t *testing.T) {
	a := visitRecord("1", "C1", "weekly x2", "måndag", "09:00")
	b := visitRecord("2", "C1", "weekly x2", "måndag", "09:00")
	a.GroupKey, b.GroupKey = "G", "G"

	occs, _ := mustExpand(t, testPlanning(1), a, b)
	standalone, groups := GroupVisits(occs)

	if len(standalone) != 0 {
		t.Fatalf("expected no standalone visits, got %d", len(standalone))
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if len(g.Visits) != 2 {
		t.Fatalf("expected 2 members, got %d", len(g.Visits))
	}
	if g.Visits[0].SourceID != "1" || g.Visits[1].SourceID != "2" {
		t.Fatalf("unexpected members %s, %s", g.Visits[0].SourceID, g.Visits[1].SourceID)
	}
	if !sameDay(g.Visits[0].Date, g.Visits[1].Date) {
		t.Fatal("group members must share a date")
	}
	if g.ID != "G_w0_20260105" {
		t.Fatalf("group id = %q", g.ID)
	}
	if err := ValidateGroups(groups); err != nil {
		t.Fatalf("unexpected overlap error: %v", err)
	}
}

func TestGroupVisits_DifferentWeekdaysStayStandalone(t *testing.T) {
	a := visitRecord("1", "C1", "weekly x2", "måndag", "09:00")
	b := visitRecord("2", "C1", "weekly x2", "tisdag", "09:00")
	a.GroupKey, b.GroupKey = "G", "G"

	occs, _ := mustExpand(t, testPlanning(1), a, b)
	standalone, groups := GroupVisits(occs)

	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
	if len(standalone) != 2 {
		t.Fatalf("expected 2 standalone visits, got %d", len(standalone))
	}
}

func TestGroupVisits_SplitsByWeek(t *testing.T) {
	a := visitRecord("1", "C1", "daily", "onsdag", "09:00")
	b := visitRecord("2", "C1", "daily", "onsdag", "09:00")
	c := visitRecord("3", "C9", "daily", "onsdag", "09:00")
	a.GroupKey, b.GroupKey = "G", "G"

	occs, _ := mustExpand(t, testPlanning(3), a, b, c)
	standalone, groups := GroupVisits(occs)

	if len(groups) != 3 {
		t.Fatalf("expected one group per week, got %d", len(groups))
	}
	for i, g := range groups {
		if len(g.Visits) != 2 {
			t.Fatalf("group %d: expected 2 members, got %d", i, len(g.Visits))
		}
		if g.Visits[0].WeekIndex != i {
			t.Fatalf("group %d: week index %d", i, g.Visits[0].WeekIndex)
		}
	}
	if len(standalone) != 3 {
		t.Fatalf("keyless record should stay standalone, got %d", len(standalone))
	}
	if err := ValidateGroups(groups); err != nil {
		t.Fatalf("unexpected overlap error: %v", err)
	}
}

func TestGroupVisits_NonOverlappingSameDateStayStandalone(t *testing.T) {
	a := visitRecord("1", "C1", "weekly x2", "måndag", "08:00")
	b := visitRecord("2", "C1", "weekly x2", "måndag", "15:00")
	a.GroupKey, b.GroupKey = "G", "G"

	occs, _ := mustExpand(t, testPlanning(1), a, b)
	standalone, groups := GroupVisits(occs)

	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
	if len(standalone) != 2 {
		t.Fatalf("expected 2 standalone visits, got %d", len(standalone))
	}
}

func TestGroupVisits_DaySpecificAndFullPeriodWithoutOverlap(t *testing.T) {
	a := visitRecord("1", "C1", "weekly x2", "måndag", "06:00")
	a.FlexBeforeMinutes, a.FlexAfterMinutes = 0, 0
	b := visitRecord("2", "C1", "weekly", "", "09:00")
	a.GroupKey, b.GroupKey = "G", "G"

	occs, _ := mustExpand(t, testPlanning(1), a, b)
	standalone, groups := GroupVisits(occs)

	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
	if len(standalone) != 2 {
		t.Fatalf("expected 2 standalone visits, got %d", len(standalone))
	}
}

func TestGroupVisits_SplitsBucketIntoOverlappingClusters(t *testing.T) {
	recs := []domain.VisitRecord{
		visitRecord("1", "C1", "weekly x2", "måndag", "09:00"),
		visitRecord("2", "C1", "weekly x2", "måndag", "15:00"),
		visitRecord("3", "C1", "weekly x2", "måndag", "09:10"),
		visitRecord("4", "C1", "weekly x2", "måndag", "15:10"),
		visitRecord("5", "C1", "weekly x2", "måndag", "20:00"),
	}
	for i := range recs {
		recs[i].GroupKey = "G"
	}

	occs, _ := mustExpand(t, testPlanning(1), recs...)
	standalone, groups := GroupVisits(occs)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].ID != "G_w0_20260105" || groups[1].ID != "G_w0_20260105_2" {
		t.Fatalf("group ids = %q, %q", groups[0].ID, groups[1].ID)
	}
	if groups[0].Visits[0].SourceID != "1" || groups[0].Visits[1].SourceID != "3" {
		t.Fatalf("unexpected first group %s, %s", groups[0].Visits[0].SourceID, groups[0].Visits[1].SourceID)
	}
	if len(standalone) != 1 || standalone[0].SourceID != "5" {
		t.Fatalf("expected record 5 standalone, got %+v", standalone)
	}
	if err := ValidateGroups(groups); err != nil {
		t.Fatalf("unexpected overlap error: %v", err)
	}
}

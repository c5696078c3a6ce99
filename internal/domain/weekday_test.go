package domain

import (
	"testing"
	"time"
)

func TestResolveWeekday(t *testing.T) {
	tests := []struct {
		text   string
		want   time.Weekday
		wantOK bool
	}{
		{"Tisdag", time.Tuesday, true},
		{"every Friday morning", time.Friday, true},
		{"mån", time.Monday, true},
		{"Lördag förmiddag", time.Saturday, true},
		{"sön", time.Sunday, true},
		// One weekday per record: the earliest name wins.
		{"Monday and Thursday", time.Monday, true},
		{"torsdag, måndag", time.Thursday, true},
		{"mån, tors", time.Monday, true},
		{"fre och lör", time.Friday, true},
		{"", time.Monday, false},
		{"when convenient", time.Monday, false},
		// Short forms inside free text are ordinary words.
		{"fri parkering, ring på", time.Monday, false},
		{"ring innan, tor är sjuk", time.Monday, false},
		{"sun protection on fredag", time.Friday, true},
	}

	for _, tt := range tests {
		got, ok := ResolveWeekday(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ResolveWeekday(%q) = %s, %v; want %s, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolveWeekdays(t *testing.T) {
	got := ResolveWeekdays("ons, mån och ons; fredag")
	want := []time.Weekday{time.Wednesday, time.Monday, time.Friday}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestResolveWeekdays_ShortFormsOnlyInDayLists(t *testing.T) {
	if got := ResolveWeekdays("tis och tors"); len(got) != 2 || got[0] != time.Tuesday || got[1] != time.Thursday {
		t.Fatalf("day list = %v", got)
	}
	if got := ResolveWeekdays("sat in the sun, torsdag"); len(got) != 1 || got[0] != time.Thursday {
		t.Fatalf("free text = %v", got)
	}
}

package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FrequencyType is the recurrence family of a visit.
type FrequencyType string

const (
	FrequencyDaily    FrequencyType = "daily"
	FrequencyWeekly   FrequencyType = "weekly"
	FrequencyBiweekly FrequencyType = "biweekly"
	Frequency3Weekly  FrequencyType = "3weekly"
	Frequency4Weekly  FrequencyType = "4weekly"
	FrequencyMonthly  FrequencyType = "monthly"
)

// Frequency is the structured form of a recurrence code.
type Frequency struct {
	Type               FrequencyType
	OccurrencesPerWeek int
}

// PeriodWeeks returns the length of one recurrence period in weeks.
// Monthly visits are planned on a four week period.
func (f Frequency) PeriodWeeks() int {
	switch f.Type {
	case FrequencyBiweekly:
		return 2
	case Frequency3Weekly:
		return 3
	case Frequency4Weekly, FrequencyMonthly:
		return 4
	default:
		return 1
	}
}

// DaySpecific reports whether occurrences are pinned to a concrete weekday.
// Everything else gets a window spanning the whole period.
func (f Frequency) DaySpecific() bool {
	switch f.Type {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return f.OccurrencesPerWeek >= 2
	default:
		return false
	}
}

// Code renders a canonical recurrence code that ParseFrequency maps back to f.
func (f Frequency) Code() string {
	if f.Type == FrequencyWeekly {
		return fmt.Sprintf("weekly x%d", f.OccurrencesPerWeek)
	}
	return string(f.Type)
}

func (f Frequency) String() string { return f.Code() }

// Markers are checked in this order; longer and more specific markers come
// before the generic weekly marker.
var (
	dailyMarkers    = []string{"daily", "every day", "dagligen", "varje dag", "dgl"}
	monthlyMarkers  = []string{"monthly", "every month", "per month", "månad", "manad", "månatlig"}
	biweeklyMarkers = []string{"biweekly", "bi-weekly", "every 2nd week", "every second week", "every other week", "every 2 weeks", "every two weeks", "varannan vecka", "var 2:a vecka", "2weekly"}
	every4thMarkers = []string{"every 4th", "every fourth", "every 4 weeks", "every four weeks", "var 4:e", "var fjärde", "4weekly", "4-weekly"}
	every3rdMarkers = []string{"every 3rd", "every third", "every 3 weeks", "every three weeks", "var 3:e", "var tredje", "3weekly", "3-weekly"}
	weeklyMarkers   = []string{"weekly", "week", "vecka", "veckan", "period"}

	// "weekly x3", "weekly ×3", "week*2", "3x/week", "3 ggr/vecka", "3 times per week"
	weeklyTimesAfter  = regexp.MustCompile(`(?:weekly|week|vecka|veckan)\s*(?:x|×|\*)\s*(\d+)`)
	weeklyTimesBefore = regexp.MustCompile(`(\d+)\s*(?:x|×|\*|ggr|gånger|ganger|times)\s*(?:/|per|i|a)?\s*(?:week|vecka|veckan)`)
)

// ParseFrequency classifies a free-text or coded frequency value. It never
// fails: unrecognized or empty input defaults to weekly x1 and ok is false so
// the caller can report the fallback.
func ParseFrequency(code string) (f Frequency, ok bool) {
	s := strings.ToLower(strings.Join(strings.Fields(code), " "))
	if s == "" {
		return Frequency{Type: FrequencyWeekly, OccurrencesPerWeek: 1}, false
	}

	switch {
	case containsAny(s, dailyMarkers):
		return Frequency{Type: FrequencyDaily, OccurrencesPerWeek: 7}, true
	case containsAny(s, monthlyMarkers):
		return Frequency{Type: FrequencyMonthly, OccurrencesPerWeek: 1}, true
	case containsAny(s, biweeklyMarkers):
		return Frequency{Type: FrequencyBiweekly, OccurrencesPerWeek: 1}, true
	case containsAny(s, every4thMarkers):
		return Frequency{Type: Frequency4Weekly, OccurrencesPerWeek: 1}, true
	case containsAny(s, every3rdMarkers):
		return Frequency{Type: Frequency3Weekly, OccurrencesPerWeek: 1}, true
	}

	if n, found := weeklyTimes(s); found {
		return Frequency{Type: FrequencyWeekly, OccurrencesPerWeek: clamp(n, 1, 7)}, true
	}

	if containsAny(s, weeklyMarkers) {
		return Frequency{Type: FrequencyWeekly, OccurrencesPerWeek: 1}, true
	}

	return Frequency{Type: FrequencyWeekly, OccurrencesPerWeek: 1}, false
}

func weeklyTimes(s string) (int, bool) {
	for _, re := range []*regexp.Regexp{weeklyTimesAfter, weeklyTimesBefore} {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

package domain

import (
	"regexp"
	"strings"
	"time"
)

// Short forms such as "fri" or "tor" are also ordinary words, so they only
// count when the text is nothing but a list of days.
var weekdayNames = []struct {
	day   time.Weekday
	names []string
	short []string
}{
	{time.Monday, []string{"monday", "måndag", "mandag"}, []string{"mon", "mån"}},
	{time.Tuesday, []string{"tuesday", "tisdag"}, []string{"tues", "tue", "tis"}},
	{time.Wednesday, []string{"wednesday", "onsdag"}, []string{"wed", "ons"}},
	{time.Thursday, []string{"thursday", "torsdag"}, []string{"thurs", "thu", "tors", "tor"}},
	{time.Friday, []string{"friday", "fredag"}, []string{"fri", "fre"}},
	{time.Saturday, []string{"saturday", "lördag", "lordag"}, []string{"sat", "lör", "lor"}},
	{time.Sunday, []string{"sunday", "söndag", "sondag"}, []string{"sun", "sön"}},
}

var dayListConnectors = map[string]struct{}{
	"och": {}, "and": {}, "samt": {}, "eller": {}, "or": {}, "varje": {}, "every": {},
}

var wordSplit = regexp.MustCompile(`[^\p{L}]+`)

func lookupWeekday(word string, allowShort bool) (time.Weekday, bool) {
	for _, wd := range weekdayNames {
		for _, name := range wd.names {
			if word == name {
				return wd.day, true
			}
		}
		if !allowShort {
			continue
		}
		for _, name := range wd.short {
			if word == name {
				return wd.day, true
			}
		}
	}
	return 0, false
}

// dayWords splits text into words and reports whether every word is a day
// name or a list connector.
func dayWords(text string) (words []string, dayList bool) {
	dayList = true
	for _, w := range wordSplit.Split(strings.ToLower(text), -1) {
		if w == "" {
			continue
		}
		words = append(words, w)
		if _, ok := dayListConnectors[w]; ok {
			continue
		}
		if _, ok := lookupWeekday(w, true); !ok {
			dayList = false
		}
	}
	return words, dayList
}

// ResolveWeekday returns the weekday named earliest in text. Only one weekday
// is resolved per record: "Monday and Thursday" yields Monday. ok is false
// when no weekday name is present.
func ResolveWeekday(text string) (day time.Weekday, ok bool) {
	words, dayList := dayWords(text)
	for _, w := range words {
		if d, found := lookupWeekday(w, dayList); found {
			return d, true
		}
	}
	return time.Monday, false
}

// ResolveWeekdays returns every distinct weekday named in text, in order of
// appearance. Used for employee rows, which may list several working days.
func ResolveWeekdays(text string) []time.Weekday {
	words, dayList := dayWords(text)
	seen := make(map[time.Weekday]struct{}, 7)
	out := make([]time.Weekday, 0, 7)
	for _, w := range words {
		d, ok := lookupWeekday(w, dayList)
		if !ok {
			continue
		}
		if _, dup := seen[d]; !dup {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

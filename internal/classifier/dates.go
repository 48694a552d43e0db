package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DeclarationDate is a future results date parsed from notification text.
type DeclarationDate struct {
	Time   time.Time
	Source string // the matched text
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var monthsByAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	// "9th November 2025", "21st March, 2026"
	ordinalDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December),?\s+(\d{4})`)

	// "09-Nov-2025", "9/Nov/2025", "9 Nov 2025"
	abbrevDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})[-/\s](Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*[-/\s](\d{4})`)

	// "November 9, 2025"
	monthDayPattern = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})`)
)

// ParseDeclarationDate tries the three known date shapes in priority order
// and returns the first successful parse.
func ParseDeclarationDate(text string) (DeclarationDate, bool) {
	if m := ordinalDatePattern.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[1], monthsByName[strings.ToLower(m[2])], m[3]); ok {
			return DeclarationDate{Time: d, Source: m[0]}, true
		}
	}
	if m := abbrevDatePattern.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[1], monthsByAbbrev[strings.ToLower(m[2])], m[3]); ok {
			return DeclarationDate{Time: d, Source: m[0]}, true
		}
	}
	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		if d, ok := buildDate(m[2], monthsByName[strings.ToLower(m[1])], m[3]); ok {
			return DeclarationDate{Time: d, Source: m[0]}, true
		}
	}
	return DeclarationDate{}, false
}

func buildDate(dayStr string, month time.Month, yearStr string) (time.Time, bool) {
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 || month == 0 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject overflow like 31 February.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

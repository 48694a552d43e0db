package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Quarter is a fiscal quarter under the April-March (Indian) fiscal year.
type Quarter string

const (
	QuarterQ1 Quarter = "Q1" // April - June
	QuarterQ2 Quarter = "Q2" // July - September
	QuarterQ3 Quarter = "Q3" // October - December
	QuarterQ4 Quarter = "Q4" // January - March
)

// fiscalYearPattern matches labels like "2025-26".
var fiscalYearPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Valid reports whether q is one of the four fiscal quarters.
func (q Quarter) Valid() bool {
	switch q {
	case QuarterQ1, QuarterQ2, QuarterQ3, QuarterQ4:
		return true
	}
	return false
}

// QuarterForMonth maps a calendar month to its fiscal quarter.
func QuarterForMonth(m time.Month) Quarter {
	switch {
	case m >= time.April && m <= time.June:
		return QuarterQ1
	case m >= time.July && m <= time.September:
		return QuarterQ2
	case m >= time.October && m <= time.December:
		return QuarterQ3
	default:
		return QuarterQ4
	}
}

// FiscalYearForPeriodEnd returns the fiscal year label (e.g. "2025-26") for
// the fiscal year containing the given period-end date.
func FiscalYearForPeriodEnd(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// ParseFiscalYear validates a fiscal year label and returns its starting
// calendar year. Labels whose short suffix does not follow the starting year
// are rejected rather than coerced.
func ParseFiscalYear(label string) (int, error) {
	m := fiscalYearPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("malformed fiscal year label: %q", label)
	}
	start, _ := strconv.Atoi(m[1])
	suffix, _ := strconv.Atoi(m[2])
	if (start+1)%100 != suffix {
		return 0, fmt.Errorf("inconsistent fiscal year label: %q", label)
	}
	return start, nil
}

// PreviousQuarter returns the chronologically preceding quarter. Q1 wraps to
// Q4 of the prior fiscal year.
func PreviousQuarter(q Quarter, fiscalYear string) (Quarter, string, error) {
	start, err := ParseFiscalYear(fiscalYear)
	if err != nil {
		return "", "", err
	}
	switch q {
	case QuarterQ1:
		prior := start - 1
		return QuarterQ4, fmt.Sprintf("%d-%02d", prior, (prior+1)%100), nil
	case QuarterQ2:
		return QuarterQ1, fiscalYear, nil
	case QuarterQ3:
		return QuarterQ2, fiscalYear, nil
	case QuarterQ4:
		return QuarterQ3, fiscalYear, nil
	}
	return "", "", fmt.Errorf("invalid quarter: %q", q)
}

// NextQuarter returns the chronologically following quarter. Q4 wraps to Q1
// of the next fiscal year.
func NextQuarter(q Quarter, fiscalYear string) (Quarter, string, error) {
	start, err := ParseFiscalYear(fiscalYear)
	if err != nil {
		return "", "", err
	}
	switch q {
	case QuarterQ1:
		return QuarterQ2, fiscalYear, nil
	case QuarterQ2:
		return QuarterQ3, fiscalYear, nil
	case QuarterQ3:
		return QuarterQ4, fiscalYear, nil
	case QuarterQ4:
		next := start + 1
		return QuarterQ1, fmt.Sprintf("%d-%02d", next, (next+1)%100), nil
	}
	return "", "", fmt.Errorf("invalid quarter: %q", q)
}

// NextFiscalYear returns the label of the fiscal year after the given one.
func NextFiscalYear(fiscalYear string) (string, error) {
	start, err := ParseFiscalYear(fiscalYear)
	if err != nil {
		return "", err
	}
	next := start + 1
	return fmt.Sprintf("%d-%02d", next, (next+1)%100), nil
}

// PreviousFiscalYear returns the label of the fiscal year before the given one.
func PreviousFiscalYear(fiscalYear string) (string, error) {
	start, err := ParseFiscalYear(fiscalYear)
	if err != nil {
		return "", err
	}
	prior := start - 1
	return fmt.Sprintf("%d-%02d", prior, (prior+1)%100), nil
}

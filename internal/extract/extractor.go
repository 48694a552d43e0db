// Package extract turns filing documents into canonical FinancialMetrics.
// A registry maps known issuers to extractors that encode per-issuer format
// knowledge; unknown issuers fall back to a generic extractor with a broad
// pattern net. A separate XBRL extractor handles machine-readable filings
// and is always preferred by the pipeline when one is attached.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

// ExtractionError reports that no usable metric could be found.
type ExtractionError struct {
	Extractor string
	Missing   []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: no usable metrics extracted (missing: %s)", e.Extractor, strings.Join(e.Missing, ", "))
}

// metricOrder fixes the extraction order so parsing notes are deterministic.
var metricOrder = []string{
	"revenue",
	"net_profit",
	"eps",
	"operating_profit",
	"operating_profit_margin",
	"ebitda",
	"ebitda_margin",
	"total_income",
	"pat_margin",
	"roe",
	"debt",
	"reserves",
}

// numberGroup captures a figure with optional thousands separators and
// decimals, optionally parenthesized (negative by Indian filing convention).
// The opening paren is captured separately so a paren inside a label (e.g.
// "EPS (Basic)") never flips the figure's sign; only the number's own
// enclosure counts.
const numberGroup = `(\()?\s*(-?[0-9][0-9,]*(?:\.[0-9]+)?)\s*\)?`

// patternExtractor extracts metrics by trying ordered regexp candidates per
// metric; the first candidate yielding a numeric match wins.
type patternExtractor struct {
	name     string
	patterns map[string][]*regexp.Regexp
	logger   arbor.ILogger
}

var _ interfaces.MetricsExtractor = (*patternExtractor)(nil)

// ExtractMetrics scans plain document text for each metric's candidates,
// derives the reporting period, completes margins, and validates the result.
func (e *patternExtractor) ExtractMetrics(text string) (*models.FinancialMetrics, error) {
	normalized := normalizeText(text)
	metrics := &models.FinancialMetrics{}

	for _, metric := range metricOrder {
		candidates := e.patterns[metric]
		for i, pattern := range candidates {
			m := pattern.FindStringSubmatch(normalized)
			if m == nil {
				continue
			}
			parenthesized := len(m) >= 3 && m[len(m)-2] == "("
			value, ok := cleanNumeric(m[len(m)-1], parenthesized)
			if !ok {
				continue
			}
			setMetric(metrics, metric, value)
			metrics.AddNote("%s: matched %q (pattern %d/%d)", metric, truncate(m[0], 60), i+1, len(candidates))
			break
		}
	}

	metrics.ResultType = detectResultType(normalized)
	if periodEnd, ok := parsePeriodEnded(normalized); ok {
		metrics.PeriodEnded = periodEnd.Format("2006-01-02")
		metrics.Quarter = models.QuarterForMonth(periodEnd.Month())
		metrics.FiscalYear = models.FiscalYearForPeriodEnd(periodEnd)
	}

	metrics.CompleteMargins()

	if !metrics.Usable() {
		e.logger.Debug().
			Str("extractor", e.name).
			Strs("missing", metrics.MissingCoreFields()).
			Msg("Extraction produced no usable metrics")
		return nil, &ExtractionError{Extractor: e.name, Missing: metrics.MissingCoreFields()}
	}

	return metrics, nil
}

func setMetric(m *models.FinancialMetrics, metric, value string) {
	switch metric {
	case "revenue":
		m.Revenue = value
	case "net_profit":
		m.NetProfit = value
	case "eps":
		m.EPS = value
	case "operating_profit":
		m.OperatingProfit = value
	case "operating_profit_margin":
		m.OperatingProfitMargin = value
	case "ebitda":
		m.EBITDA = value
	case "ebitda_margin":
		m.EBITDAMargin = value
	case "total_income":
		m.TotalIncome = value
	case "pat_margin":
		m.PATMargin = value
	case "roe":
		m.ROE = value
	case "debt":
		m.Debt = value
	case "reserves":
		m.Reserves = value
	}
}

// cleanNumeric strips thousands separators and validates the figure.
// Parenthesized figures are negative by convention.
func cleanNumeric(raw string, parenthesized bool) (string, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if _, ok := models.ParseNumeric(cleaned); !ok {
		return "", false
	}
	if parenthesized && !strings.HasPrefix(cleaned, "-") {
		cleaned = "-" + cleaned
	}
	return cleaned, true
}

// normalizeText collapses whitespace so table layouts flatten into single
// lines the patterns can traverse.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func detectResultType(text string) models.ResultType {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "consolidated") && !strings.Contains(lower, "standalone") {
		return models.ResultTypeConsolidated
	}
	return models.ResultTypeStandalone
}

var periodEndedPatterns = []*regexp.Regexp{
	// "quarter ended 30th June 2025", "period ended 30 June, 2025"
	regexp.MustCompile(`(?i)(?:quarter|period|three months)\s+(?:and\s+[a-z\s]+\s+)?ended\s+(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December),?\s+(\d{4})`),
	// "quarter ended June 30, 2025"
	regexp.MustCompile(`(?i)(?:quarter|period|three months)\s+(?:and\s+[a-z\s]+\s+)?ended\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})`),
}

var monthByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// parsePeriodEnded locates the reporting period-end date in the document.
func parsePeriodEnded(text string) (time.Time, bool) {
	if m := periodEndedPatterns[0].FindStringSubmatch(text); m != nil {
		return buildPeriodDate(m[1], m[2], m[3])
	}
	if m := periodEndedPatterns[1].FindStringSubmatch(text); m != nil {
		return buildPeriodDate(m[2], m[1], m[3])
	}
	return time.Time{}, false
}

func buildPeriodDate(dayStr, monthStr, yearStr string) (time.Time, bool) {
	month, ok := monthByName[strings.ToLower(monthStr)]
	if !ok {
		return time.Time{}, false
	}
	var day, year int
	if _, err := fmt.Sscanf(dayStr, "%d", &day); err != nil {
		return time.Time{}, false
	}
	if _, err := fmt.Sscanf(yearStr, "%d", &year); err != nil {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// Registry maps issuer symbols to their extractors. Unknown symbols get the
// generic fallback.
type Registry struct {
	extractors map[string]interfaces.MetricsExtractor
	fallback   interfaces.MetricsExtractor
}

// NewRegistry builds the registry with all known issuer extractors wired.
func NewRegistry(logger arbor.ILogger) *Registry {
	r := &Registry{
		extractors: make(map[string]interfaces.MetricsExtractor),
		fallback:   NewGenericExtractor(logger),
	}
	r.Register("RELIANCE", newRelianceExtractor(logger))
	r.Register("TCS", newTCSExtractor(logger))
	r.Register("HDFCBANK", newHDFCBankExtractor(logger))
	return r
}

// Register adds or replaces the extractor for a symbol.
func (r *Registry) Register(symbol string, extractor interfaces.MetricsExtractor) {
	r.extractors[strings.ToUpper(symbol)] = extractor
}

// ForSymbol returns the issuer-specific extractor, or the generic fallback
// for unknown symbols.
func (r *Registry) ForSymbol(symbol string) interfaces.MetricsExtractor {
	if e, ok := r.extractors[strings.ToUpper(symbol)]; ok {
		return e
	}
	return r.fallback
}

package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ResultType distinguishes standalone from consolidated filings.
type ResultType string

const (
	ResultTypeStandalone   ResultType = "standalone"
	ResultTypeConsolidated ResultType = "consolidated"
)

// FinancialMetrics is the canonical record produced by every extractor.
// Figures are kept as the text matched in the source document (thousands
// separators stripped); empty string means the metric was not found.
type FinancialMetrics struct {
	Revenue               string `json:"revenue,omitempty"`
	NetProfit             string `json:"net_profit,omitempty"`
	EPS                   string `json:"eps,omitempty"`
	OperatingProfit       string `json:"operating_profit,omitempty"`
	OperatingProfitMargin string `json:"operating_profit_margin,omitempty"`
	EBITDA                string `json:"ebitda,omitempty"`
	EBITDAMargin          string `json:"ebitda_margin,omitempty"`
	TotalIncome           string `json:"total_income,omitempty"`
	PATMargin             string `json:"pat_margin,omitempty"`
	ROE                   string `json:"roe,omitempty"`
	Debt                  string `json:"debt,omitempty"`
	Reserves              string `json:"reserves,omitempty"`

	Quarter     Quarter    `json:"quarter,omitempty"`
	FiscalYear  string     `json:"fiscal_year,omitempty"`
	PeriodEnded string     `json:"period_ended,omitempty"` // YYYY-MM-DD
	ResultType  ResultType `json:"result_type,omitempty"`

	ParsingNotes []string `json:"parsing_notes,omitempty"`
}

// ParseNumeric converts a matched figure to a float64, stripping thousands
// separators. Returns false for empty or non-numeric text.
func ParseNumeric(s string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompleteMargins derives missing margin fields from raw figures. Stored
// margins are always the computed two-decimal value, even when the source
// document shows a margin rounded to a whole percentage.
func (m *FinancialMetrics) CompleteMargins() {
	revenue, ok := ParseNumeric(m.Revenue)
	if !ok || revenue == 0 {
		return
	}
	if m.OperatingProfitMargin == "" {
		if op, ok := ParseNumeric(m.OperatingProfit); ok {
			m.OperatingProfitMargin = formatFloat(Round2(op / revenue * 100))
		}
	}
	if m.EBITDAMargin == "" {
		if eb, ok := ParseNumeric(m.EBITDA); ok {
			m.EBITDAMargin = formatFloat(Round2(eb / revenue * 100))
		}
	}
	if m.PATMargin == "" {
		if np, ok := ParseNumeric(m.NetProfit); ok {
			m.PATMargin = formatFloat(Round2(np / revenue * 100))
		}
	}
}

// MissingCoreFields lists which of the core metrics are absent. A record is
// usable only when at least one core metric was extracted.
func (m *FinancialMetrics) MissingCoreFields() []string {
	var missing []string
	if m.Revenue == "" {
		missing = append(missing, "revenue")
	}
	if m.NetProfit == "" {
		missing = append(missing, "net_profit")
	}
	if m.EPS == "" {
		missing = append(missing, "eps")
	}
	if m.OperatingProfit == "" {
		missing = append(missing, "operating_profit")
	}
	return missing
}

// Usable reports whether the record carries at least one core metric.
func (m *FinancialMetrics) Usable() bool {
	return len(m.MissingCoreFields()) < 4
}

// AddNote appends a diagnostic parsing note.
func (m *FinancialMetrics) AddNote(format string, args ...interface{}) {
	m.ParsingNotes = append(m.ParsingNotes, fmt.Sprintf(format, args...))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

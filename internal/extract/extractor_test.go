package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/models"
)

const genericFilingText = `
Statement of Unaudited Financial Results for the quarter ended 30th June 2025
(Rs. in crore, except per share data)

Revenue from Operations                65,799.00
Total Income                           66,120.50
Operating Profit                       11,000.00
Operating Profit Margin                    16.72 %
EBITDA                                 18,000.00
Profit for the quarter                  9,000.00
Basic EPS                                  13.45
Total Debt                             12,500.00
`

func TestGenericExtractor(t *testing.T) {
	e := NewGenericExtractor(arbor.NewLogger())

	m, err := e.ExtractMetrics(genericFilingText)
	require.NoError(t, err)

	assert.Equal(t, "65799.00", m.Revenue)
	assert.Equal(t, "66120.50", m.TotalIncome)
	assert.Equal(t, "11000.00", m.OperatingProfit)
	assert.Equal(t, "16.72", m.OperatingProfitMargin)
	assert.Equal(t, "18000.00", m.EBITDA)
	assert.Equal(t, "9000.00", m.NetProfit)
	assert.Equal(t, "13.45", m.EPS)
	assert.Equal(t, "12500.00", m.Debt)

	assert.Equal(t, "2025-06-30", m.PeriodEnded)
	assert.Equal(t, models.QuarterQ1, m.Quarter)
	assert.Equal(t, "2025-26", m.FiscalYear)
	assert.NotEmpty(t, m.ParsingNotes)
}

func TestGenericExtractor_MarginNotSwallowedByProfit(t *testing.T) {
	// "Operating Profit" must not capture the margin row's percentage when
	// the profit row itself carries no figure nearby.
	text := `quarter ended June 30, 2025
Operating Profit Margin 17.50 %
Net Profit 1,200`

	e := NewGenericExtractor(arbor.NewLogger())
	m, err := e.ExtractMetrics(text)
	require.NoError(t, err)

	assert.Empty(t, m.OperatingProfit)
	assert.Equal(t, "17.50", m.OperatingProfitMargin)
	assert.Equal(t, "1200", m.NetProfit)
}

func TestGenericExtractor_ParenthesizedNegative(t *testing.T) {
	text := `quarter ended 31st December 2025
Revenue from Operations 5,000
Net Profit for the period (250.75)`

	e := NewGenericExtractor(arbor.NewLogger())
	m, err := e.ExtractMetrics(text)
	require.NoError(t, err)

	assert.Equal(t, "-250.75", m.NetProfit)
	assert.Equal(t, models.QuarterQ3, m.Quarter)
	assert.Equal(t, "2025-26", m.FiscalYear)
}

func TestGenericExtractor_ParenthesizedLabelKeepsSign(t *testing.T) {
	// A paren belonging to the label ("(Basic)") must not negate the figure;
	// only parens around the number itself mark a loss.
	text := `quarter ended 30th June 2025
Revenue from Operations 5,000
Earnings Per Share (Basic) 12.50`

	e := NewGenericExtractor(arbor.NewLogger())
	m, err := e.ExtractMetrics(text)
	require.NoError(t, err)

	assert.Equal(t, "12.50", m.EPS)
}

func TestRelianceExtractor_ParenthesizedLabelKeepsSign(t *testing.T) {
	text := `quarter ended 30th June 2025
Gross Revenue 2,000
Earnings Per Share (Basic) 8.15`

	e := newRelianceExtractor(arbor.NewLogger())
	m, err := e.ExtractMetrics(text)
	require.NoError(t, err)

	assert.Equal(t, "8.15", m.EPS)
}

func TestGenericExtractor_ComputedMarginBeatsDisplayRounding(t *testing.T) {
	// The document shows no margin row; the stored margin is the computed
	// two-decimal value.
	text := `quarter ended 30th September 2025
Revenue from Operations 65,799
Operating Profit 11,000`

	e := NewGenericExtractor(arbor.NewLogger())
	m, err := e.ExtractMetrics(text)
	require.NoError(t, err)

	assert.Equal(t, "16.72", m.OperatingProfitMargin)
}

func TestGenericExtractor_NoUsableMetrics(t *testing.T) {
	e := NewGenericExtractor(arbor.NewLogger())

	_, err := e.ExtractMetrics("General updates regarding plant maintenance schedule")
	require.Error(t, err)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "generic", extractErr.Extractor)
	assert.Len(t, extractErr.Missing, 4)
}

func TestGenericExtractor_ConsolidatedDetection(t *testing.T) {
	e := NewGenericExtractor(arbor.NewLogger())

	m, err := e.ExtractMetrics("Consolidated results: Revenue from Operations 1,000 and Net Profit 100")
	require.NoError(t, err)
	assert.Equal(t, models.ResultTypeConsolidated, m.ResultType)

	m, err = e.ExtractMetrics("Standalone and consolidated: Revenue from Operations 1,000 Net Profit 100")
	require.NoError(t, err)
	assert.Equal(t, models.ResultTypeStandalone, m.ResultType)
}

func TestRelianceExtractor_IssuerLabels(t *testing.T) {
	text := `quarter ended 30th June 2025
Value of Sales & Services 2,31,132
EBITDA 42,748
Profit for the quarter 17,955
Basic EPS 13.27`

	e := newRelianceExtractor(arbor.NewLogger())
	m, err := e.ExtractMetrics(text)
	require.NoError(t, err)

	assert.Equal(t, "231132", m.Revenue)
	assert.Equal(t, "42748", m.EBITDA)
	assert.Equal(t, "17955", m.NetProfit)
	assert.Equal(t, "13.27", m.EPS)
}

func TestRegistry_ForSymbol(t *testing.T) {
	r := NewRegistry(arbor.NewLogger())

	assert.NotNil(t, r.ForSymbol("RELIANCE"))
	assert.NotNil(t, r.ForSymbol("reliance"))

	// Unknown symbols fall back to the generic extractor.
	unknown := r.ForSymbol("NOSUCHCO")
	assert.Same(t, r.fallback, unknown)
}

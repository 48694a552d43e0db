package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

// fakeResultsStorage is an in-memory ResultsStorage keyed like the real one.
type fakeResultsStorage struct {
	rows map[string]*models.QuarterlyResult
}

func newFakeResultsStorage() *fakeResultsStorage {
	return &fakeResultsStorage{rows: make(map[string]*models.QuarterlyResult)}
}

func (f *fakeResultsStorage) GetQuarterlyResultsByQuarter(stockID string, quarter models.Quarter, fiscalYear string) (*models.QuarterlyResult, error) {
	row, ok := f.rows[models.QuarterlyResultID(stockID, quarter, fiscalYear)]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeResultsStorage) UpsertQuarterlyResults(result *models.QuarterlyResult) error {
	copied := *result
	f.rows[result.ID] = &copied
	return nil
}

func metricsFor(q models.Quarter, fy, revenue, netProfit string) *models.FinancialMetrics {
	return &models.FinancialMetrics{
		Quarter:    q,
		FiscalYear: fy,
		Revenue:    revenue,
		NetProfit:  netProfit,
	}
}

func TestEngine_QoQPercentage(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	_, err := engine.CalculateQuarterlyComparisons("stock-1", "RELIANCE",
		metricsFor(models.QuarterQ1, "2025-26", "63437", "16011"))
	require.NoError(t, err)

	result, err := engine.CalculateQuarterlyComparisons("stock-1", "RELIANCE",
		metricsFor(models.QuarterQ2, "2025-26", "65799", "16563"))
	require.NoError(t, err)

	require.NotNil(t, result.RevenueQoQ)
	assert.Equal(t, 3.72, *result.RevenueQoQ)
	require.NotNil(t, result.PrevRevenue)
	assert.Equal(t, 63437.0, *result.PrevRevenue)

	require.NotNil(t, result.NetProfitQoQ)
	assert.Equal(t, 3.45, *result.NetProfitQoQ)

	// No year-ago quarter stored.
	assert.Nil(t, result.RevenueYoY)
	assert.Nil(t, result.YearAgoRevenue)
}

func TestEngine_YoYPercentage(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	_, err := engine.CalculateQuarterlyComparisons("stock-1", "TCS",
		metricsFor(models.QuarterQ2, "2024-25", "60000", "11000"))
	require.NoError(t, err)

	result, err := engine.CalculateQuarterlyComparisons("stock-1", "TCS",
		metricsFor(models.QuarterQ2, "2025-26", "66000", "12100"))
	require.NoError(t, err)

	require.NotNil(t, result.RevenueYoY)
	assert.Equal(t, 10.0, *result.RevenueYoY)
	require.NotNil(t, result.NetProfitYoY)
	assert.Equal(t, 10.0, *result.NetProfitYoY)
	assert.Nil(t, result.RevenueQoQ)
}

func TestEngine_MarginDeltaIsPointDifference(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	prev := metricsFor(models.QuarterQ1, "2025-26", "1000", "100")
	prev.OperatingProfitMargin = "15.00"
	_, err := engine.CalculateQuarterlyComparisons("stock-1", "INFY", prev)
	require.NoError(t, err)

	cur := metricsFor(models.QuarterQ2, "2025-26", "1100", "120")
	cur.OperatingProfitMargin = "17.25"
	result, err := engine.CalculateQuarterlyComparisons("stock-1", "INFY", cur)
	require.NoError(t, err)

	require.NotNil(t, result.OperatingMarginQoQ)
	assert.Equal(t, 2.25, *result.OperatingMarginQoQ)
}

func TestEngine_ZeroBaseYieldsNilDelta(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	prev := metricsFor(models.QuarterQ1, "2025-26", "1000", "0")
	_, err := engine.CalculateQuarterlyComparisons("stock-1", "ZEEL", prev)
	require.NoError(t, err)

	cur := metricsFor(models.QuarterQ2, "2025-26", "1100", "50")
	result, err := engine.CalculateQuarterlyComparisons("stock-1", "ZEEL", cur)
	require.NoError(t, err)

	assert.Nil(t, result.NetProfitQoQ, "division by zero base must yield nil, not Inf")
	require.NotNil(t, result.RevenueQoQ)
	assert.Equal(t, 10.0, *result.RevenueQoQ)
}

func TestEngine_BackfillsSiblingOnLateArrival(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	// Q2 arrives first, so its QoQ is empty.
	result, err := engine.CalculateQuarterlyComparisons("stock-1", "WIPRO",
		metricsFor(models.QuarterQ2, "2025-26", "65799", "8000"))
	require.NoError(t, err)
	assert.Nil(t, result.RevenueQoQ)

	// Q1 lands late; the stored Q2 row gets its QoQ filled in.
	_, err = engine.CalculateQuarterlyComparisons("stock-1", "WIPRO",
		metricsFor(models.QuarterQ1, "2025-26", "63437", "7500"))
	require.NoError(t, err)

	q2, err := storage.GetQuarterlyResultsByQuarter("stock-1", models.QuarterQ2, "2025-26")
	require.NoError(t, err)
	require.NotNil(t, q2.RevenueQoQ)
	assert.Equal(t, 3.72, *q2.RevenueQoQ)
}

func TestEngine_BackfillsYearAgoSibling(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	_, err := engine.CalculateQuarterlyComparisons("stock-1", "ITC",
		metricsFor(models.QuarterQ3, "2025-26", "22000", "5500"))
	require.NoError(t, err)

	_, err = engine.CalculateQuarterlyComparisons("stock-1", "ITC",
		metricsFor(models.QuarterQ3, "2024-25", "20000", "5000"))
	require.NoError(t, err)

	current, err := storage.GetQuarterlyResultsByQuarter("stock-1", models.QuarterQ3, "2025-26")
	require.NoError(t, err)
	require.NotNil(t, current.RevenueYoY)
	assert.Equal(t, 10.0, *current.RevenueYoY)
}

func TestEngine_UpsertIsIdempotent(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	m := metricsFor(models.QuarterQ1, "2025-26", "1000", "100")
	first, err := engine.CalculateQuarterlyComparisons("stock-1", "SBIN", m)
	require.NoError(t, err)

	second, err := engine.CalculateQuarterlyComparisons("stock-1", "SBIN", m)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, storage.rows, 1)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestEngine_RejectsMalformedMetrics(t *testing.T) {
	storage := newFakeResultsStorage()
	engine := NewEngine(storage, arbor.NewLogger())

	tests := []struct {
		name    string
		metrics *models.FinancialMetrics
	}{
		{"Invalid Quarter", metricsFor("Q5", "2025-26", "1000", "100")},
		{"Malformed Fiscal Year", metricsFor(models.QuarterQ1, "2025-27", "1000", "100")},
		{"No Core Metrics", &models.FinancialMetrics{Quarter: models.QuarterQ1, FiscalYear: "2025-26"}},
		{"Negative Revenue", metricsFor(models.QuarterQ1, "2025-26", "-500", "100")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CalculateQuarterlyComparisons("stock-1", "TEST", tt.metrics)
			assert.Error(t, err)
		})
	}
	assert.Empty(t, storage.rows)
}

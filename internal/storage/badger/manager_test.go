package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/common"
	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: t.TempDir() + "/db",
	})
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestStockStorage_CreateAndLookup(t *testing.T) {
	m := newTestManager(t)

	_, err := m.GetStockBySymbol("RELIANCE")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	stock := &models.Stock{Symbol: "RELIANCE", CompanyName: "Reliance Industries Limited"}
	require.NoError(t, m.CreateStock(stock))
	assert.NotEmpty(t, stock.ID)

	got, err := m.GetStockBySymbol("RELIANCE")
	require.NoError(t, err)
	assert.Equal(t, stock.ID, got.ID)
	assert.Equal(t, "Reliance Industries Limited", got.CompanyName)
}

func TestCalendarStorage_KeyedByStockAndDay(t *testing.T) {
	m := newTestManager(t)

	date := time.Date(2025, time.November, 9, 14, 30, 0, 0, time.UTC)
	entry := &models.CalendarEntry{
		StockID:          "stock-1",
		Symbol:           "TCS",
		AnnouncementDate: date,
		Status:           models.CalendarWaiting,
	}
	require.NoError(t, m.CreateResultsCalendar(entry))

	// Lookup at a different time on the same day finds the entry.
	sameDay := time.Date(2025, time.November, 9, 18, 0, 0, 0, time.UTC)
	got, err := m.GetResultsCalendarByStockAndDate("stock-1", sameDay)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	_, err = m.GetResultsCalendarByStockAndDate("stock-1", date.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	got.Status = models.CalendarReady
	require.NoError(t, m.UpdateResultsCalendar(got))

	updated, err := m.GetResultsCalendarByStockAndDate("stock-1", date)
	require.NoError(t, err)
	assert.Equal(t, models.CalendarReady, updated.Status)
}

func TestResultsStorage_UpsertOverwrites(t *testing.T) {
	m := newTestManager(t)

	result := &models.QuarterlyResult{
		StockID:    "stock-1",
		Symbol:     "INFY",
		Quarter:    models.QuarterQ2,
		FiscalYear: "2025-26",
		Metrics:    models.FinancialMetrics{Revenue: "40000"},
	}
	require.NoError(t, m.UpsertQuarterlyResults(result))

	result.Metrics.Revenue = "41000"
	require.NoError(t, m.UpsertQuarterlyResults(result))

	got, err := m.GetQuarterlyResultsByQuarter("stock-1", models.QuarterQ2, "2025-26")
	require.NoError(t, err)
	assert.Equal(t, "41000", got.Metrics.Revenue)

	_, err = m.GetQuarterlyResultsByQuarter("stock-1", models.QuarterQ3, "2025-26")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

package interfaces

import (
	"errors"
	"time"

	"github.com/ternarybob/quartermaster/internal/models"
)

// ErrNotFound is returned by lookups when no row exists for the given key.
var ErrNotFound = errors.New("not found")

// StockStorage manages issuer records.
type StockStorage interface {
	GetStockBySymbol(symbol string) (*models.Stock, error)
	CreateStock(stock *models.Stock) error
}

// CalendarStorage manages results calendar entries, keyed by stock and
// announcement date.
type CalendarStorage interface {
	GetResultsCalendarByStockAndDate(stockID string, date time.Time) (*models.CalendarEntry, error)
	CreateResultsCalendar(entry *models.CalendarEntry) error
	UpdateResultsCalendar(entry *models.CalendarEntry) error
}

// ResultsStorage manages persisted quarterly results.
type ResultsStorage interface {
	GetQuarterlyResultsByQuarter(stockID string, quarter models.Quarter, fiscalYear string) (*models.QuarterlyResult, error)
	UpsertQuarterlyResults(result *models.QuarterlyResult) error
}

// Storage is the narrow persistence contract consumed by the pipeline.
// Schema management and query optimization live behind it.
type Storage interface {
	StockStorage
	CalendarStorage
	ResultsStorage
}

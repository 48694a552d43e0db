package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

// ResultsStorage implements the ResultsStorage interface for Badger.
type ResultsStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewResultsStorage creates a new ResultsStorage instance.
func NewResultsStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ResultsStorage {
	return &ResultsStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ResultsStorage) GetQuarterlyResultsByQuarter(stockID string, quarter models.Quarter, fiscalYear string) (*models.QuarterlyResult, error) {
	var result models.QuarterlyResult
	id := models.QuarterlyResultID(stockID, quarter, fiscalYear)
	if err := s.db.Store().Get(id, &result); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quarterly result: %w", err)
	}
	return &result, nil
}

func (s *ResultsStorage) UpsertQuarterlyResults(result *models.QuarterlyResult) error {
	if result.StockID == "" {
		return fmt.Errorf("result stock ID is required")
	}
	if result.ID == "" {
		result.ID = models.QuarterlyResultID(result.StockID, result.Quarter, result.FiscalYear)
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	if err := s.db.Store().Upsert(result.ID, result); err != nil {
		return fmt.Errorf("failed to upsert quarterly result: %w", err)
	}

	s.logger.Debug().
		Str("symbol", result.Symbol).
		Str("quarter", string(result.Quarter)).
		Str("fiscal_year", result.FiscalYear).
		Msg("Quarterly result stored")
	return nil
}

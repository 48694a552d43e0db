package badger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

// StockStorage implements the StockStorage interface for Badger.
type StockStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewStockStorage creates a new StockStorage instance.
func NewStockStorage(db *BadgerDB, logger arbor.ILogger) interfaces.StockStorage {
	return &StockStorage{
		db:     db,
		logger: logger,
	}
}

func (s *StockStorage) GetStockBySymbol(symbol string) (*models.Stock, error) {
	var stocks []models.Stock
	if err := s.db.Store().Find(&stocks, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")); err != nil {
		return nil, fmt.Errorf("failed to query stock by symbol: %w", err)
	}
	if len(stocks) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &stocks[0], nil
}

func (s *StockStorage) CreateStock(stock *models.Stock) error {
	if stock.Symbol == "" {
		return fmt.Errorf("stock symbol is required")
	}
	if stock.ID == "" {
		stock.ID = uuid.New().String()
	}
	if stock.CreatedAt.IsZero() {
		stock.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Insert(stock.ID, stock); err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}

	s.logger.Debug().Str("symbol", stock.Symbol).Str("id", stock.ID).Msg("Stock created")
	return nil
}

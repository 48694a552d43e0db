package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/common"
	"github.com/ternarybob/quartermaster/internal/interfaces"
)

// Manager bundles the typed storages over one Badger connection and
// satisfies the full Storage contract.
type Manager struct {
	interfaces.StockStorage
	interfaces.CalendarStorage
	interfaces.ResultsStorage

	db *BadgerDB
}

var _ interfaces.Storage = (*Manager)(nil)

// NewManager opens the database and wires up all typed storages.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		StockStorage:    NewStockStorage(db, logger),
		CalendarStorage: NewCalendarStorage(db, logger),
		ResultsStorage:  NewResultsStorage(db, logger),
		db:              db,
	}, nil
}

// Close releases the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}

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

// CalendarStorage implements the CalendarStorage interface for Badger.
// Entries are keyed by stock and announcement day, so one stock gets at most
// one entry per day regardless of how many passes sight the announcement.
type CalendarStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCalendarStorage creates a new CalendarStorage instance.
func NewCalendarStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CalendarStorage {
	return &CalendarStorage{
		db:     db,
		logger: logger,
	}
}

func calendarEntryID(stockID string, date time.Time) string {
	return fmt.Sprintf("%s:%s", stockID, date.UTC().Format("2006-01-02"))
}

func (s *CalendarStorage) GetResultsCalendarByStockAndDate(stockID string, date time.Time) (*models.CalendarEntry, error) {
	var entry models.CalendarEntry
	if err := s.db.Store().Get(calendarEntryID(stockID, date), &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get calendar entry: %w", err)
	}
	return &entry, nil
}

func (s *CalendarStorage) CreateResultsCalendar(entry *models.CalendarEntry) error {
	if entry.StockID == "" {
		return fmt.Errorf("calendar entry stock ID is required")
	}
	if entry.ID == "" {
		entry.ID = calendarEntryID(entry.StockID, entry.AnnouncementDate)
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	if err := s.db.Store().Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to create calendar entry: %w", err)
	}

	s.logger.Debug().
		Str("symbol", entry.Symbol).
		Str("status", string(entry.Status)).
		Str("id", entry.ID).
		Msg("Calendar entry created")
	return nil
}

func (s *CalendarStorage) UpdateResultsCalendar(entry *models.CalendarEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("calendar entry ID is required")
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Update(entry.ID, entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrNotFound
		}
		return fmt.Errorf("failed to update calendar entry: %w", err)
	}
	return nil
}

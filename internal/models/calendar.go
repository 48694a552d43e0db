package models

import "time"

// CalendarStatus tracks the lifecycle of a results announcement.
type CalendarStatus string

const (
	// CalendarWaiting means results are expected but not yet extracted
	// (date notification, or extraction failed and is eligible for retry).
	CalendarWaiting CalendarStatus = "waiting"

	// CalendarReceived means a results announcement has been sighted and
	// extraction is in progress.
	CalendarReceived CalendarStatus = "received"

	// CalendarReady means metrics were extracted and comparisons stored.
	CalendarReady CalendarStatus = "ready"
)

// CalendarEntry records the announcement lifecycle per stock and announcement
// date. Entries are created on first sighting and updated as extraction
// proceeds; the pipeline never deletes them.
type CalendarEntry struct {
	ID               string         `badgerhold:"key" json:"id"`
	StockID          string         `badgerholdIndex:"StockID" json:"stock_id"`
	Symbol           string         `json:"symbol"`
	AnnouncementDate time.Time      `json:"announcement_date"`
	Subject          string         `json:"subject"`
	Status           CalendarStatus `json:"status"`

	ClassificationType   string `json:"classification_type"`
	ClassificationScore  int    `json:"classification_score"`
	ClassificationReason string `json:"classification_reason"`

	// ResultDeclarationDate is the future results date parsed from a
	// notification announcement, when one was found.
	ResultDeclarationDate *time.Time `json:"result_declaration_date,omitempty"`

	XBRLURL        string `json:"xbrl_url,omitempty"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	DownloadFailed bool   `json:"download_failed"`

	Quarter    Quarter `json:"quarter,omitempty"`
	FiscalYear string  `json:"fiscal_year,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

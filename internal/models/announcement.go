package models

import (
	"encoding/gob"
	"time"
)

func init() {
	// Register persisted types with gob for BadgerDB serialization
	gob.Register(Stock{})
	gob.Register(CalendarEntry{})
	gob.Register(QuarterlyResult{})
	gob.Register(FinancialMetrics{})
}

// Announcement is a single corporate filing event as published by the
// exchange, normalized from whichever field aliases the upstream payload
// carried. It exists only for the duration of an ingestion pass.
type Announcement struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`

	// HasXBRL indicates a machine-readable filing is attached.
	HasXBRL       bool   `json:"has_xbrl"`
	XBRLURL       string `json:"xbrl_url,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// Stock is the minimal entity record the pipeline maintains for each issuer.
type Stock struct {
	ID          string    `badgerhold:"key" json:"id"`
	Symbol      string    `badgerholdIndex:"Symbol" json:"symbol"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Package pipeline orchestrates one ingestion pass: fetch announcements,
// classify them, extract metrics from filings, and store comparisons. Each
// announcement is processed independently; one bad filing never aborts the
// pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/classifier"
	"github.com/ternarybob/quartermaster/internal/common"
	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

// filingExtractor parses a machine-readable filing payload.
type filingExtractor interface {
	ExtractFiling(data []byte) (*models.FinancialMetrics, error)
}

// extractorRegistry resolves the text extractor for an issuer symbol.
type extractorRegistry interface {
	ForSymbol(symbol string) interfaces.MetricsExtractor
}

// comparator derives and persists comparison figures for extracted metrics.
type comparator interface {
	CalculateQuarterlyComparisons(stockID, symbol string, metrics *models.FinancialMetrics) (*models.QuarterlyResult, error)
}

// Orchestrator drives the ingestion pass over its collaborators.
type Orchestrator struct {
	source     interfaces.AnnouncementSource
	downloader interfaces.BinaryDownloader
	storage    interfaces.Storage
	registry   extractorRegistry
	filing     filingExtractor
	converter  interfaces.DocumentConverter
	engine     comparator
	logger     arbor.ILogger

	lookbackDays int
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(
	source interfaces.AnnouncementSource,
	downloader interfaces.BinaryDownloader,
	storage interfaces.Storage,
	registry extractorRegistry,
	filing filingExtractor,
	converter interfaces.DocumentConverter,
	engine comparator,
	cfg common.PipelineConfig,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		source:       source,
		downloader:   downloader,
		storage:      storage,
		registry:     registry,
		filing:       filing,
		converter:    converter,
		engine:       engine,
		logger:       logger,
		lookbackDays: cfg.LookbackDays,
	}
}

// RunIngestionPass fetches the lookback window and processes every
// announcement in it. Returns the number of quarterly results newly stored
// this pass.
func (o *Orchestrator) RunIngestionPass(ctx context.Context) (int, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -o.lookbackDays)

	announcements, err := o.source.FetchAnnouncements(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch announcements: %w", err)
	}

	o.logger.Info().
		Int("count", len(announcements)).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Ingestion pass started")

	seen := make(map[string]bool)
	stored := 0

	for _, ann := range announcements {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		// Subject is part of the identity: a results filing and an
		// earnings-call invite routinely share symbol and date.
		key := ann.Symbol + ":" + ann.Date.UTC().Format("2006-01-02") + ":" + strings.ToLower(ann.Subject)
		if seen[key] {
			continue
		}
		seen[key] = true

		ok, err := o.processAnnouncement(ctx, ann)
		if err != nil {
			o.logger.Warn().
				Err(err).
				Str("symbol", ann.Symbol).
				Str("subject", ann.Subject).
				Msg("Announcement processing failed, continuing pass")
			continue
		}
		if ok {
			stored++
		}
	}

	o.logger.Info().Int("stored", stored).Msg("Ingestion pass complete")
	return stored, nil
}

// processAnnouncement handles one announcement end to end. Returns true when
// a quarterly result was stored.
func (o *Orchestrator) processAnnouncement(ctx context.Context, ann models.Announcement) (bool, error) {
	if ann.Symbol == "" {
		return false, fmt.Errorf("announcement without symbol")
	}

	stock, err := o.ensureStock(ann)
	if err != nil {
		return false, err
	}

	entry, err := o.storage.GetResultsCalendarByStockAndDate(stock.ID, ann.Date)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return false, fmt.Errorf("failed to look up calendar entry: %w", err)
	}
	if entry != nil && entry.Status == models.CalendarReady {
		return false, nil
	}

	c := classifier.Classify(ann)

	if entry == nil {
		entry = &models.CalendarEntry{
			StockID:          stock.ID,
			Symbol:           ann.Symbol,
			AnnouncementDate: ann.Date,
			Subject:          ann.Subject,
			Status:           models.CalendarWaiting,
		}
	}
	entry.ClassificationType = string(c.Type)
	entry.ClassificationScore = c.Score
	entry.ClassificationReason = c.Reason
	if c.ResultDeclarationDate != nil {
		d := c.ResultDeclarationDate.Time
		entry.ResultDeclarationDate = &d
	}
	if ann.XBRLURL != "" {
		entry.XBRLURL = ann.XBRLURL
	}
	if ann.AttachmentURL != "" {
		entry.AttachmentURL = ann.AttachmentURL
	}

	// Notifications only reserve the calendar slot; no document to fetch.
	if c.Type == classifier.TypeNotification {
		entry.Status = models.CalendarWaiting
		return false, o.saveEntry(entry)
	}

	// Results and ambiguous announcements both warrant an extraction attempt.
	entry.Status = models.CalendarReceived
	if err := o.saveEntry(entry); err != nil {
		return false, err
	}

	metrics, err := o.extractMetrics(ctx, ann)
	if err != nil {
		entry.Status = models.CalendarWaiting
		entry.DownloadFailed = true
		if saveErr := o.saveEntry(entry); saveErr != nil {
			return false, saveErr
		}
		return false, fmt.Errorf("extraction failed for %s: %w", ann.Symbol, err)
	}

	result, err := o.engine.CalculateQuarterlyComparisons(stock.ID, ann.Symbol, metrics)
	if err != nil {
		entry.Status = models.CalendarWaiting
		if saveErr := o.saveEntry(entry); saveErr != nil {
			return false, saveErr
		}
		return false, err
	}

	entry.Status = models.CalendarReady
	entry.DownloadFailed = false
	entry.Quarter = result.Quarter
	entry.FiscalYear = result.FiscalYear
	if err := o.saveEntry(entry); err != nil {
		return false, err
	}

	o.logger.Info().
		Str("symbol", ann.Symbol).
		Str("quarter", string(result.Quarter)).
		Str("fiscal_year", result.FiscalYear).
		Msg("Results ingested")
	return true, nil
}

// extractMetrics prefers the machine-readable filing and falls back to text
// extraction from the PDF attachment.
func (o *Orchestrator) extractMetrics(ctx context.Context, ann models.Announcement) (*models.FinancialMetrics, error) {
	var lastErr error

	if ann.HasXBRL && ann.XBRLURL != "" {
		data, err := o.downloader.DownloadBinary(ctx, ann.XBRLURL)
		if err == nil {
			metrics, err := o.filing.ExtractFiling(data)
			if err == nil {
				o.fillPeriod(metrics, ann)
				return metrics, nil
			}
			lastErr = err
		} else {
			lastErr = err
		}
		o.logger.Debug().
			Err(lastErr).
			Str("symbol", ann.Symbol).
			Msg("Structured filing unusable, trying attachment")
	}

	if ann.AttachmentURL == "" {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("no filing attached")
	}

	data, err := o.downloader.DownloadBinary(ctx, ann.AttachmentURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment: %w", err)
	}

	_, text, err := o.converter.Convert(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert attachment: %w", err)
	}

	metrics, err := o.registry.ForSymbol(ann.Symbol).ExtractMetrics(text)
	if err != nil {
		return nil, err
	}
	o.fillPeriod(metrics, ann)
	return metrics, nil
}

// fillPeriod derives quarter and fiscal year from the announcement date when
// the document itself did not state its reporting period. Results announce
// shortly after quarter close, so the announcement falls in the following
// quarter.
func (o *Orchestrator) fillPeriod(metrics *models.FinancialMetrics, ann models.Announcement) {
	if metrics.Quarter.Valid() && metrics.FiscalYear != "" {
		return
	}
	announced := models.QuarterForMonth(ann.Date.Month())
	announcedFY := models.FiscalYearForPeriodEnd(ann.Date)
	q, fy, err := models.PreviousQuarter(announced, announcedFY)
	if err != nil {
		return
	}
	metrics.Quarter = q
	metrics.FiscalYear = fy
	metrics.AddNote("period inferred from announcement date %s", ann.Date.Format("2006-01-02"))
}

func (o *Orchestrator) ensureStock(ann models.Announcement) (*models.Stock, error) {
	stock, err := o.storage.GetStockBySymbol(ann.Symbol)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up stock: %w", err)
	}

	stock = &models.Stock{
		Symbol:      ann.Symbol,
		CompanyName: ann.CompanyName,
	}
	if err := o.storage.CreateStock(stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// saveEntry creates or updates depending on whether the entry has been
// persisted before.
func (o *Orchestrator) saveEntry(entry *models.CalendarEntry) error {
	if entry.ID == "" {
		return o.storage.CreateResultsCalendar(entry)
	}
	return o.storage.UpdateResultsCalendar(entry)
}

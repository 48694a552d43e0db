// Package compare derives quarter-over-quarter and year-over-year figures
// for extracted results and persists them. It is the only writer of
// QuarterlyResult rows; re-running it for the same quarter is idempotent.
package compare

import (
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/interfaces"
	"github.com/ternarybob/quartermaster/internal/models"
)

// Engine computes comparison figures against stored history and upserts the
// resulting row. When a newly written quarter fills a gap, the rows that
// compare against it are refreshed too, so late arrivals back-fill their
// siblings' deltas.
type Engine struct {
	storage interfaces.ResultsStorage
	logger  arbor.ILogger
}

// NewEngine creates a comparison engine over the given results storage.
func NewEngine(storage interfaces.ResultsStorage, logger arbor.ILogger) *Engine {
	return &Engine{storage: storage, logger: logger}
}

// figures holds the comparable subset of a metrics record as parsed numbers.
type figures struct {
	revenue         *float64
	netProfit       *float64
	eps             *float64
	operatingProfit *float64
	operatingMargin *float64
}

func figuresOf(m *models.FinancialMetrics) figures {
	return figures{
		revenue:         parseOptional(m.Revenue),
		netProfit:       parseOptional(m.NetProfit),
		eps:             parseOptional(m.EPS),
		operatingProfit: parseOptional(m.OperatingProfit),
		operatingMargin: parseOptional(m.OperatingProfitMargin),
	}
}

func parseOptional(s string) *float64 {
	if v, ok := models.ParseNumeric(s); ok {
		return &v
	}
	return nil
}

// CalculateQuarterlyComparisons validates the extracted metrics, computes
// deltas against the previous quarter and the year-ago quarter, upserts the
// row, and refreshes any stored siblings that compare against it.
func (e *Engine) CalculateQuarterlyComparisons(stockID, symbol string, metrics *models.FinancialMetrics) (*models.QuarterlyResult, error) {
	if err := validateMetrics(metrics); err != nil {
		return nil, fmt.Errorf("metrics rejected for %s: %w", symbol, err)
	}

	now := time.Now().UTC()
	result := &models.QuarterlyResult{
		ID:         models.QuarterlyResultID(stockID, metrics.Quarter, metrics.FiscalYear),
		StockID:    stockID,
		Symbol:     symbol,
		Quarter:    metrics.Quarter,
		FiscalYear: metrics.FiscalYear,
		Metrics:    *metrics,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if existing, err := e.storage.GetQuarterlyResultsByQuarter(stockID, metrics.Quarter, metrics.FiscalYear); err == nil {
		result.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}

	if err := e.refreshComparisons(result); err != nil {
		return nil, err
	}

	e.backfillSiblings(result)

	e.logger.Info().
		Str("symbol", symbol).
		Str("quarter", string(result.Quarter)).
		Str("fiscal_year", result.FiscalYear).
		Msg("Quarterly comparisons stored")

	return result, nil
}

// validateMetrics rejects rows that would corrupt the comparison history.
func validateMetrics(m *models.FinancialMetrics) error {
	if !m.Quarter.Valid() {
		return fmt.Errorf("invalid quarter: %q", m.Quarter)
	}
	if _, err := models.ParseFiscalYear(m.FiscalYear); err != nil {
		return err
	}
	if !m.Usable() {
		return fmt.Errorf("no core metrics present")
	}
	if rev, ok := models.ParseNumeric(m.Revenue); ok && rev <= 0 {
		return fmt.Errorf("non-positive revenue: %s", m.Revenue)
	}
	return nil
}

// refreshComparisons recomputes the row's denormalized comparison figures
// from storage and upserts it.
func (e *Engine) refreshComparisons(result *models.QuarterlyResult) error {
	prev, err := e.lookupPrevious(result)
	if err != nil {
		return err
	}
	yearAgo, err := e.lookupYearAgo(result)
	if err != nil {
		return err
	}

	applyComparisons(result, prev, yearAgo)
	result.UpdatedAt = time.Now().UTC()

	if err := e.storage.UpsertQuarterlyResults(result); err != nil {
		return fmt.Errorf("failed to upsert quarterly result: %w", err)
	}
	return nil
}

func (e *Engine) lookupPrevious(result *models.QuarterlyResult) (*models.QuarterlyResult, error) {
	q, fy, err := models.PreviousQuarter(result.Quarter, result.FiscalYear)
	if err != nil {
		return nil, err
	}
	return e.lookup(result.StockID, q, fy)
}

func (e *Engine) lookupYearAgo(result *models.QuarterlyResult) (*models.QuarterlyResult, error) {
	fy, err := models.PreviousFiscalYear(result.FiscalYear)
	if err != nil {
		return nil, err
	}
	return e.lookup(result.StockID, result.Quarter, fy)
}

func (e *Engine) lookup(stockID string, q models.Quarter, fy string) (*models.QuarterlyResult, error) {
	row, err := e.storage.GetQuarterlyResultsByQuarter(stockID, q, fy)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", fy, q, err)
	}
	return row, nil
}

// backfillSiblings refreshes rows whose comparisons reference the quarter
// just written. Failures here are logged, not fatal; the primary row is
// already stored.
func (e *Engine) backfillSiblings(result *models.QuarterlyResult) {
	if q, fy, err := models.NextQuarter(result.Quarter, result.FiscalYear); err == nil {
		e.backfill(result.StockID, q, fy)
	}
	if fy, err := models.NextFiscalYear(result.FiscalYear); err == nil {
		e.backfill(result.StockID, result.Quarter, fy)
	}
}

func (e *Engine) backfill(stockID string, q models.Quarter, fy string) {
	sibling, err := e.lookup(stockID, q, fy)
	if err != nil || sibling == nil {
		return
	}
	if err := e.refreshComparisons(sibling); err != nil {
		e.logger.Warn().
			Err(err).
			Str("stock_id", stockID).
			Str("quarter", string(q)).
			Str("fiscal_year", fy).
			Msg("Failed to back-fill sibling comparisons")
	}
}

// applyComparisons writes the denormalized comparison figures and deltas.
// Growth deltas are percentage changes; margin deltas are point differences.
func applyComparisons(result *models.QuarterlyResult, prev, yearAgo *models.QuarterlyResult) {
	cur := figuresOf(&result.Metrics)

	result.PrevRevenue, result.PrevNetProfit, result.PrevEPS = nil, nil, nil
	result.PrevOperatingProfit, result.PrevOperatingMargin = nil, nil
	result.RevenueQoQ, result.NetProfitQoQ, result.EPSQoQ = nil, nil, nil
	result.OperatingProfitQoQ, result.OperatingMarginQoQ = nil, nil

	if prev != nil {
		p := figuresOf(&prev.Metrics)
		result.PrevRevenue = p.revenue
		result.PrevNetProfit = p.netProfit
		result.PrevEPS = p.eps
		result.PrevOperatingProfit = p.operatingProfit
		result.PrevOperatingMargin = p.operatingMargin

		result.RevenueQoQ = pctChange(cur.revenue, p.revenue)
		result.NetProfitQoQ = pctChange(cur.netProfit, p.netProfit)
		result.EPSQoQ = pctChange(cur.eps, p.eps)
		result.OperatingProfitQoQ = pctChange(cur.operatingProfit, p.operatingProfit)
		result.OperatingMarginQoQ = pointDiff(cur.operatingMargin, p.operatingMargin)
	}

	result.YearAgoRevenue, result.YearAgoNetProfit, result.YearAgoEPS = nil, nil, nil
	result.YearAgoOperatingProfit, result.YearAgoOperatingMargin = nil, nil
	result.RevenueYoY, result.NetProfitYoY, result.EPSYoY = nil, nil, nil
	result.OperatingProfitYoY, result.OperatingMarginYoY = nil, nil

	if yearAgo != nil {
		y := figuresOf(&yearAgo.Metrics)
		result.YearAgoRevenue = y.revenue
		result.YearAgoNetProfit = y.netProfit
		result.YearAgoEPS = y.eps
		result.YearAgoOperatingProfit = y.operatingProfit
		result.YearAgoOperatingMargin = y.operatingMargin

		result.RevenueYoY = pctChange(cur.revenue, y.revenue)
		result.NetProfitYoY = pctChange(cur.netProfit, y.netProfit)
		result.EPSYoY = pctChange(cur.eps, y.eps)
		result.OperatingProfitYoY = pctChange(cur.operatingProfit, y.operatingProfit)
		result.OperatingMarginYoY = pointDiff(cur.operatingMargin, y.operatingMargin)
	}
}

// pctChange returns the rounded percentage change, or nil when either side
// is absent or the base is zero. Never NaN or Inf.
func pctChange(cur, base *float64) *float64 {
	if cur == nil || base == nil || *base == 0 {
		return nil
	}
	v := models.Round2((*cur - *base) / *base * 100)
	return &v
}

// pointDiff returns the rounded margin-point difference.
func pointDiff(cur, base *float64) *float64 {
	if cur == nil || base == nil {
		return nil
	}
	v := models.Round2(*cur - *base)
	return &v
}

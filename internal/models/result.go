package models

import (
	"fmt"
	"time"
)

// QuarterlyResult is the persisted row for one (stock, quarter, fiscal year),
// holding the extracted metrics plus denormalized comparison figures and the
// derived QoQ/YoY percentages. Written exclusively by the comparison engine.
type QuarterlyResult struct {
	ID         string  `badgerhold:"key" json:"id"`
	StockID    string  `badgerholdIndex:"StockID" json:"stock_id"`
	Symbol     string  `json:"symbol"`
	Quarter    Quarter `json:"quarter"`
	FiscalYear string  `json:"fiscal_year"`

	Metrics FinancialMetrics `json:"metrics"`

	// Previous-quarter raw figures (denormalized at write time).
	PrevRevenue         *float64 `json:"prev_revenue,omitempty"`
	PrevNetProfit       *float64 `json:"prev_net_profit,omitempty"`
	PrevEPS             *float64 `json:"prev_eps,omitempty"`
	PrevOperatingProfit *float64 `json:"prev_operating_profit,omitempty"`
	PrevOperatingMargin *float64 `json:"prev_operating_margin,omitempty"`

	// Year-ago same-quarter raw figures.
	YearAgoRevenue         *float64 `json:"year_ago_revenue,omitempty"`
	YearAgoNetProfit       *float64 `json:"year_ago_net_profit,omitempty"`
	YearAgoEPS             *float64 `json:"year_ago_eps,omitempty"`
	YearAgoOperatingProfit *float64 `json:"year_ago_operating_profit,omitempty"`
	YearAgoOperatingMargin *float64 `json:"year_ago_operating_margin,omitempty"`

	// Quarter-over-quarter percentage changes. Nil when the comparison
	// figure is absent or zero, never NaN or Inf.
	RevenueQoQ         *float64 `json:"revenue_qoq,omitempty"`
	NetProfitQoQ       *float64 `json:"net_profit_qoq,omitempty"`
	EPSQoQ             *float64 `json:"eps_qoq,omitempty"`
	OperatingProfitQoQ *float64 `json:"operating_profit_qoq,omitempty"`

	// OperatingMarginQoQ is a margin-point difference, not a ratio.
	OperatingMarginQoQ *float64 `json:"operating_margin_qoq,omitempty"`

	// Year-over-year percentage changes.
	RevenueYoY         *float64 `json:"revenue_yoy,omitempty"`
	NetProfitYoY       *float64 `json:"net_profit_yoy,omitempty"`
	EPSYoY             *float64 `json:"eps_yoy,omitempty"`
	OperatingProfitYoY *float64 `json:"operating_profit_yoy,omitempty"`
	OperatingMarginYoY *float64 `json:"operating_margin_yoy,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuarterlyResultID builds the deterministic key for the unique
// (stock, quarter, fiscal year) triple.
func QuarterlyResultID(stockID string, q Quarter, fiscalYear string) string {
	return fmt.Sprintf("%s:%s:%s", stockID, fiscalYear, q)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"65799", 65799, true},
		{"65,799.25", 65799.25, true},
		{"-123.4", -123.4, true},
		{" 42 ", 42, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"12.3.4", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseNumeric(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestCompleteMargins_DerivesFromRawFigures(t *testing.T) {
	m := &FinancialMetrics{
		Revenue:         "65799",
		OperatingProfit: "11000",
		EBITDA:          "18000",
		NetProfit:       "9000",
	}

	m.CompleteMargins()

	// 11000/65799*100 = 16.7176... stored as the computed two-decimal value.
	assert.Equal(t, "16.72", m.OperatingProfitMargin)
	assert.Equal(t, "27.36", m.EBITDAMargin)
	assert.Equal(t, "13.68", m.PATMargin)
}

func TestCompleteMargins_DoesNotOverwriteExtracted(t *testing.T) {
	m := &FinancialMetrics{
		Revenue:               "1000",
		OperatingProfit:       "170",
		OperatingProfitMargin: "17.5",
	}

	m.CompleteMargins()

	assert.Equal(t, "17.5", m.OperatingProfitMargin)
}

func TestCompleteMargins_SkipsWithoutRevenue(t *testing.T) {
	m := &FinancialMetrics{OperatingProfit: "170"}
	m.CompleteMargins()
	assert.Empty(t, m.OperatingProfitMargin)

	m = &FinancialMetrics{Revenue: "0", OperatingProfit: "170"}
	m.CompleteMargins()
	assert.Empty(t, m.OperatingProfitMargin)
}

func TestUsable(t *testing.T) {
	assert.False(t, (&FinancialMetrics{}).Usable())
	assert.False(t, (&FinancialMetrics{ROE: "12"}).Usable())
	assert.True(t, (&FinancialMetrics{EPS: "12.5"}).Usable())
	assert.True(t, (&FinancialMetrics{Revenue: "100", NetProfit: "10"}).Usable())
}

func TestMissingCoreFields(t *testing.T) {
	m := &FinancialMetrics{Revenue: "100"}
	require.Equal(t, []string{"net_profit", "eps", "operating_profit"}, m.MissingCoreFields())
}

package extract

import (
	"regexp"

	"github.com/ternarybob/arbor"
)

// Issuer-specific extractors. Each bakes in format knowledge for one
// issuer's filing template: the labels it uses, the order its candidate
// patterns should be tried in, and the unit conventions it follows. They
// remain ordinary patternExtractors; only the candidate lists differ.

// newRelianceExtractor handles Reliance Industries filings, which lead with
// "Value of Sales & Services" / "Gross Revenue" and report EBITDA as the
// primary profitability line.
func newRelianceExtractor(logger arbor.ILogger) *patternExtractor {
	return &patternExtractor{
		name:   "RELIANCE",
		logger: logger,
		patterns: map[string][]*regexp.Regexp{
			"revenue": numPatterns(
				`value\s+of\s+sales\s+(?:&|and)\s+services`,
				`gross\s+revenue`,
				`revenue\s+from\s+operations?`,
			),
			"net_profit": numPatterns(
				`profit\s+for\s+the\s+(?:quarter|period)`,
				`net\s+profit\s+after\s+tax`,
				`net\s+profit`,
			),
			"eps": tightNumPatterns(
				`basic\s+eps`,
				`earnings\s+per\s+share\s*\(?\s*basic\s*\)?`,
			),
			"ebitda": tightNumPatterns(
				`\bebitda\b`,
			),
			"ebitda_margin": pctPatterns(
				`ebitda\s+margin`,
			),
			"operating_profit": tightNumPatterns(
				`operating\s+profit`,
			),
			"debt": numPatterns(
				`(?:gross|total)\s+debt`,
				`outstanding\s+debt`,
			),
			"total_income": numPatterns(
				`total\s+income`,
			),
		},
	}
}

// newTCSExtractor handles Tata Consultancy Services filings, which report
// operating margin prominently and use "Net Income" for profit.
func newTCSExtractor(logger arbor.ILogger) *patternExtractor {
	return &patternExtractor{
		name:   "TCS",
		logger: logger,
		patterns: map[string][]*regexp.Regexp{
			"revenue": numPatterns(
				`revenue\s+from\s+operations?`,
				`\brevenue\b`,
			),
			"net_profit": numPatterns(
				`net\s+income`,
				`profit\s+for\s+the\s+(?:quarter|period)`,
				`net\s+profit`,
			),
			"eps": tightNumPatterns(
				`basic\s+eps`,
				`earnings\s+per\s+share\s*\(?\s*basic\s*\)?`,
			),
			"operating_profit": tightNumPatterns(
				`operating\s+(?:profit|income)`,
			),
			"operating_profit_margin": pctPatterns(
				`operating\s+margin`,
			),
			"pat_margin": pctPatterns(
				`net\s+(?:income\s+)?margin`,
			),
			"total_income": numPatterns(
				`total\s+income`,
			),
		},
	}
}

// newHDFCBankExtractor handles HDFC Bank filings. Banks report total income
// rather than revenue from operations, and operating profit before
// provisions; net interest income is kept as a parsing note only.
func newHDFCBankExtractor(logger arbor.ILogger) *patternExtractor {
	return &patternExtractor{
		name:   "HDFCBANK",
		logger: logger,
		patterns: map[string][]*regexp.Regexp{
			"revenue": numPatterns(
				`total\s+income`,
				`interest\s+earned`,
			),
			"net_profit": numPatterns(
				`net\s+profit\s+(?:after\s+tax|for\s+the\s+(?:quarter|period))`,
				`profit\s+after\s+tax`,
				`net\s+profit`,
			),
			"eps": tightNumPatterns(
				`basic\s+eps`,
				`earnings\s+per\s+share\s*\(?\s*basic\s*\)?`,
			),
			"operating_profit": tightNumPatterns(
				`operating\s+profit\s+before\s+provisions`,
				`operating\s+profit`,
			),
			"roe": pctPatterns(
				`return\s+on\s+equity`,
			),
			"reserves": numPatterns(
				`reserves\s+and\s+surplus`,
			),
		},
	}
}

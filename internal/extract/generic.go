package extract

import (
	"regexp"

	"github.com/ternarybob/arbor"
)

// Pattern builders. Labels are themselves regexp fragments.
//
// The loose gap tolerates unit annotations between label and figure
// ("Revenue from Operations (Rs. in crore) 65,799"); the tight gap blocks
// letters so a label does not run into a longer sibling row ("Operating
// Profit" must not swallow the figure of "Operating Profit Margin").
const (
	looseGap = `[^0-9\-(]{0,40}?`
	tightGap = `[^0-9a-zA-Z\-(]{0,12}`
)

func numPatterns(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(labels))
	for _, label := range labels {
		out = append(out, regexp.MustCompile(`(?i)`+label+looseGap+numberGroup))
	}
	return out
}

func tightNumPatterns(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(labels))
	for _, label := range labels {
		out = append(out, regexp.MustCompile(`(?i)`+label+tightGap+numberGroup))
	}
	return out
}

func pctPatterns(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(labels))
	for _, label := range labels {
		out = append(out, regexp.MustCompile(`(?i)`+label+`[^0-9\-(]{0,20}?(-?[0-9]+(?:\.[0-9]+)?)\s*%`))
	}
	return out
}

// NewGenericExtractor returns the lowest-trust fallback extractor. Its
// patterns cast a broad net over layouts commonly seen in Indian quarterly
// filings; issuer-specific extractors should be preferred when registered.
func NewGenericExtractor(logger arbor.ILogger) *patternExtractor {
	return &patternExtractor{
		name:   "generic",
		logger: logger,
		patterns: map[string][]*regexp.Regexp{
			"revenue": numPatterns(
				`revenue\s+from\s+operations?`,
				`total\s+revenue`,
				`net\s+sales`,
				`income\s+from\s+operations?`,
			),
			"net_profit": numPatterns(
				`net\s+profit\s+(?:after\s+tax|for\s+the\s+(?:quarter|period|year))`,
				`profit\s+after\s+tax`,
				`profit\s+for\s+the\s+(?:quarter|period|year)`,
				`net\s+profit`,
			),
			"eps": tightNumPatterns(
				`basic\s+(?:and\s+diluted\s+)?eps`,
				`basic\s+earnings\s+per\s+share`,
				`earnings\s+per\s+share\s*\(?\s*basic\s*\)?`,
				`\beps\b`,
			),
			"operating_profit": tightNumPatterns(
				`operating\s+profit`,
				`profit\s+before\s+interest\s+and\s+tax`,
				`\bebit\b`,
			),
			"operating_profit_margin": pctPatterns(
				`operating\s+(?:profit\s+)?margin`,
				`opm`,
			),
			"ebitda": tightNumPatterns(
				`\bebitda\b`,
			),
			"ebitda_margin": pctPatterns(
				`ebitda\s+margin`,
			),
			"total_income": numPatterns(
				`total\s+income`,
			),
			"pat_margin": pctPatterns(
				`pat\s+margin`,
				`net\s+(?:profit\s+)?margin`,
			),
			"roe": pctPatterns(
				`return\s+on\s+equity`,
				`\broe\b`,
			),
			"debt": numPatterns(
				`total\s+debt`,
				`(?:gross\s+)?borrowings`,
			),
			"reserves": numPatterns(
				`reserves\s+(?:and\s+surplus|excluding\s+revaluation\s+reserves)`,
				`other\s+equity`,
			),
		},
	}
}

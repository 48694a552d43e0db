package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/models"
)

// XBRLExtractor extracts metrics from a machine-readable tag/value filing.
// Structured filings carry no ambiguity in units or table layout, so the
// pipeline always prefers this extractor when a filing is attached.
type XBRLExtractor struct {
	logger arbor.ILogger
}

// NewXBRLExtractor creates an XBRL filing extractor.
func NewXBRLExtractor(logger arbor.ILogger) *XBRLExtractor {
	return &XBRLExtractor{logger: logger}
}

// Tag-name synonyms per metric, tried in order. Taxonomy versions rename
// elements across fiscal years; matching is on the lowercased local name.
var xbrlSynonyms = map[string][]string{
	"revenue":     {"revenuefromoperations", "revenue", "incomefromoperations", "totalincome"},
	"net_profit":  {"profitlossforperiod", "profitaftertax", "netprofitlossforperiod", "profitloss"},
	"eps":         {"basicearningslosspershare", "basicearningspershare", "earningspersharebasic"},
	"operating_profit": {
		"operatingprofit",
		"profitbeforeinterestdepreciationandtax",
		"ebitda",
	},
	"ebitda":       {"ebitda"},
	"total_income": {"totalincome", "totalrevenue"},
	"debt":         {"borrowings", "totaldebt"},
	"reserves":     {"otherequity", "reservesandsurplus"},
	"roe":          {"returnonequity"},
}

var xbrlPeriodEndTags = []string{
	"dateofendofreportingperiod",
	"periodenddate",
	"dateofendoffinancialyear",
}

var xbrlResultTypeTags = []string{
	"natureofreportstandaloneconsolidated",
	"consolidatedstandalonestatus",
	"typeofresult",
}

var xbrlDateFormats = []string{"2006-01-02", "02-01-2006", "02-Jan-2006"}

// ExtractFiling parses the filing and maps tag values onto the canonical
// metrics record.
func (x *XBRLExtractor) ExtractFiling(data []byte) (*models.FinancialMetrics, error) {
	facts, err := parseFacts(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XBRL document: %w", err)
	}

	metrics := &models.FinancialMetrics{}

	for _, metric := range metricOrder {
		synonyms, ok := xbrlSynonyms[metric]
		if !ok {
			continue
		}
		for _, tag := range synonyms {
			raw, present := facts[tag]
			if !present {
				continue
			}
			value, numeric := cleanNumeric(raw, false)
			if !numeric {
				continue
			}
			setMetric(metrics, metric, value)
			metrics.AddNote("%s: tag %q", metric, tag)
			break
		}
	}

	metrics.ResultType = xbrlResultType(facts)

	if periodEnd, ok := xbrlPeriodEnd(facts); ok {
		metrics.PeriodEnded = periodEnd.Format("2006-01-02")
		metrics.Quarter = models.QuarterForMonth(periodEnd.Month())
		metrics.FiscalYear = models.FiscalYearForPeriodEnd(periodEnd)
	}

	metrics.CompleteMargins()

	if !metrics.Usable() {
		x.logger.Debug().
			Strs("missing", metrics.MissingCoreFields()).
			Int("fact_count", len(facts)).
			Msg("XBRL filing yielded no usable metrics")
		return nil, &ExtractionError{Extractor: "xbrl", Missing: metrics.MissingCoreFields()}
	}

	return metrics, nil
}

// parseFacts flattens the document into local-name -> first value. Context
// and unit elements produce keys too; only known synonym tags are consulted.
func parseFacts(data []byte) (map[string]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = false

	facts := make(map[string]string)
	var current string
	var value strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			current = strings.ToLower(t.Name.Local)
			value.Reset()
		case xml.CharData:
			value.Write(t)
		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			if name == current {
				v := strings.TrimSpace(value.String())
				if v != "" {
					if _, exists := facts[name]; !exists {
						facts[name] = v
					}
				}
			}
			current = ""
		}
	}

	if len(facts) == 0 {
		return nil, fmt.Errorf("no tag values found")
	}
	return facts, nil
}

func xbrlResultType(facts map[string]string) models.ResultType {
	for _, tag := range xbrlResultTypeTags {
		if v, ok := facts[tag]; ok {
			if strings.Contains(strings.ToLower(v), "consolidated") {
				return models.ResultTypeConsolidated
			}
			return models.ResultTypeStandalone
		}
	}
	return models.ResultTypeStandalone
}

func xbrlPeriodEnd(facts map[string]string) (time.Time, bool) {
	for _, tag := range xbrlPeriodEndTags {
		v, ok := facts[tag]
		if !ok {
			continue
		}
		for _, format := range xbrlDateFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

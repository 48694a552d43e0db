package nse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/quartermaster/internal/models"
)

const (
	announcementsEndpoint = "/api/corporates-financial-results"

	// announcementsHTMLEndpoint is the printable listing page, used as a
	// fallback when the JSON endpoint returns an unusable payload.
	announcementsHTMLEndpoint = "/companies-listing/corporate-filings-financial-results-print"
)

// Field-name aliases observed across upstream schema revisions. The payload
// shape drifts; every semantic value is resolved through its alias list and
// missing aliases map to explicit empty values.
var (
	symbolAliases      = []string{"symbol", "scrip", "scrip_cd"}
	companyAliases     = []string{"sm_name", "companyName", "company"}
	subjectAliases     = []string{"desc", "subject", "purpose"}
	descriptionAliases = []string{"attchmntText", "announcement", "details"}
	dateAliases        = []string{"an_dt", "date", "exchdisstime", "broadcastdate"}
	xbrlFlagAliases    = []string{"xbrl", "hasXbrl", "xbrl_attachment"}
	xbrlURLAliases     = []string{"xbrlFile", "xbrl_url"}
	attachmentAliases  = []string{"attchmntFile", "attachmentFile", "fileUrl"}

	announcementDateFormats = []string{
		"02-Jan-2006 15:04:05",
		"02-Jan-2006",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
)

// FetchAnnouncements retrieves the corporate results announcements published
// in the [from, to] window, normalized into the canonical Announcement shape.
// A malformed JSON body is not retried; the HTML listing page is tried once
// as a fallback before the error propagates.
func (c *Client) FetchAnnouncements(ctx context.Context, from, to time.Time) ([]models.Announcement, error) {
	params := url.Values{}
	params.Set("index", "equities")
	params.Set("from_date", from.Format("02-01-2006"))
	params.Set("to_date", to.Format("02-01-2006"))

	body, err := c.Get(ctx, announcementsEndpoint, params)
	if err != nil {
		return nil, err
	}

	anns, parseErr := parseAnnouncementsJSON(body)
	if parseErr == nil {
		c.logger.Debug().Int("count", len(anns)).Msg("Fetched announcements from JSON endpoint")
		return anns, nil
	}

	c.logger.Warn().Err(parseErr).Msg("Announcement JSON unusable, trying HTML listing")

	htmlBody, err := c.Get(ctx, announcementsHTMLEndpoint, params)
	if err != nil {
		return nil, fmt.Errorf("announcement JSON malformed (%v) and HTML fallback failed: %w", parseErr, err)
	}

	anns, err = parseAnnouncementsHTML(htmlBody)
	if err != nil {
		return nil, fmt.Errorf("announcement JSON malformed (%v) and HTML unparseable: %w", parseErr, err)
	}

	c.logger.Debug().Int("count", len(anns)).Msg("Fetched announcements from HTML listing")
	return anns, nil
}

// parseAnnouncementsJSON decodes either a bare array or a {data: [...]}
// envelope, both of which the endpoint has returned historically.
func parseAnnouncementsJSON(body []byte) ([]models.Announcement, error) {
	var items []map[string]interface{}

	if err := json.Unmarshal(body, &items); err != nil {
		var envelope struct {
			Data []map[string]interface{} `json:"data"`
		}
		if err2 := json.Unmarshal(body, &envelope); err2 != nil {
			return nil, fmt.Errorf("failed to parse announcements payload: %w", err)
		}
		items = envelope.Data
	}

	anns := make([]models.Announcement, 0, len(items))
	for _, item := range items {
		ann := normalizeAnnouncement(item)
		if ann.Symbol == "" {
			continue
		}
		anns = append(anns, ann)
	}
	return anns, nil
}

// normalizeAnnouncement maps whichever alias names the payload carries into
// the canonical record. Unknown or missing aliases yield empty values.
func normalizeAnnouncement(item map[string]interface{}) models.Announcement {
	ann := models.Announcement{
		Symbol:        strings.TrimSpace(stringAlias(item, symbolAliases)),
		CompanyName:   strings.TrimSpace(stringAlias(item, companyAliases)),
		Subject:       strings.TrimSpace(stringAlias(item, subjectAliases)),
		Description:   strings.TrimSpace(stringAlias(item, descriptionAliases)),
		XBRLURL:       strings.TrimSpace(stringAlias(item, xbrlURLAliases)),
		AttachmentURL: strings.TrimSpace(stringAlias(item, attachmentAliases)),
	}

	ann.Date = parseAnnouncementDate(stringAlias(item, dateAliases))
	ann.HasXBRL = truthyAlias(item, xbrlFlagAliases) || ann.XBRLURL != ""

	return ann
}

// stringAlias returns the first alias present in the payload as a string.
func stringAlias(item map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := item[alias]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// truthyAlias interprets the first present alias as a boolean. Upstream has
// used booleans, "true"/"Yes" strings, and bare URLs for the same flag.
func truthyAlias(item map[string]interface{}, aliases []string) bool {
	for _, alias := range aliases {
		v, ok := item[alias]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			s := strings.ToLower(strings.TrimSpace(t))
			if s == "" || s == "false" || s == "no" || s == "n" || s == "-" {
				return false
			}
			return true
		}
	}
	return false
}

func parseAnnouncementDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, format := range announcementDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseAnnouncementsHTML scrapes the printable listing table. Columns:
// symbol | company | subject/description | broadcast date | attachment
func parseAnnouncementsHTML(body []byte) ([]models.Announcement, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse announcements HTML: %w", err)
	}

	var anns []models.Announcement
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		ann := models.Announcement{
			Symbol:      strings.TrimSpace(cells.Eq(0).Text()),
			CompanyName: strings.TrimSpace(cells.Eq(1).Text()),
			Subject:     strings.TrimSpace(cells.Eq(2).Text()),
			Date:        parseAnnouncementDate(cells.Eq(3).Text()),
		}
		if desc, ok := cells.Eq(2).Attr("title"); ok {
			ann.Description = strings.TrimSpace(desc)
		}
		if cells.Length() >= 5 {
			if href, ok := cells.Eq(4).Find("a").Attr("href"); ok {
				href = strings.TrimSpace(href)
				if strings.Contains(strings.ToLower(href), "xbrl") {
					ann.XBRLURL = href
					ann.HasXBRL = true
				} else {
					ann.AttachmentURL = href
				}
			}
		}

		if ann.Symbol != "" {
			anns = append(anns, ann)
		}
	})

	if len(anns) == 0 {
		return nil, fmt.Errorf("no announcement rows found in HTML listing")
	}
	return anns, nil
}

// Package classifier decides, from announcement metadata alone, whether an
// announcement carries actual financial results or merely notifies a future
// results date. Classification happens before any document download, since
// the bulk of exchange announcements are notifications.
package classifier

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quartermaster/internal/models"
)

// AnnouncementType is the classification outcome.
type AnnouncementType string

const (
	TypeResults      AnnouncementType = "results"
	TypeNotification AnnouncementType = "notification"
	TypeUnknown      AnnouncementType = "unknown"
)

// Confidence grades how definitive the classification is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Classification is the derived, ephemeral classification record.
type Classification struct {
	Type       AnnouncementType
	Score      int // 0-100 relevance
	Confidence Confidence
	Reason     string

	// ResultDeclarationDate is the future "results will be declared on"
	// date parsed from notification text, when present.
	ResultDeclarationDate *DeclarationDate
}

// Score thresholds for the weighted path.
const (
	resultsThreshold      = 70
	notificationThreshold = 30
)

// Definitive phrases. Subject/description matching is case-insensitive.
const (
	outcomeSubjectPhrase = "outcome of board meeting"
	submittedPhrase      = "submitted to the exchange"
)

var notificationSubjectPhrases = []string{
	"board meeting intimation",
	"intimation of board meeting",
	"general updates",
}

var callPhrases = []string{
	"earnings call",
	"conference call",
	"call with media",
	"investor call",
	"dial-in",
	"dial in",
}

// scoredPhrase carries a relevance weight; positive weights indicate results,
// negative weights indicate notifications.
type scoredPhrase struct {
	phrase string
	weight int
}

var subjectIndicators = []scoredPhrase{
	{outcomeSubjectPhrase, 70},
}

var descriptionIndicators = []scoredPhrase{
	{submittedPhrase, 80},
	{"unaudited financial results", 75},
	{"audited financial results", 75},
	{"standalone and consolidated", 60},
	{"financial results", 50},
	{"quarterly results", 50},
	{"general updates", -60},
	{"call with media", -70},
	{"informed the exchange about", -50},
	{"earnings call", -60},
	{"conference call", -60},
	{"dial-in", -70},
}

var quarterTokens = []string{"q1", "q2", "q3", "q4"}

// Classify evaluates announcement metadata. Pure; no I/O.
func Classify(ann models.Announcement) Classification {
	subject := strings.ToLower(ann.Subject)
	description := strings.ToLower(ann.Description)

	// Unambiguous positive: board meeting outcome with results submitted.
	if strings.Contains(subject, outcomeSubjectPhrase) && strings.Contains(description, submittedPhrase) {
		return Classification{
			Type:       TypeResults,
			Score:      100,
			Confidence: ConfidenceHigh,
			Reason:     "Board meeting outcome with results submitted to the exchange",
		}
	}

	// Definitive notification: meeting intimation without submitted results,
	// or any call/conference/dial-in phrasing.
	if isDefinitiveNotification(subject, description) {
		c := Classification{
			Type:       TypeNotification,
			Score:      0,
			Confidence: ConfidenceHigh,
			Reason:     "Notification phrasing without submitted results",
		}
		if d, ok := ParseDeclarationDate(ann.Description); ok {
			c.ResultDeclarationDate = &d
			c.Reason = fmt.Sprintf("Results notification, declaration expected %s", d.Time.Format("02-Jan-2006"))
		}
		return c
	}

	score, matched := relevanceScore(subject, description)

	switch {
	case score >= resultsThreshold:
		return Classification{
			Type:       TypeResults,
			Score:      score,
			Confidence: ConfidenceMedium,
			Reason:     fmt.Sprintf("Relevance score %d (%s)", score, strings.Join(matched, ", ")),
		}
	case score <= notificationThreshold:
		return Classification{
			Type:       TypeNotification,
			Score:      score,
			Confidence: ConfidenceMedium,
			Reason:     fmt.Sprintf("Relevance score %d (%s)", score, strings.Join(matched, ", ")),
		}
	default:
		return Classification{
			Type:       TypeUnknown,
			Score:      score,
			Confidence: ConfidenceLow,
			Reason:     fmt.Sprintf("Ambiguous relevance score %d, extraction required", score),
		}
	}
}

func isDefinitiveNotification(subject, description string) bool {
	for _, phrase := range callPhrases {
		if strings.Contains(description, phrase) {
			return true
		}
	}

	if strings.Contains(description, submittedPhrase) {
		return false
	}
	for _, phrase := range notificationSubjectPhrases {
		if strings.Contains(subject, phrase) {
			return true
		}
	}
	return false
}

// relevanceScore computes the weighted score, clamped to [0, 100], and the
// list of phrases that fired.
func relevanceScore(subject, description string) (int, []string) {
	score := 0
	var matched []string

	for _, ind := range subjectIndicators {
		if strings.Contains(subject, ind.phrase) {
			score += ind.weight
			matched = append(matched, ind.phrase)
		}
	}
	for _, ind := range descriptionIndicators {
		if !strings.Contains(description, ind.phrase) {
			continue
		}
		// "financial results" is a substring of "unaudited financial
		// results"; the longer match already scored that text.
		if coveredBy(matched, ind.phrase) {
			continue
		}
		score += ind.weight
		matched = append(matched, ind.phrase)
	}

	for _, token := range quarterTokens {
		if containsToken(subject, token) || containsToken(description, token) {
			score += 40
			matched = append(matched, strings.ToUpper(token))
			break
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, matched
}

// coveredBy reports whether phrase is contained in an already-matched phrase.
func coveredBy(matched []string, phrase string) bool {
	for _, m := range matched {
		if strings.Contains(m, phrase) {
			return true
		}
	}
	return false
}

// containsToken matches a quarter token on word boundaries so e.g. "q1" in
// "eq1ty" does not fire.
func containsToken(text, token string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], token)
		if pos < 0 {
			return false
		}
		pos += idx
		beforeOK := pos == 0 || !isAlphaNum(text[pos-1])
		after := pos + len(token)
		afterOK := after >= len(text) || !isAlphaNum(text[after])
		if beforeOK && afterOK {
			return true
		}
		idx = pos + len(token)
	}
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

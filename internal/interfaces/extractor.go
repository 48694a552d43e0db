package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/quartermaster/internal/models"
)

// MetricsExtractor extracts financial metrics from already-converted plain
// text. Binary-to-text conversion is a pre-step handled by DocumentConverter.
type MetricsExtractor interface {
	ExtractMetrics(text string) (*models.FinancialMetrics, error)
}

// DocumentConverter turns a downloaded binary document into plain text.
type DocumentConverter interface {
	Convert(ctx context.Context, data []byte) (pageCount int, text string, err error)
}

// AnnouncementSource lists corporate results announcements from the upstream
// exchange for a date window.
type AnnouncementSource interface {
	FetchAnnouncements(ctx context.Context, from, to time.Time) ([]models.Announcement, error)
}

// BinaryDownloader fetches a raw document payload through the shared
// rate-limited session.
type BinaryDownloader interface {
	DownloadBinary(ctx context.Context, url string) ([]byte, error)
}

// Package pdftext converts PDF filing attachments into plain text for the
// pattern extractors. pdfcpu has no direct text API, so content streams are
// extracted per page into a scratch directory and concatenated in order.
package pdftext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/interfaces"
)

// Converter turns PDF bytes into page-ordered plain text.
type Converter struct {
	logger  arbor.ILogger
	tempDir string
}

var _ interfaces.DocumentConverter = (*Converter)(nil)

// NewConverter creates a converter with a process-local scratch directory.
func NewConverter(logger arbor.ILogger) *Converter {
	tempDir := filepath.Join(os.TempDir(), "quartermaster-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Converter{
		logger:  logger,
		tempDir: tempDir,
	}
}

// Convert extracts text from the given PDF bytes. Returns the page count and
// the concatenated page text. A PDF whose content streams yield no text at
// all (scanned image filings) returns an error so callers can fall back.
func (c *Converter) Convert(ctx context.Context, data []byte) (int, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}

	// Unique names keep concurrent conversions from clobbering each other.
	id := uuid.New().String()
	tempFile := filepath.Join(c.tempDir, id+".pdf")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return 0, "", fmt.Errorf("failed to write temp PDF: %w", err)
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(c.tempDir, id)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return pageCount, "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	text := c.collectPages(outDir, pageCount)
	if strings.TrimSpace(text) == "" {
		c.logger.Debug().
			Int("page_count", pageCount).
			Int("size_bytes", len(data)).
			Msg("PDF yielded no text content")
		return pageCount, "", fmt.Errorf("no text content in %d-page PDF", pageCount)
	}

	return pageCount, text, nil
}

// collectPages reads the per-page content files and joins them in order.
func (c *Converter) collectPages(outDir string, pageCount int) string {
	pageTexts := make(map[int]string)

	files, _ := os.ReadDir(outDir)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(text)
	}
	return builder.String()
}

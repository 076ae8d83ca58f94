// Package extractor turns a downloaded document into per-page text with
// positional lines.
package extractor

import (
	"context"
	"strings"
	"time"

	"docqa/internal/config"
	"docqa/internal/errs"
	"docqa/internal/models"
)

// Extractor produces the ordered pages of a document.
type Extractor interface {
	Extract(ctx context.Context, filePath string) ([]models.RawPage, error)
}

// New selects the extractor implementation from config.
func New(cfg *config.Config) (Extractor, error) {
	switch cfg.Extractor {
	case "local":
		return LocalPDF{}, nil
	case "azure":
		if cfg.Azure.Endpoint == "" || cfg.Azure.Key == "" {
			return nil, errs.New(errs.KindConfig, "azure document intelligence credentials not configured")
		}
		return NewAzure(cfg.Azure.Endpoint, cfg.Azure.Key, time.Duration(cfg.Azure.PollIntervalSecs)*time.Second), nil
	default:
		return nil, errs.New(errs.KindConfig, "unknown extractor type: "+cfg.Extractor)
	}
}

// pageFromLines builds a RawPage from ordered line contents, computing each
// line's offset within the joined page text.
func pageFromLines(pageNumber int, lineContents []string) models.RawPage {
	lines := make([]models.Line, 0, len(lineContents))
	offset := 0
	for i, content := range lineContents {
		lines = append(lines, models.Line{
			Number:  i + 1,
			Content: content,
			Offset:  offset,
			Length:  len(content),
		})
		offset += len(content) + 1
	}
	return models.RawPage{
		PageNumber: pageNumber,
		Text:       strings.Join(lineContents, "\n"),
		Lines:      lines,
	}
}

package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"docqa/internal/errs"
	"docqa/internal/models"
)

// LocalPDF extracts page text directly from PDF files, for running without
// the layout service. Positional line data is coarser than the service's.
type LocalPDF struct{}

func (LocalPDF) Extract(ctx context.Context, filePath string) ([]models.RawPage, error) {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".pdf" {
		return nil, errs.New(errs.KindExtract, "local extractor only supports PDF, got "+ext)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}

	var pages []models.RawPage
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.KindExtract, err)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, errs.Wrap(errs.KindExtract, err)
		}
		contents := strings.Split(strings.TrimSpace(text), "\n")
		pages = append(pages, pageFromLines(i, contents))
	}
	if len(pages) == 0 {
		return nil, errs.New(errs.KindExtract, "no pages extracted from PDF")
	}
	return pages, nil
}

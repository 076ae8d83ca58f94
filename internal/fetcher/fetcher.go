// Package fetcher downloads documents into transient local files.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"docqa/internal/errs"
)

const defaultExtension = ".bin"

type Fetcher struct {
	client *http.Client
}

// New creates a fetcher whose requests time out after the given duration.
// Redirects are followed.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the document at url into a temporary file and returns its
// path. The file extension is inferred from the response content type. The
// caller owns the file and removes it when done.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Wrap(errs.KindFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.Wrap(errs.KindFetch, fmt.Errorf("unexpected status %d fetching document", resp.StatusCode))
	}

	ext := extensionFor(resp.Header.Get("Content-Type"))
	tmp, err := os.CreateTemp("", "docqa-*"+ext)
	if err != nil {
		return "", errs.Wrap(errs.KindFetch, err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errs.Wrap(errs.KindFetch, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errs.Wrap(errs.KindFetch, err)
	}

	log.Debug().Str("url", url).Str("path", tmp.Name()).Msg("document downloaded")
	return tmp.Name(), nil
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultExtension
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return defaultExtension
	}
	return exts[0]
}

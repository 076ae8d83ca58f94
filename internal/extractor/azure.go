package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"docqa/internal/errs"
	"docqa/internal/models"
)

const (
	analyzePath     = "/documentintelligence/documentModels/prebuilt-layout:analyze?api-version=2024-11-30"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Azure calls the Document Intelligence prebuilt-layout model: one analyze
// request, then polling of the returned operation until completion.
type Azure struct {
	endpoint     string
	key          string
	client       *http.Client
	pollInterval time.Duration
}

func NewAzure(endpoint, key string, pollInterval time.Duration) *Azure {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Azure{
		endpoint:     endpoint,
		key:          key,
		client:       &http.Client{Timeout: 60 * time.Second},
		pollInterval: pollInterval,
	}
}

type analyzeResponse struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *analyzeError  `json:"error"`
}

type analyzeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type analyzeResult struct {
	Content string        `json:"content"`
	Pages   []analyzePage `json:"pages"`
}

type analyzePage struct {
	PageNumber int           `json:"pageNumber"`
	Lines      []analyzeLine `json:"lines"`
}

type analyzeLine struct {
	Content string `json:"content"`
}

func (a *Azure) Extract(ctx context.Context, filePath string) ([]models.RawPage, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}

	operationURL, err := a.beginAnalyze(ctx, data)
	if err != nil {
		return nil, err
	}

	result, err := a.pollResult(ctx, operationURL)
	if err != nil {
		return nil, err
	}

	pages := make([]models.RawPage, 0, len(result.Pages))
	for i, p := range result.Pages {
		number := p.PageNumber
		if number <= 0 {
			number = i + 1
		}
		contents := make([]string, 0, len(p.Lines))
		for _, line := range p.Lines {
			contents = append(contents, line.Content)
		}
		pages = append(pages, pageFromLines(number, contents))
	}
	if len(pages) == 0 {
		return nil, errs.New(errs.KindExtract, "layout analysis returned no pages")
	}
	log.Debug().Int("pages", len(pages)).Msg("layout analysis complete")
	return pages, nil
}

func (a *Azure) beginAnalyze(ctx context.Context, document []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+analyzePath, bytes.NewReader(document))
	if err != nil {
		return "", errs.Wrap(errs.KindExtract, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.KindExtract, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", errs.Wrap(errs.KindExtract, fmt.Errorf("analyze request failed: %d, %s", resp.StatusCode, string(body)))
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errs.New(errs.KindExtract, "analyze response missing Operation-Location header")
	}
	return operationURL, nil
}

func (a *Azure) pollResult(ctx context.Context, operationURL string) (*analyzeResult, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, errs.Wrap(errs.KindExtract, ctx.Err())
		case <-time.After(a.pollInterval):
		}

		status, err := a.fetchStatus(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case statusSucceeded:
			if status.AnalyzeResult == nil {
				return nil, errs.New(errs.KindExtract, "analysis succeeded without a result")
			}
			return status.AnalyzeResult, nil
		case statusFailed:
			msg := "layout analysis failed"
			if status.Error != nil {
				msg = fmt.Sprintf("layout analysis failed: %s: %s", status.Error.Code, status.Error.Message)
			}
			return nil, errs.New(errs.KindExtract, msg)
		default:
			// notStarted or running
		}
	}
}

func (a *Azure) fetchStatus(ctx context.Context, operationURL string) (*analyzeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errs.Wrap(errs.KindExtract, fmt.Errorf("poll request failed: %d, %s", resp.StatusCode, string(body)))
	}

	var status analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, errs.Wrap(errs.KindExtract, err)
	}
	return &status, nil
}

// Package pipeline orchestrates one request end to end: fetch, extract,
// chunk, index, then answer each question in order.
package pipeline

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/errs"
	"docqa/internal/extractor"
	"docqa/internal/index"
	"docqa/internal/models"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Answerer interface {
	Answer(ctx context.Context, question string, retrieved []models.ScoredChunk) (string, error)
}

type Pipeline struct {
	fetcher   Fetcher
	extractor extractor.Extractor
	embedder  index.Embedder
	answerer  Answerer
	cfg       config.RAGConfig
}

func New(fetcher Fetcher, ext extractor.Extractor, embedder index.Embedder, answerer Answerer, cfg config.RAGConfig) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: ext,
		embedder:  embedder,
		answerer:  answerer,
		cfg:       cfg,
	}
}

// Run executes the pipeline for one request and returns one answer per
// question, in question order. Fetch, extraction, and indexing failures are
// request-fatal; a failed question aborts the batch carrying its 1-based
// index. The temp file and the index are released on every exit path.
func (p *Pipeline) Run(ctx context.Context, url string, questions []string) ([]string, error) {
	log := zerolog.Ctx(ctx)

	path, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", path).Msg("failed to remove temp file")
		}
	}()

	pages, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	chunks := chunker.SplitPages(pages, chunker.Config{
		MaxLen:  p.cfg.ChunkSize,
		Overlap: p.cfg.ChunkOverlap,
	})
	log.Debug().Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("document chunked")

	ix, err := index.Build(ctx, p.embedder, chunks)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := ix.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to tear down index")
		}
	}()

	answers := make([]string, 0, len(questions))
	for i, question := range questions {
		retrieved, err := ix.Search(ctx, question, p.cfg.TopK)
		if err != nil {
			return nil, errs.Question(i+1, err)
		}
		answer, err := p.answerer.Answer(ctx, question, retrieved)
		if err != nil {
			return nil, errs.Question(i+1, err)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

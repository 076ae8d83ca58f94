// Package index holds the request-scoped similarity index over a document's
// chunks.
package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"docqa/internal/errs"
	"docqa/internal/models"
)

const DefaultTopK = 5

// Embedder is the narrow embedding surface the index needs. The langchaingo
// EmbedderImpl satisfies it.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is a similarity-searchable view over one request's chunks. It is
// built exactly once per request and torn down when the request ends; it is
// never shared across requests.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	chunks     map[string]models.Chunk
	count      int
	closed     bool
}

// Build embeds every chunk and inserts it into a fresh in-memory collection.
// An empty chunk list yields a valid, empty index.
func Build(ctx context.Context, embedder Embedder, chunks []models.Chunk) (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("request-"+uuid.NewString(), nil, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindIndex, err)
	}

	ix := &Index{
		db:         db,
		collection: collection,
		embedder:   embedder,
		chunks:     make(map[string]models.Chunk, len(chunks)),
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := embedder.EmbedQuery(ctx, chunk.Text)
		if err != nil {
			return nil, errs.Wrap(errs.KindIndex, fmt.Errorf("embed chunk p%d/%d: %w", chunk.PageNumber, chunk.Index, err))
		}
		id := chunkID(chunk)
		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   chunk.Text,
			Embedding: vector,
			Metadata: map[string]string{
				"page":  strconv.Itoa(chunk.PageNumber),
				"chunk": strconv.Itoa(chunk.Index),
			},
		})
		ix.chunks[id] = chunk
	}

	if len(docs) > 0 {
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, errs.Wrap(errs.KindIndex, err)
		}
	}
	ix.count = len(docs)
	return ix, nil
}

func chunkID(c models.Chunk) string {
	return fmt.Sprintf("p%d-c%d", c.PageNumber, c.Index)
}

// Count returns the number of indexed chunks.
func (ix *Index) Count() int { return ix.count }

// Search returns the top-k chunks for the question, highest similarity
// first. Ties are broken by original chunk order (page, then chunk index).
// An empty index yields an empty result, not an error. k is clamped to the
// number of indexed chunks.
func (ix *Index) Search(ctx context.Context, question string, k int) ([]models.ScoredChunk, error) {
	if ix.count == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if k > ix.count {
		k = ix.count
	}

	vector, err := ix.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := ix.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk, ok := ix.chunks[r.ID]
		if !ok {
			continue
		}
		scored = append(scored, models.ScoredChunk{Chunk: chunk, Similarity: r.Similarity})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		if scored[i].Chunk.PageNumber != scored[j].Chunk.PageNumber {
			return scored[i].Chunk.PageNumber < scored[j].Chunk.PageNumber
		}
		return scored[i].Chunk.Index < scored[j].Chunk.Index
	})
	return scored, nil
}

// Close tears down the request's collection. Idempotent.
func (ix *Index) Close() error {
	if ix == nil || ix.closed {
		return nil
	}
	ix.closed = true
	if err := ix.db.DeleteCollection(ix.collection.Name); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

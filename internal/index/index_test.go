package index

import (
	"context"
	"fmt"
	"testing"

	"docqa/internal/errs"
	"docqa/internal/models"
)

type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	s.calls++
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func chunk(page, idx int, text string) models.Chunk {
	return models.Chunk{PageNumber: page, Index: idx, Text: text, Start: 0, End: len(text)}
}

func TestBuildAndSearchRanking(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"alpha text": {1, 0, 0},
		"beta text":  {0, 1, 0},
		"mixed text": {0.6, 0.8, 0},
		"question":   {1, 0, 0},
	}}
	chunks := []models.Chunk{
		chunk(1, 0, "alpha text"),
		chunk(1, 1, "beta text"),
		chunk(2, 0, "mixed text"),
	}

	ix, err := Build(context.Background(), emb, chunks)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer ix.Close()

	if ix.Count() != 3 {
		t.Fatalf("count = %d, want 3", ix.Count())
	}

	results, err := ix.Search(context.Background(), "question", 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.Text != "alpha text" {
		t.Errorf("top result = %q, want alpha text", results[0].Chunk.Text)
	}
	if results[1].Chunk.Text != "mixed text" {
		t.Errorf("second result = %q, want mixed text", results[1].Chunk.Text)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("results not ordered by similarity: %v, %v", results[0].Similarity, results[1].Similarity)
	}
}

func TestSearchClampsK(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"only chunk": {1, 0, 0},
		"question":   {1, 0, 0},
	}}
	ix, err := Build(context.Background(), emb, []models.Chunk{chunk(1, 0, "only chunk")})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer ix.Close()

	results, err := ix.Search(context.Background(), "question", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected all stored chunks when k exceeds count, got %d", len(results))
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{}}
	ix, err := Build(context.Background(), emb, nil)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer ix.Close()

	results, err := ix.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("empty index search should not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if emb.calls != 0 {
		t.Errorf("no embedding should happen against an empty index, got %d calls", emb.calls)
	}
}

func TestSearchTieBreakByChunkOrder(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"dup two":  {1, 0, 0},
		"dup one":  {1, 0, 0},
		"question": {1, 0, 0},
	}}
	chunks := []models.Chunk{
		chunk(2, 0, "dup two"),
		chunk(1, 0, "dup one"),
	}
	ix, err := Build(context.Background(), emb, chunks)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer ix.Close()

	results, err := ix.Search(context.Background(), "question", 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.PageNumber != 1 || results[1].Chunk.PageNumber != 2 {
		t.Errorf("equal similarities should keep original chunk order, got pages %d, %d",
			results[0].Chunk.PageNumber, results[1].Chunk.PageNumber)
	}
}

func TestBuildEmbeddingFailure(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{}}
	_, err := Build(context.Background(), emb, []models.Chunk{chunk(1, 0, "unembeddable")})
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if errs.KindOf(err) != errs.KindIndex {
		t.Errorf("error kind = %v, want %v", errs.KindOf(err), errs.KindIndex)
	}
}

func TestCloseIdempotent(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"c": {1, 0, 0}}}
	ix, err := Build(context.Background(), emb, []models.Chunk{chunk(1, 0, "c")})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}

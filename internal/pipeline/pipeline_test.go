package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"docqa/internal/config"
	"docqa/internal/errs"
	"docqa/internal/models"
)

type fakeFetcher struct {
	path  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeExtractor struct {
	pages []models.RawPage
	err   error
}

func (e *fakeExtractor) Extract(_ context.Context, _ string) ([]models.RawPage, error) {
	return e.pages, e.err
}

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

type stubAnswerer struct {
	failOn int
	calls  int
}

func (a *stubAnswerer) Answer(_ context.Context, question string, retrieved []models.ScoredChunk) (string, error) {
	a.calls++
	if a.failOn > 0 && a.calls == a.failOn {
		return "", errors.New("generation failed")
	}
	if len(retrieved) == 0 {
		return models.NoContextAnswer, nil
	}
	return "answer to: " + question, nil
}

func testRAGConfig() config.RAGConfig {
	return config.RAGConfig{ChunkSize: 1000, ChunkOverlap: 200, TopK: 5}
}

func tempDoc(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "doc-*.bin")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	return f.Name()
}

func testPages() []models.RawPage {
	return []models.RawPage{
		{PageNumber: 1, Text: "alpha beta"},
		{PageNumber: 2, Text: "gamma delta"},
	}
}

func testVectors() map[string][]float32 {
	return map[string][]float32{
		"alpha beta":  {1, 0, 0},
		"gamma delta": {0, 1, 0},
		"q one":       {1, 0, 0},
		"q two":       {0, 1, 0},
		"q three":     {0.6, 0.8, 0},
	}
}

func TestRunAnswersInQuestionOrder(t *testing.T) {
	path := tempDoc(t)
	p := New(
		&fakeFetcher{path: path},
		&fakeExtractor{pages: testPages()},
		&stubEmbedder{vectors: testVectors()},
		&stubAnswerer{},
		testRAGConfig(),
	)

	questions := []string{"q one", "q two", "q three"}
	answers, err := p.Run(context.Background(), "https://example.com/doc", questions)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(answers) != len(questions) {
		t.Fatalf("got %d answers for %d questions", len(answers), len(questions))
	}
	for i, q := range questions {
		if answers[i] != "answer to: "+q {
			t.Errorf("answers[%d] = %q, want answer for %q", i, answers[i], q)
		}
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s should be removed after the request", path)
	}
}

func TestRunZeroQuestions(t *testing.T) {
	emb := &stubEmbedder{vectors: testVectors()}
	p := New(
		&fakeFetcher{path: tempDoc(t)},
		&fakeExtractor{pages: testPages()},
		emb,
		&stubAnswerer{},
		testRAGConfig(),
	)

	answers, err := p.Run(context.Background(), "https://example.com/doc", nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(answers) != 0 {
		t.Fatalf("expected empty answer list, got %d", len(answers))
	}
	// The index is still built: one embedding call per chunk.
	if emb.calls != 2 {
		t.Errorf("embedder calls = %d, want 2 (one per chunk)", emb.calls)
	}
}

func TestRunQuestionFailureAbortsBatch(t *testing.T) {
	path := tempDoc(t)
	p := New(
		&fakeFetcher{path: path},
		&fakeExtractor{pages: testPages()},
		&stubEmbedder{vectors: testVectors()},
		&stubAnswerer{failOn: 2},
		testRAGConfig(),
	)

	_, err := p.Run(context.Background(), "https://example.com/doc", []string{"q one", "q two", "q three"})
	if err == nil {
		t.Fatal("expected failure on second question")
	}
	if errs.KindOf(err) != errs.KindAnswer {
		t.Errorf("error kind = %v, want %v", errs.KindOf(err), errs.KindAnswer)
	}
	if errs.QuestionOf(err) != 2 {
		t.Errorf("failed question index = %d, want 2", errs.QuestionOf(err))
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("temp file must be removed on failure paths too")
	}
}

func TestRunExtractFailureIsFatal(t *testing.T) {
	path := tempDoc(t)
	p := New(
		&fakeFetcher{path: path},
		&fakeExtractor{err: errs.New(errs.KindExtract, "layout analysis failed")},
		&stubEmbedder{vectors: testVectors()},
		&stubAnswerer{},
		testRAGConfig(),
	)

	_, err := p.Run(context.Background(), "https://example.com/doc", []string{"q one"})
	if err == nil {
		t.Fatal("expected extraction failure")
	}
	if errs.KindOf(err) != errs.KindExtract {
		t.Errorf("error kind = %v, want %v", errs.KindOf(err), errs.KindExtract)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("temp file must be removed when extraction fails")
	}
}

func TestRunFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errs.New(errs.KindFetch, "unexpected status 404")}
	p := New(
		fetcher,
		&fakeExtractor{pages: testPages()},
		&stubEmbedder{vectors: testVectors()},
		&stubAnswerer{},
		testRAGConfig(),
	)

	_, err := p.Run(context.Background(), "https://example.com/doc", []string{"q one"})
	if err == nil {
		t.Fatal("expected fetch failure")
	}
	if errs.KindOf(err) != errs.KindFetch {
		t.Errorf("error kind = %v, want %v", errs.KindOf(err), errs.KindFetch)
	}
}

func TestRunEmptyDocumentUsesSentinel(t *testing.T) {
	p := New(
		&fakeFetcher{path: tempDoc(t)},
		&fakeExtractor{pages: []models.RawPage{{PageNumber: 1, Text: ""}}},
		&stubEmbedder{vectors: testVectors()},
		&stubAnswerer{},
		testRAGConfig(),
	)

	answers, err := p.Run(context.Background(), "https://example.com/doc", []string{"q one"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(answers) != 1 || answers[0] != models.NoContextAnswer {
		t.Fatalf("expected sentinel answer for empty document, got %v", answers)
	}
}

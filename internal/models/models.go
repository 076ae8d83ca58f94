package models

// RawPage is one page of an extracted document. It is produced once by the
// layout extractor and not modified afterwards.
type RawPage struct {
	PageNumber int
	Text       string
	Lines      []Line
}

// Line is a positional text unit within a page. Offset and Length locate the
// line within the page's text.
type Line struct {
	Number  int
	Content string
	Offset  int
	Length  int
}

// Chunk is the unit of retrieval. Start and End are byte offsets into the
// source page's text, so chunks never cross page boundaries. Lines holds the
// numbers of the source lines attributed to this chunk; the attribution is a
// word-overlap heuristic, not authoritative provenance.
type Chunk struct {
	PageNumber int
	Index      int
	Text       string
	Start      int
	End        int
	Lines      []int
}

// Len returns the chunk's character length.
func (c Chunk) Len() int { return len(c.Text) }

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk      Chunk
	Similarity float32
}

// RunRequest is the body of the question-answering endpoint.
type RunRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// RunResponse carries one answer per question, in question order.
type RunResponse struct {
	Answers []string `json:"answers"`
}

// ErrorBody is the structured error payload. Question is the 1-based index
// of the failed question when a single question aborted the batch.
type ErrorBody struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Question int    `json:"question,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

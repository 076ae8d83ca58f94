// Package chunker splits page text into bounded, overlapping retrieval
// chunks and attributes source lines to each chunk.
package chunker

import (
	"strings"

	"docqa/internal/models"
)

const (
	DefaultMaxLen  = 1000
	DefaultOverlap = 200

	// LineOverlapThreshold is the fraction of a line's distinct lowercased
	// words that must appear among a chunk's words for the line to be
	// attributed to that chunk. Attribution is best-effort; partial overlaps
	// and ties are expected.
	LineOverlapThreshold = 0.30
)

type Config struct {
	MaxLen  int
	Overlap int
}

func (c Config) withDefaults() Config {
	if c.MaxLen <= 0 {
		c.MaxLen = DefaultMaxLen
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.MaxLen {
		c.Overlap = c.MaxLen / 2
	}
	return c
}

// Separator priority for break points: paragraph break, line break, sentence
// end, word boundary, hard character cut.
var separatorPriority = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// Split cuts one page's text into chunks of at most cfg.MaxLen bytes. Each
// chunk is a contiguous span of the page text; consecutive chunks overlap by
// up to cfg.Overlap bytes so that content spanning a cut stays retrievable.
// The output is deterministic for a given text and config, and the spans
// cover the page text without gaps.
func Split(page models.RawPage, cfg Config) []models.Chunk {
	cfg = cfg.withDefaults()
	text := page.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	for start < len(text) {
		end := start + cfg.MaxLen
		if end >= len(text) {
			end = len(text)
		} else {
			end = breakPoint(text, start, end)
		}

		chunk := models.Chunk{
			PageNumber: page.PageNumber,
			Index:      len(chunks),
			Text:       text[start:end],
			Start:      start,
			End:        end,
		}
		chunk.Lines = attributeLines(chunk.Text, page.Lines)
		chunks = append(chunks, chunk)

		if end == len(text) {
			break
		}
		next := end - cfg.Overlap
		if next <= start {
			// Break landed inside the overlap region; give up the overlap
			// for this boundary to guarantee forward progress.
			next = end
		}
		start = next
	}
	return chunks
}

// SplitPages chunks every page in order. Chunk indices restart per page.
func SplitPages(pages []models.RawPage, cfg Config) []models.Chunk {
	var chunks []models.Chunk
	for _, page := range pages {
		chunks = append(chunks, Split(page, cfg)...)
	}
	return chunks
}

// breakPoint picks the cut position in (start, limit]: the end of the last
// occurrence of the highest-priority separator present in the window, or a
// hard cut at limit when no separator occurs.
func breakPoint(text string, start, limit int) int {
	window := text[start:limit]
	for _, seps := range separatorPriority {
		best := -1
		for _, sep := range seps {
			if idx := strings.LastIndex(window, sep); idx > 0 && idx+len(sep) > best {
				best = idx + len(sep)
			}
		}
		if best > 0 {
			return start + best
		}
	}
	return limit
}

// attributeLines returns the numbers of the lines whose distinct-word overlap
// with the chunk meets LineOverlapThreshold.
func attributeLines(chunkText string, lines []models.Line) []int {
	chunkWords := wordSet(chunkText)
	if len(chunkWords) == 0 {
		return nil
	}
	var numbers []int
	for _, line := range lines {
		lineWords := wordSet(line.Content)
		if len(lineWords) == 0 {
			continue
		}
		hits := 0
		for w := range lineWords {
			if _, ok := chunkWords[w]; ok {
				hits++
			}
		}
		if float64(hits)/float64(len(lineWords)) >= LineOverlapThreshold {
			numbers = append(numbers, line.Number)
		}
	}
	return numbers
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Package rag builds grounding prompts from retrieved chunks and obtains
// answers from a chat model.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"docqa/internal/config"
	"docqa/internal/models"
)

// Generator produces a completion from a system instruction and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// LLM implements Generator over an OpenAI-compatible chat endpoint with
// low-randomness sampling and bounded output length.
type LLM struct {
	model     llms.Model
	maxTokens int
}

func NewLLM(cfg *config.LLMConfig, maxTokens int) (*LLM, error) {
	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.InferenceModel),
	)
	if err != nil {
		return nil, err
	}
	return &LLM{model: model, maxTokens: maxTokens}, nil
}

func (l *LLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{Role: llms.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextContent{Text: system}}},
		{Role: llms.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextContent{Text: prompt}}},
	}
	resp, err := l.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0),
		llms.WithMaxTokens(l.maxTokens),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Content, nil
}

// Answerer turns a question plus retrieved chunks into a grounded answer.
type Answerer struct {
	generator Generator
}

func NewAnswerer(g Generator) *Answerer {
	return &Answerer{generator: g}
}

// Answer returns a grounded answer for the question. With no retrieved
// context it returns the fixed sentinel without calling the model; an
// empty-context prompt is never sent. Generation failures propagate as
// errors so the caller decides the user-facing representation.
func (a *Answerer) Answer(ctx context.Context, question string, retrieved []models.ScoredChunk) (string, error) {
	if len(retrieved) == 0 {
		return models.NoContextAnswer, nil
	}

	var contextText strings.Builder
	for i, sc := range retrieved {
		if i > 0 {
			contextText.WriteString(models.ContextSeparator)
		}
		contextText.WriteString(sc.Chunk.Text)
	}

	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextText.String(), question)
	answer, err := a.generator.Generate(ctx, models.SystemInstruction, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

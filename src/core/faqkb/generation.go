package faqkb

import (
	"context"
	"strings"

	"faqrag/src/log"
)

// GenerationConfig sizes the prompt and fixes the sampling behavior.
type GenerationConfig struct {
	// ContextWindow is the target model's context size in tokens.
	ContextWindow int
	// CharsPerToken is the fixed estimate used to express the window as a
	// character budget.
	CharsPerToken int
	// Temperature is the sampling temperature. Low values favor
	// determinism over creativity.
	Temperature float64
}

const (
	defaultContextWindow = 4096
	defaultCharsPerToken = 4
	defaultTemperature   = 0.3
)

// GenerationService assembles a bounded prompt from retrieved chunks and the
// original query and delegates to the streaming generation provider.
type GenerationService struct {
	llm LLMProvider
	cfg GenerationConfig
}

func NewGenerationService(llm LLMProvider, cfg GenerationConfig) *GenerationService {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
	}
	if cfg.CharsPerToken <= 0 {
		cfg.CharsPerToken = defaultCharsPerToken
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	return &GenerationService{
		llm: llm,
		cfg: cfg,
	}
}

// ContextBudget is the maximum combined size, in characters, of retrieved
// text included in one prompt.
func (s *GenerationService) ContextBudget() int {
	return s.cfg.ContextWindow * s.cfg.CharsPerToken
}

// GenerateStream builds the final prompt and returns the provider's token
// stream unchanged. Cancelling ctx stops generation and closes the provider
// connection.
func (s *GenerationService) GenerateStream(ctx context.Context, query string, retrievedChunks []string) AnswerStream {
	chunks := normalizeChunks(retrievedChunks)
	kept, dropped := trimChunks(chunks, s.ContextBudget())
	if dropped > 0 {
		log.Info("trimmed retrieved context to the prompt budget",
			"kept", len(kept), "dropped", dropped, "budget_chars", s.ContextBudget())
	}

	prompt := formatMainPrompt(query, kept)
	log.Debug("assembled generation prompt", "prompt", prompt)

	return s.llm.GenerateStream(ctx, systemPromptInstructedGeneration, prompt, s.cfg.Temperature)
}

// normalizeChunks keeps plain non-empty text only.
func normalizeChunks(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// trimChunks accumulates chunks in their given order while the running
// character total, including separator overhead, stays within the budget.
// Inclusion stops at the first chunk that would exceed it: earlier chunks are
// more relevant and are never reordered for fit.
func trimChunks(chunks []string, budget int) (kept []string, dropped int) {
	total := 0
	for i, chunk := range chunks {
		cost := len(chunk)
		if i > 0 {
			cost += len(chunkSeparator)
		}
		if total+cost > budget {
			return kept, len(chunks) - i
		}
		kept = append(kept, chunk)
		total += cost
	}
	return kept, 0
}

package faqkb

import (
	"context"

	"faqrag/src/infrastructure/integrations/ollama"
)

// OllamaProvider adapts the Ollama client to the Embedder and LLMProvider
// interfaces, pinning the model names from configuration.
type OllamaProvider struct {
	client          *ollama.Client
	embeddingModel  string
	generationModel string
}

func NewOllamaProvider(client *ollama.Client, embeddingModel, generationModel string) *OllamaProvider {
	return &OllamaProvider{
		client:          client,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}
}

func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return o.client.GetEmbedding(ctx, o.embeddingModel, text)
}

func (o *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return o.client.GetEmbeddings(ctx, o.embeddingModel, texts)
}

func (o *OllamaProvider) GenerateStream(ctx context.Context, system, prompt string, temperature float64) AnswerStream {
	stream := o.client.ChatStream(ctx, o.generationModel, system, prompt, map[string]interface{}{
		"temperature": temperature,
	})
	return &ollamaAnswerStream{inner: stream}
}

type ollamaAnswerStream struct {
	inner *ollama.ChatStream
}

func (s *ollamaAnswerStream) Tokens() <-chan string {
	return s.inner.Tokens()
}

func (s *ollamaAnswerStream) Metrics() *GenerationMetrics {
	m := s.inner.Metrics()
	if m == nil {
		return nil
	}
	return &GenerationMetrics{
		PromptTokens:  m.PromptTokens,
		OutputTokens:  m.OutputTokens,
		TotalDuration: m.TotalDuration,
		EvalDuration:  m.EvalDuration,
	}
}

func (s *ollamaAnswerStream) Err() error {
	return s.inner.Err()
}

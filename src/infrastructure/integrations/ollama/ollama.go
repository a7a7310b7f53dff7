package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"faqrag/src/log"
)

const (
	DefaultURL = "http://localhost:11434/api"
)

// ConnectionErrorToken is emitted as the only token of a stream when the
// model server cannot be reached.
const ConnectionErrorToken = "Error: no connection to the model server. Please ensure the Ollama service is running and accessible."

// ErrNoEmbeddings is returned when the server answers an embedding request
// with an empty result set.
var ErrNoEmbeddings = fmt.Errorf("no embeddings in response")

// EmbedRequest represents the request structure for batch embeddings
type EmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbedResponse represents the response structure from batch embeddings
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// ChatMessage represents a single message in a chat request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request structure for streaming chat generation
type ChatRequest struct {
	Model    string                 `json:"model"`
	Messages []ChatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

// ChatResponse represents one streamed chunk from chat generation. The final
// chunk has Done set and carries the generation counters.
type ChatResponse struct {
	Model           string      `json:"model"`
	Message         ChatMessage `json:"message"`
	Done            bool        `json:"done"`
	TotalDuration   int64       `json:"total_duration,omitempty"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
	EvalDuration    int64       `json:"eval_duration,omitempty"`
}

// Metrics holds the counters reported by the final chunk of a stream.
type Metrics struct {
	PromptTokens  int
	OutputTokens  int
	TotalDuration time.Duration
	EvalDuration  time.Duration
}

// ChatStream is a live token stream from one chat generation. Tokens become
// available as the server emits them; the channel is closed after the final
// chunk. Metrics is nil until the channel has been closed. Cancelling the
// context passed to ChatStream closes the underlying connection.
type ChatStream struct {
	tokens  chan string
	metrics *Metrics
	err     error
}

// Tokens returns the channel of generated text fragments.
func (s *ChatStream) Tokens() <-chan string {
	return s.tokens
}

// Metrics returns the generation counters, or nil if the stream has not
// finished yet.
func (s *ChatStream) Metrics() *Metrics {
	return s.metrics
}

// Err returns the terminal error of the stream, if any. Only valid after the
// token channel has been closed.
func (s *ChatStream) Err() error {
	return s.err
}

// Client represents an Ollama API client
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Ollama API client
func NewClient(baseURL string, c *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	return &Client{
		httpClient: c,
		baseURL:    baseURL,
	}
}

// GetEmbeddings generates embedding vectors for a batch of texts in one call
func (c *Client) GetEmbeddings(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	reqBody := EmbedRequest{
		Model: model,
		Input: inputs,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/embed", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if len(result.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w", len(inputs), len(result.Embeddings), ErrNoEmbeddings)
	}

	return result.Embeddings, nil
}

// GetEmbedding generates an embedding vector for a single text
func (c *Client) GetEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	embeddings, err := c.GetEmbeddings(ctx, model, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return embeddings[0], nil
}

// ChatStream starts a streaming chat generation with the given system and
// user prompts. It never returns an error directly: a connection failure is
// delivered as a single human-readable token on the stream so the caller can
// forward it through the same channel as a normal answer.
func (c *Client) ChatStream(ctx context.Context, model, system, prompt string, options map[string]interface{}) *ChatStream {
	stream := &ChatStream{
		tokens: make(chan string),
	}

	go func() {
		defer close(stream.tokens)

		reqBody := ChatRequest{
			Model: model,
			Messages: []ChatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
			Stream:  true,
			Options: options,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			stream.err = fmt.Errorf("error marshaling request: %w", err)
			stream.emit(ctx, "Unexpected error while preparing the request.")
			return
		}

		url := fmt.Sprintf("%s/chat", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			stream.err = fmt.Errorf("error creating request: %w", err)
			stream.emit(ctx, "Unexpected error while preparing the request.")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Error(err, "failed to make request to ollama")
			stream.err = fmt.Errorf("error making request: %w", err)
			stream.emit(ctx, ConnectionErrorToken)
			return
		}
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				if err == io.EOF {
					return
				}
				if ctx.Err() != nil {
					stream.err = ctx.Err()
					return
				}
				stream.err = fmt.Errorf("error reading response: %w", err)
				stream.emit(ctx, "Unexpected error while reading the model response.")
				return
			}

			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var response ChatResponse
			if err := json.Unmarshal(line, &response); err != nil {
				log.Error(err, "failed to unmarshal response line", "line", string(line))
				stream.err = fmt.Errorf("error unmarshaling response: %w", err)
				stream.emit(ctx, "Unexpected error while reading the model response.")
				return
			}

			if response.Done {
				stream.metrics = &Metrics{
					PromptTokens:  response.PromptEvalCount,
					OutputTokens:  response.EvalCount,
					TotalDuration: time.Duration(response.TotalDuration),
					EvalDuration:  time.Duration(response.EvalDuration),
				}
				return
			}

			if !stream.emit(ctx, response.Message.Content) {
				// Consumer went away. Closing the body tears down the
				// connection so the server stops generating.
				resp.Body.Close()
				stream.err = ctx.Err()
				return
			}
		}
	}()

	return stream
}

// emit delivers one token unless the consumer has cancelled.
func (s *ChatStream) emit(ctx context.Context, token string) bool {
	select {
	case s.tokens <- token:
		return true
	case <-ctx.Done():
		return false
	}
}

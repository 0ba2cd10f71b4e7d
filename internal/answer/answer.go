// Package answer generates answers to detected questions through an
// OpenAI-compatible chat endpoint, typically a local Ollama server.
package answer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "You are a helpful assistant. Provide concise, direct answers to questions. Keep responses brief and to the point."

// Generator answers questions with a single chat completion per call.
type Generator struct {
	client    oai.Client
	model     string
	maxTokens int
}

// config holds optional configuration for the generator.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Generator.
type Option func(*config)

// WithBaseURL points the client at an OpenAI-compatible endpoint, e.g.
// Ollama's http://localhost:11434/v1.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a Generator for the given model.
func New(apiKey, model string, maxTokens int, opts ...Option) (*Generator, error) {
	if model == "" {
		return nil, fmt.Errorf("answer: model must not be empty")
	}
	if maxTokens <= 0 {
		maxTokens = 150
	}

	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Generator{
		client:    oai.NewClient(reqOpts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate answers one question, optionally grounded in recent
// conversation context. An empty answer with nil error means the model
// produced nothing usable.
func (g *Generator) Generate(ctx context.Context, question, conversation string) (string, error) {
	prompt := buildPrompt(question, conversation)

	resp, err := g.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: oai.ChatModel(g.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(prompt),
		},
		MaxTokens:   oai.Int(int64(g.maxTokens)),
		Temperature: oai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("answer: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Healthy reports whether the endpoint responds to a model listing.
func (g *Generator) Healthy(ctx context.Context) bool {
	_, err := g.client.Models.List(ctx)
	return err == nil
}

func buildPrompt(question, conversation string) string {
	if conversation != "" {
		return fmt.Sprintf(`Based on the following conversation context, provide a concise and direct answer to the question.

Context: %s

Question: %s

Answer:`, conversation, question)
	}
	return fmt.Sprintf(`Provide a concise and direct answer to the following question.

Question: %s

Answer:`, question)
}

package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/dreamvision/internal/domain/dream"
	"github.com/yanqian/dreamvision/internal/infra/llm/chatgpt"
	"github.com/yanqian/dreamvision/pkg/metrics"
)

const defaultSystemPrompt = "You are an expert dream analyst with knowledge of psychology, symbolism, and astrology. Provide insightful, personalized dream interpretations."

// Config tunes the remote generator.
type Config struct {
	Model           string
	Temperature     float32
	MaxTokens       int
	SystemPrompt    string
	MaxPromptTokens int
}

// ChatClient is the subset of the chat API the generator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Generator asks a chat model for an interpretation.
type Generator struct {
	cfg     Config
	client  ChatClient
	counter TokenCounter
	logger  *slog.Logger
}

var _ dream.RemoteGenerator = (*Generator)(nil)

// NewGenerator builds a remote generator over client.
func NewGenerator(cfg Config, client ChatClient, counter TokenCounter, logger *slog.Logger) *Generator {
	if counter == nil {
		counter = approxCounter{}
	}
	return &Generator{
		cfg:     cfg,
		client:  client,
		counter: counter,
		logger:  logger.With("component", "interpreter.generator"),
	}
}

// Generate never returns an error value; every problem is a failure reason.
func (g *Generator) Generate(ctx context.Context, req dream.RemoteRequest) dream.RemoteResult {
	content := req.Content
	if limit := g.cfg.MaxPromptTokens; limit > 0 {
		if n := g.counter.Count(content); n > limit {
			content = g.counter.Truncate(content, limit)
			g.logger.Info("dream content trimmed for prompt", "tokens", n, "limit", limit)
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: g.systemPrompt()},
			{Role: "user", Content: buildPrompt(req, content)},
		},
		Temperature:    g.cfg.Temperature,
		MaxTokens:      g.cfg.MaxTokens,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return dream.RemoteFailure(classify(err), err)
	}
	if len(resp.Choices) == 0 {
		return dream.RemoteFailure(dream.FailureMalformedResponse, errors.New("chatgpt returned no choices"))
	}

	interp, err := parseInterpretation(resp.Choices[0].Message.Content)
	if err != nil {
		return dream.RemoteFailure(dream.FailureMalformedResponse, err)
	}
	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return dream.RemoteSuccess(interp, usage)
}

func (g *Generator) systemPrompt() string {
	base := strings.TrimSpace(g.cfg.SystemPrompt)
	if base == "" {
		base = defaultSystemPrompt
	}
	return base
}

func classify(err error) dream.FailureReason {
	switch {
	case chatgpt.IsStatusError(err):
		return dream.FailureUpstreamStatus
	case errors.Is(err, context.DeadlineExceeded):
		return dream.FailureTimeout
	default:
		return dream.FailureTransport
	}
}

func buildPrompt(req dream.RemoteRequest, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this dream for a %d-year-old %s %s:\n\n", req.Age, req.Sex, req.Sign)
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	fmt.Fprintf(&b, "Content: %s\n", content)
	fmt.Fprintf(&b, "Mood: %d/5\n", req.Mood)
	fmt.Fprintf(&b, "Lucidity: %d/5\n\n", req.Lucidity)
	b.WriteString("Please provide a comprehensive analysis including:\n")
	b.WriteString("1. Overview (2-3 sentences)\n")
	b.WriteString("2. Key symbols and their meanings\n")
	b.WriteString("3. Main themes\n")
	b.WriteString("4. Emotions present\n")
	b.WriteString("5. Personalized insights based on their profile\n")
	fmt.Fprintf(&b, "6. Connection to their %s horoscope\n", req.Sign)
	b.WriteString("7. Psychological meaning\n\n")
	b.WriteString(`Respond ONLY with valid JSON using this shape: {"overview":string,"symbols":[{"symbol":string,"meaning":string,"personalRelevance":string}],"themes":string[],"emotions":string[],"personalizedInsights":string[],"horoscopeConnection":string,"psychologicalMeaning":string}.`)
	return b.String()
}

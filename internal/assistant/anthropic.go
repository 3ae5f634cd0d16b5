package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	explainTemperature = 0.5
	answerTemperature  = 0.7
)

// AnthropicConfig configures AnthropicGenerator.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
	Timeout   time.Duration
}

// AnthropicGenerator generates text with Claude through the Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

func NewAnthropicGenerator(cfg AnthropicConfig, log *slog.Logger) *AnthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		log:       log,
	}
}

// complete sends a single-turn prompt. A zero temperature keeps the API default.
func (g *AnthropicGenerator) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	start := time.Now()
	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm api call: %w", err)
	}
	g.log.Debug("llm call finished",
		slog.String("model", g.model),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int64("output_tokens", msg.Usage.OutputTokens))

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("empty response from %s", g.model)
	}
	return text, nil
}

func (g *AnthropicGenerator) DailyVerse(ctx context.Context) (DailyVerse, error) {
	out, err := g.complete(ctx, dailyVersePrompt, 0)
	if err != nil {
		return DailyVerse{}, err
	}
	return parseDailyVerse(out)
}

func (g *AnthropicGenerator) Explain(ctx context.Context, reference, text string) (string, error) {
	return g.complete(ctx, explainPrompt(reference, text), explainTemperature)
}

func (g *AnthropicGenerator) Answer(ctx context.Context, question string) (string, error) {
	return g.complete(ctx, answerPrompt(question), answerTemperature)
}

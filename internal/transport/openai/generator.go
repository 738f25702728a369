package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/usecase/explain"
)

const (
	generationMaxTokens   = 60
	generationTemperature = 0.7

	systemPrompt = "You are a helpful shopping assistant that explains product rankings concisely."
)

// Generator produces explanation sentences via an OpenAI-compatible
// chat completions API.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// GeneratorConfig holds the text generation provider settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewGenerator creates a chat-completion text generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

var _ explain.TextGenerator = (*Generator)(nil)

// Generate implements explain.TextGenerator. Timeout and concurrency
// bounds are enforced by the caller through ctx.
func (g *Generator) Generate(ctx context.Context, req explain.GenerationRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(req explain.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User searched for: %q\n", req.Query)
	fmt.Fprintf(&b, "Product ranked #%d:\n", req.Rank)
	fmt.Fprintf(&b, "- Title: %s\n", req.Product.Title)
	fmt.Fprintf(&b, "- Category: %s\n", req.Product.Category)
	fmt.Fprintf(&b, "- Brand: %s\n", req.Product.Brand)
	fmt.Fprintf(&b, "- Price: $%.2f\n", req.Product.Price)
	fmt.Fprintf(&b, "- Rating: %.1f stars (%d reviews)\n", req.Product.Rating, req.Product.ReviewCount)
	fmt.Fprintf(&b, "\nRanking scores:\n")
	fmt.Fprintf(&b, "- Query match: %.0f%%\n", req.Scores.Semantic*100)
	fmt.Fprintf(&b, "- Price competitiveness: %.0f%%\n", req.Scores.Price*100)
	fmt.Fprintf(&b, "- Popularity: %.0f%%\n", req.Scores.Popularity*100)
	fmt.Fprintf(&b, "\nWrite a single, concise sentence (max 20 words) explaining why this ")
	fmt.Fprintf(&b, "product is ranked #%d for this search. ", req.Rank)
	b.WriteString("Focus on the most relevant factors. Be specific and helpful. ")
	b.WriteString(`Do not use phrases like "This product" - start directly with the reason.`)
	return b.String()
}

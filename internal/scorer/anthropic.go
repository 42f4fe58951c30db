package scorer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicScorer calls the Claude messages API.
type AnthropicScorer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAnthropicScorer(apiKey, model string, maxTokens int) *AnthropicScorer {
	return &AnthropicScorer{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

func (s *AnthropicScorer) Rank(ctx context.Context, jobDescription string, docs []Document) (*Ranking, error) {
	prompt := BuildPrompt(jobDescription, docs)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("anthropic messages: empty response")
	}

	return ParseRanking(msg.Content[0].Text)
}

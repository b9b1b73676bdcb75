package repository

import (
	"context"
	"fmt"

	"github.com/ayush6624/go-chatgpt"
)

type NarrativeRepository interface {
	// GenerateMarketCommentary turns the computed loan metrics prompt
	// into free-text market analysis and an interest rate narrative.
	// Opaque (prompt, data) -> text; nothing numeric depends on it.
	GenerateMarketCommentary(ctx context.Context, prompt string) (string, error)
}

type narrativeRepositoryHandler struct {
	GptClient *chatgpt.Client
}

func NewNarrativeRepository(apiKey string) (NarrativeRepository, error) {
	client, err := chatgpt.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to construct gpt client: %w", err)
	}

	return narrativeRepositoryHandler{
		GptClient: client,
	}, nil
}

const systemPrompt = `
You are a professional crypto financial analyst. The user provides a crypto collateral portfolio together with pre-calculated loan metrics and current market data.

Based on the provided pre-calculated loan metrics and market conditions:

1. Analyze the current market conditions of the coins the user holds
2. Explain the appropriate interest rate using:
   - Base rate (Federal funds rate): 4.33%
   - Aetherum premium: 2%
   - Risk premium based on the provided risk tiers
   - Volatility premium (1% if volatility > 10%)
3. Generate a detailed market analysis report

DO NOT perform any LTV or loan amount calculations - use the provided values.

The format of the output should be:

**Insights into the current market conditions**
  A brief overview of current market conditions for the coins the user owns.
**Interest rate determined based on the current market conditions**
  The interest rate determined from current conditions, and the loan details.
`

func (h narrativeRepositoryHandler) GenerateMarketCommentary(ctx context.Context, prompt string) (string, error) {
	response, err := h.GptClient.Send(ctx, &chatgpt.ChatCompletionRequest{
		Model: chatgpt.GPT35Turbo,
		Messages: []chatgpt.ChatMessage{
			{
				Role:    chatgpt.ChatGPTModelRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    chatgpt.ChatGPTModelRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate market commentary: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("market commentary response had no choices")
	}

	return response.Choices[0].Message.Content, nil
}

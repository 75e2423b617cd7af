package rewrite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// openAIFallback is the second rewrite provider, used when Gemini is down or
// returns garbage. Same prompt, same labeled response format.
type openAIFallback struct {
	client *openai.Client
}

func newOpenAIFallback(apiKey string) *openAIFallback {
	return &openAIFallback{client: openai.NewClient(apiKey)}
}

func (f *openAIFallback) rewrite(ctx context.Context, prompt string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: 2000,
	})
	if err != nil {
		return "", "", err
	}
	if len(resp.Choices) == 0 {
		return "", "", errors.New("no response from OpenAI")
	}

	return parseResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
}

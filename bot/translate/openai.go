package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ChatCompleter is the slice of the OpenAI client this backend needs.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient backs the translation boundary with a chat-completion model.
type OpenAIClient struct {
	completer  ChatCompleter
	targetLang string
}

// NewOpenAIClient creates a translator producing text in targetLang
// (ISO 639-1 code).
func NewOpenAIClient(completer ChatCompleter, targetLang string) *OpenAIClient {
	return &OpenAIClient{completer: completer, targetLang: targetLang}
}

func (c *OpenAIClient) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	response, err := c.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional translator. Translate text accurately while preserving the original meaning and tone. Return only the translation, no explanations.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate the following text to %s:\n\n%s", languageName(c.targetLang), text),
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: %v", ErrTranslation, errors.New("no choices found in response"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func languageName(code string) string {
	switch code {
	case "km":
		return "Khmer"
	case "en":
		return "English"
	case "ko":
		return "Korean"
	case "zh":
		return "Chinese"
	case "id":
		return "Indonesian"
	default:
		return code
	}
}

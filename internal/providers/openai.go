package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates text through the OpenAI chat completions API.
type OpenAIProvider struct {
	keyName string
	model   string
	client  *openai.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	model := os.Getenv("EDUPLATFORM_OPENAI_MODEL")
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	p := &OpenAIProvider{keyName: keyName, model: model}
	if key := resolveOpenAIKey(keyName); key != "" {
		p.client = openai.NewClient(key)
	}
	return p
}

func (o *OpenAIProvider) Configured() bool {
	return o.client != nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Key: o.keyName, Model: o.model}
	if o.client == nil {
		return GenerateResponse{}, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	})
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("openai request failed: %w", transportCause(err))
	}
	if len(resp.Choices) == 0 {
		return GenerateResponse{}, info, fmt.Errorf("openai returned empty choices")
	}
	return GenerateResponse{Text: resp.Choices[0].Message.Content}, info, nil
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("EDUPLATFORM_OPENAI_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}

package inference

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const (
	// InferenceBaseURL is the DigitalOcean serverless inference endpoint (OpenAI compatible)
	InferenceBaseURL = "https://inference.do-ai.run/v1"
	// DefaultInferenceModel is the default model for question generation
	DefaultInferenceModel = "openai-gpt-oss-120b"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions API
type OpenAIProvider struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
}

// OpenAIConfig holds configuration for the OpenAI-compatible provider
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	HTTPClient  *http.Client
	Temperature float32
	MaxTokens   int
}

// NewOpenAIProvider creates a provider; an empty BaseURL selects DigitalOcean inference
func NewOpenAIProvider(config OpenAIConfig) *OpenAIProvider {
	cfg := openai.DefaultConfig(config.APIKey)
	cfg.BaseURL = InferenceBaseURL
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		cfg.HTTPClient = config.HTTPClient
	}
	if config.Temperature == 0 {
		config.Temperature = 0.3
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 4096
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Model returns a handle bound to the named model
func (p *OpenAIProvider) Model(name string) (Model, error) {
	if name == "" {
		return nil, errors.New("model name is required")
	}
	return &openAIModel{provider: p, name: name}, nil
}

type openAIModel struct {
	provider *OpenAIProvider
	name     string
}

func (m *openAIModel) Generate(ctx context.Context, req Request) (string, error) {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Attachments) == 0 {
		message.Content = req.Prompt
	} else {
		parts := []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		}}
		for _, att := range req.Attachments {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", att.MIMEType, base64.StdEncoding.EncodeToString(att.Data)),
					Detail: openai.ImageURLDetailHigh,
				},
			})
		}
		message.MultiContent = parts
	}

	resp, err := m.provider.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.name,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: m.provider.temperature,
		MaxTokens:   m.provider.maxTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps go-openai errors onto APIError so the client can
// decide whether to retry
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Provider: "openai", StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}
	return err
}

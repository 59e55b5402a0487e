package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultGeminiModel is the default Gemini model for question generation
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider generates content through the Gemini API
type GeminiProvider struct {
	client      *genai.Client
	temperature float32
}

// NewGeminiProvider opens a Gemini client with the given API key
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, temperature: 0.3}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Model returns a configured GenerativeModel handle
func (p *GeminiProvider) Model(name string) (Model, error) {
	if name == "" {
		return nil, errors.New("model name is required")
	}
	gm := p.client.GenerativeModel(strings.TrimPrefix(name, "models/"))
	gm.SetTemperature(p.temperature)
	return &geminiModel{model: gm, name: name}, nil
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

type geminiModel struct {
	model *genai.GenerativeModel
	name  string
}

func (m *geminiModel) Generate(ctx context.Context, req Request) (string, error) {
	parts := []genai.Part{genai.Text(req.Prompt)}
	for _, att := range req.Attachments {
		parts = append(parts, genai.Blob{MIMEType: att.MIMEType, Data: att.Data})
	}

	resp, err := m.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// classifyGeminiError maps REST and gRPC failures onto APIError status codes
func classifyGeminiError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &APIError{Provider: "gemini", StatusCode: gErr.Code, Message: gErr.Message, Err: err}
	}
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return &APIError{Provider: "gemini", StatusCode: http.StatusTooManyRequests, Message: err.Error(), Err: err}
	case codes.Unavailable:
		return &APIError{Provider: "gemini", StatusCode: http.StatusServiceUnavailable, Message: err.Error(), Err: err}
	}
	return err
}

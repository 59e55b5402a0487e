package ocr

import (
	"context"
	"strings"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/inference"
)

// Generator is the part of the model client the vision strategy needs
type Generator interface {
	Generate(ctx context.Context, req inference.Request, modelName string) (string, error)
}

// VisionStrategy transcribes an image with a vision-capable model
type VisionStrategy struct {
	generator Generator
	model     string
}

// NewVisionStrategy creates the vision fallback; an empty model uses the client default
func NewVisionStrategy(generator Generator, modelName string) *VisionStrategy {
	return &VisionStrategy{generator: generator, model: modelName}
}

func (v *VisionStrategy) Name() string { return "vision-model" }

func (v *VisionStrategy) Recognize(ctx context.Context, img Image, opts Options) (string, error) {
	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	text, err := v.generator.Generate(ctx, inference.Request{
		Prompt:      visionPrompt(opts),
		Attachments: []inference.Attachment{{MIMEType: mimeType, Data: img.Data}},
	}, v.model)
	if err != nil {
		return "", err
	}
	return stripFences(text), nil
}

// stripFences removes a markdown fence some models wrap transcriptions in
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " \t") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func visionPrompt(opts Options) string {
	bengali := opts.Language == model.LanguageBengali
	switch {
	case opts.QuestionPaper && bengali:
		return "এই ছবিটি একটি বাংলা প্রশ্নপত্র। ছবির সমস্ত লেখা হুবহু লিখে দাও। " +
			"প্রশ্নের নম্বর (১, ২, ৩ ...) এবং অপশনের চিহ্ন (ক, খ, গ, ঘ) যেমন আছে ঠিক তেমন রাখো। " +
			"প্রতিটি প্রশ্ন ও প্রতিটি অপশন আলাদা লাইনে লেখো। অনুবাদ করবে না, বাংলা লিপি বজায় রাখো। " +
			"শুধু লেখাটুকু দাও, কোনো ব্যাখ্যা নয়।"
	case opts.QuestionPaper:
		return "This image is an exam question paper. Transcribe all of its text exactly. " +
			"Keep every question number (1., 2., Q3 ...) and every option marker (A), B), C), D) or ক), খ) ...) exactly as printed. " +
			"Put each question and each option on its own line. Do not translate; keep the original script. " +
			"Return only the transcribed text with no commentary."
	case bengali:
		return "এই ছবির সমস্ত বাংলা ও ইংরেজি লেখা হুবহু লিখে দাও। অনুচ্ছেদ ও লাইনের ক্রম বজায় রাখো। " +
			"অনুবাদ করবে না। শুধু লেখাটুকু দাও।"
	default:
		return "Extract all text from this image exactly as written. Preserve paragraphs and reading order. " +
			"Do not translate or summarize. Return only the extracted text."
	}
}

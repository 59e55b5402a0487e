package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/config"
	"github.com/sahilchouksey/quiz-brain/services/chunker"
	"github.com/sahilchouksey/quiz-brain/services/classifier"
	"github.com/sahilchouksey/quiz-brain/services/generator"
	"github.com/sahilchouksey/quiz-brain/services/inference"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
	"github.com/sahilchouksey/quiz-brain/services/pipeline"
)

// Components are the pipeline dependencies shared by the server and the CLI
type Components struct {
	Pipeline  *pipeline.Pipeline
	Model     *inference.Client
	OCR       *ocr.OCRClient
	OCREngine *ocr.Engine
}

// PipelineConfig maps the environment onto the pipeline settings
func PipelineConfig(env *config.EnviornmentVariable, client *inference.Client) pipeline.Config {
	return pipeline.Config{
		Classifier: classifier.Config{
			MinTextLength: env.MIN_TEXT_LENGTH,
			SamplePages:   classifier.DefaultSamplePages,
		},
		Chunker:       chunker.DefaultConfig(),
		Model:         client.DefaultModel(),
		MaxConcurrent: env.MAX_CONCURRENT_CHUNKS,
		QuestionPaper: generator.QuestionPaperConfig{
			DirectMaxWords:    generator.DefaultDirectMaxWords,
			DirectPDFMaxBytes: generator.DefaultDirectPDFMaxBytes,
			AttachPDF:         client.ProviderName() == "gemini",
		},
	}
}

// BuildComponents wires the model client, OCR engine and pipeline
func BuildComponents(ctx context.Context, env *config.EnviornmentVariable) (*Components, error) {
	client, err := inference.NewClientFromEnv(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	// The vision fallback always follows local OCR; without VISION_MODEL it
	// runs on the client's default model
	ocrClient := ocr.NewOCRClient(env.OCR_SERVICE_URL, env.OCR_TIMEOUT)
	visionModel := env.VISION_MODEL
	if visionModel == "" {
		visionModel = client.DefaultModel()
	}
	engine := ocr.NewEngine(env.OCR_TIMEOUT, ocrClient, ocr.NewVisionStrategy(client, visionModel))

	log.Infof("App: model provider=%s model=%s vision=%s ocr=%s (%s)", client.ProviderName(), client.DefaultModel(),
		visionModel, env.OCR_SERVICE_URL, strings.Join(engine.StrategyNames(), " -> "))

	return &Components{
		Pipeline:  pipeline.New(client, engine, PipelineConfig(env, client)),
		Model:     client,
		OCR:       ocrClient,
		OCREngine: engine,
	}, nil
}

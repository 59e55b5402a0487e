package ocr

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/utils/fallback"
)

// Image is a raster image handed to OCR
type Image struct {
	Data     []byte
	MIMEType string
	Name     string
}

func (img Image) fileName() string {
	if img.Name != "" {
		return filepath.Base(img.Name)
	}
	switch img.MIMEType {
	case "image/jpeg":
		return "page.jpg"
	case "image/tiff":
		return "page.tiff"
	}
	return "page.png"
}

// Options tailors recognition to the document
type Options struct {
	Language      model.Language
	QuestionPaper bool
}

// Strategy is one way of turning an image into text
type Strategy interface {
	Name() string
	Recognize(ctx context.Context, img Image, opts Options) (string, error)
}

// Result is recognized text plus the strategy that produced it
type Result struct {
	Text     string
	Strategy string
	Attempts []string
}

// Recognizer is what extractors and the classifier depend on
type Recognizer interface {
	Recognize(ctx context.Context, img Image, opts Options) (Result, error)
}

// Engine tries the primary strategy and then exactly one fallback.
// A strategy that errors or returns only whitespace counts as failed.
type Engine struct {
	strategies  []Strategy
	callTimeout time.Duration
}

// NewEngine builds an engine from strategies in priority order
func NewEngine(callTimeout time.Duration, strategies ...Strategy) *Engine {
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	return &Engine{strategies: strategies, callTimeout: callTimeout}
}

// StrategyNames lists the chain in the order it is tried
func (e *Engine) StrategyNames() []string {
	names := make([]string, len(e.strategies))
	for i, strategy := range e.strategies {
		names[i] = strategy.Name()
	}
	return names
}

// Recognize runs the chain and logs which strategy produced the text
func (e *Engine) Recognize(ctx context.Context, img Image, opts Options) (Result, error) {
	steps := make([]fallback.Step[string], 0, len(e.strategies))
	for _, strategy := range e.strategies {
		strategy := strategy
		steps = append(steps, fallback.Step[string]{
			Name: strategy.Name(),
			Run: func(ctx context.Context) (string, error) {
				callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
				defer cancel()
				return strategy.Recognize(callCtx, img, opts)
			},
		})
	}

	text, outcome, err := fallback.Run(ctx, func(s string) bool { return strings.TrimSpace(s) != "" }, steps...)
	if err != nil {
		log.Errorf("OCR Engine: all strategies failed for %s (tried %s): %v", img.fileName(), strings.Join(outcome.Attempts, ", "), err)
		return Result{Attempts: outcome.Attempts}, &model.ExtractionError{Strategy: "ocr", Err: err}
	}

	if len(outcome.Attempts) > 1 {
		log.Warnf("OCR Engine: %s produced %d chars for %s after %d attempts",
			outcome.Winner, len(text), img.fileName(), len(outcome.Attempts))
	} else {
		log.Infof("OCR Engine: %s produced %d chars for %s", outcome.Winner, len(text), img.fileName())
	}

	return Result{Text: strings.TrimSpace(text), Strategy: outcome.Winner, Attempts: outcome.Attempts}, nil
}

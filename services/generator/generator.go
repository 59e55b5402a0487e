// Package generator asks the model for questions, one call per chunk, and
// handles question papers with a direct call or local regex extraction.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/chunker"
	"github.com/sahilchouksey/quiz-brain/services/inference"
	"github.com/sahilchouksey/quiz-brain/services/prompts"
)

// DefaultMaxConcurrent bounds in-flight chunk calls per job
const DefaultMaxConcurrent = 3

// ErrNoQuota is returned when no chunk was assigned any question
var ErrNoQuota = errors.New("no chunk was assigned questions")

// ModelClient is the part of the rate-limited client the generator needs
type ModelClient interface {
	Generate(ctx context.Context, req inference.Request, modelName string) (string, error)
}

// Config configures the generator
type Config struct {
	Model         string // empty uses the client default
	MaxConcurrent int
}

// Generator renders a prompt per chunk and collects the raw model output
type Generator struct {
	client        ModelClient
	registry      *prompts.Registry
	model         string
	maxConcurrent int
}

// New creates a generator
func New(client ModelClient, registry *prompts.Registry, cfg Config) *Generator {
	if registry == nil {
		registry = prompts.NewRegistry()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Generator{
		client:        client,
		registry:      registry,
		model:         cfg.Model,
		maxConcurrent: cfg.MaxConcurrent,
	}
}

// ChunkOutput is the raw response for one chunk. Err is a GenerationError
// when every retry and the fallback model failed for this chunk.
type ChunkOutput struct {
	Chunk int
	Quota int
	Raw   string
	Err   error
}

// Generate fans out one call per chunk with a positive quota, at most
// maxConcurrent at a time. Outputs keep chunk order. A failed chunk only
// loses its own contribution; the returned error is set when every chunk
// failed.
func (g *Generator) Generate(ctx context.Context, chunks []chunker.Chunk, quotas []int, job model.GenerationJob) ([]ChunkOutput, error) {
	if len(chunks) != len(quotas) {
		return nil, fmt.Errorf("got %d quotas for %d chunks", len(quotas), len(chunks))
	}

	key := prompts.KeyFor(job)
	outputs := make([]ChunkOutput, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if quotas[i] > 0 {
			outputs = append(outputs, ChunkOutput{Chunk: chunk.Index, Quota: quotas[i]})
			texts = append(texts, chunk.Text)
		}
	}
	if len(outputs) == 0 {
		return nil, &model.GenerationError{Model: g.model, Err: ErrNoQuota}
	}

	log.Infof("Generator: generating %d questions from %d chunks with template %s (max %d concurrent)",
		sum(quotas), len(outputs), key, g.maxConcurrent)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, g.maxConcurrent)

	for idx := range outputs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			out := &outputs[idx]
			prompt, err := g.registry.Render(key, prompts.Data{
				Text:          texts[idx],
				Count:         out.Quota,
				AnswerOptions: job.AnswerOptionCount,
			})
			if err != nil {
				out.Err = &model.GenerationError{Model: g.model, Chunk: out.Chunk + 1, Err: err}
				return
			}

			raw, err := g.client.Generate(ctx, inference.Request{Prompt: prompt}, g.model)
			if err != nil {
				out.Err = asGenerationError(err, g.model, out.Chunk+1)
				log.Warnf("Generator: chunk %d/%d failed: %v", out.Chunk+1, len(chunks), out.Err)
				return
			}
			out.Raw = raw
		}(idx)
	}
	wg.Wait()

	var errs []error
	for _, out := range outputs {
		if out.Err != nil {
			errs = append(errs, out.Err)
		}
	}
	if len(errs) == len(outputs) {
		return outputs, &model.GenerationError{Model: g.model, Err: fmt.Errorf("all %d chunks failed: %w", len(outputs), errors.Join(errs...))}
	}
	if len(errs) > 0 {
		log.Warnf("Generator: %d/%d chunks failed, continuing with the rest", len(errs), len(outputs))
	}
	return outputs, nil
}

// asGenerationError tags a client error with the chunk it belongs to
func asGenerationError(err error, modelName string, chunk int) error {
	var genErr *model.GenerationError
	if errors.As(err, &genErr) {
		tagged := *genErr
		tagged.Chunk = chunk
		return &tagged
	}
	return &model.GenerationError{Model: modelName, Chunk: chunk, Err: err}
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

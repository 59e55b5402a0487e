// Package pipeline runs a document through classification, extraction,
// generation and parsing, one stage at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/chunker"
	"github.com/sahilchouksey/quiz-brain/services/classifier"
	"github.com/sahilchouksey/quiz-brain/services/extraction"
	"github.com/sahilchouksey/quiz-brain/services/generator"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
	"github.com/sahilchouksey/quiz-brain/services/parser"
	"github.com/sahilchouksey/quiz-brain/services/prompts"
)

// TextSourceName names artifacts built from raw text input
const TextSourceName = "text-input"

// Input describes one job. Exactly one of Path and Text is set.
type Input struct {
	Path           string
	Text           string
	SourceName     string
	Language       model.Language // auto, english or bengali
	QuestionType   model.QuestionType
	AnswerOptions  int
	RequestedCount int // 0 lets the document length decide
}

// Config wires the pipeline components
type Config struct {
	Classifier    classifier.Config
	Chunker       chunker.Config
	Model         string
	MaxConcurrent int
	QuestionPaper generator.QuestionPaperConfig
	Ladder        *extraction.Ladder // nil uses the default rasterizers
}

// Result is a completed job
type Result struct {
	Artifact model.Artifact
	Metadata model.DocumentMetadata
	Strategy string // question-paper strategy, empty for context documents
}

// Pipeline is safe for concurrent use; every Run keeps its state local
type Pipeline struct {
	classifier *classifier.Classifier
	extractors *extraction.Factory
	chunker    *chunker.Chunker
	generator  *generator.Generator
	papers     *generator.QuestionPaperExtractor
	now        func() time.Time
}

// New builds a pipeline around the shared model client and OCR engine
func New(client generator.ModelClient, recognizer ocr.Recognizer, cfg Config) *Pipeline {
	ladder := cfg.Ladder
	if ladder == nil {
		ladder = extraction.DefaultLadder()
	}
	registry := prompts.NewRegistry()
	if cfg.QuestionPaper.Model == "" {
		cfg.QuestionPaper.Model = cfg.Model
	}

	return &Pipeline{
		classifier: classifier.New(recognizer, ladder, cfg.Classifier),
		extractors: extraction.NewFactory(recognizer, ladder),
		chunker:    chunker.New(cfg.Chunker),
		generator: generator.New(client, registry, generator.Config{
			Model:         cfg.Model,
			MaxConcurrent: cfg.MaxConcurrent,
		}),
		papers: generator.NewQuestionPaperExtractor(client, registry, cfg.QuestionPaper),
		now:    time.Now,
	}
}

// run is the state of one job
type run struct {
	jobID    string
	stage    model.JobStage
	observer Observer
	work     context.Context
	meta     *model.DocumentMetadata
}

// advance checks for cancellation and moves to the next stage
func (r *run) advance(ctx context.Context, to model.JobStage, message string) error {
	if ctx.Err() != nil {
		return r.fail("cancelled", model.ErrCancelled)
	}
	if !model.CanTransition(r.stage, to) {
		return r.fail(fmt.Sprintf("invalid transition %s -> %s", r.stage, to), nil)
	}
	from := r.stage
	r.stage = to
	r.observer.Observe(r.work, Event{JobID: r.jobID, From: from, To: to, Message: message, Metadata: r.meta})
	return nil
}

// fail ends the job at the current stage
func (r *run) fail(reason string, err error) error {
	failure := &model.JobFailure{Stage: r.stage, Reason: reason, Err: err}
	from := r.stage
	r.stage = model.StageFailed
	r.observer.Observe(r.work, Event{JobID: r.jobID, From: from, To: model.StageFailed, Message: reason, Metadata: r.meta, Failure: failure})
	log.Errorf("Pipeline: job %s %v", r.jobID, failure)
	return failure
}

// Run executes every stage for one job. Cancelling ctx stops the job at the
// next stage boundary; calls already in flight run to completion on a
// detached context and their results are discarded. The returned error is
// always a *model.JobFailure.
func (p *Pipeline) Run(ctx context.Context, jobID string, in Input, observer Observer) (*Result, error) {
	if observer == nil {
		observer = LogObserver{}
	}
	r := &run{
		jobID:    jobID,
		stage:    model.StagePending,
		observer: observer,
		work:     context.WithoutCancel(ctx),
	}
	start := p.now()

	if in.Path == "" && strings.TrimSpace(in.Text) == "" {
		return nil, r.fail("no input document", errors.New("either a path or text is required"))
	}

	// Classifying
	if err := r.advance(ctx, model.StageClassifying, "classifying document"); err != nil {
		return nil, err
	}
	meta := p.classify(r.work, in)
	r.meta = &meta

	// Extracting
	if err := r.advance(ctx, model.StageExtracting, fmt.Sprintf("extracting %s document", meta.DocType)); err != nil {
		return nil, err
	}
	text, err := p.extract(r.work, in, meta)
	if err != nil {
		return nil, r.fail(err.Error(), err)
	}

	job := model.GenerationJob{
		Source:            sourceName(in),
		Language:          jobLanguage(meta.Language),
		DocumentType:      model.DocumentTypeContext,
		QuestionType:      in.QuestionType,
		AnswerOptionCount: in.AnswerOptions,
		RequestedCount:    in.RequestedCount,
	}
	if job.QuestionType == "" {
		job.QuestionType = model.QuestionTypeMultipleChoice
	}
	if meta.IsQuestionPaper {
		job.DocumentType = model.DocumentTypeQuestionPaper
	}

	var (
		records  []model.QuestionAnswer
		strategy string
	)
	if meta.IsQuestionPaper {
		records, strategy, err = p.runQuestionPaper(ctx, r, in, meta, text, job)
	} else {
		records, err = p.runContext(ctx, r, text, job)
	}
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, r.fail("cancelled", model.ErrCancelled)
	}
	if !model.CanTransition(r.stage, model.StageCompleted) {
		return nil, r.fail(fmt.Sprintf("invalid transition %s -> completed", r.stage), nil)
	}
	r.stage = model.StageCompleted
	r.observer.Observe(r.work, Event{
		JobID:         jobID,
		From:          model.StageParsing,
		To:            model.StageCompleted,
		Message:       fmt.Sprintf("generated %d questions", len(records)),
		Metadata:      r.meta,
		QuestionCount: len(records),
	})

	log.Infof("Pipeline: job %s completed with %d questions in %v", jobID, len(records), p.now().Sub(start).Round(time.Millisecond))

	return &Result{
		Artifact: model.Artifact{
			SourceDocument: job.Source,
			GeneratedAt:    p.now().UTC(),
			Questions:      records,
		},
		Metadata: meta,
		Strategy: strategy,
	}, nil
}

// runContext generates new questions chunk by chunk
func (p *Pipeline) runContext(ctx context.Context, r *run, text string, job model.GenerationJob) ([]model.QuestionAnswer, error) {
	chunks := p.chunker.Split(text)
	total := job.RequestedCount
	if total <= 0 {
		total = chunker.OptimalQuestionCount(len(chunker.Words(text)))
	}
	quotas := chunker.Distribute(total, len(chunks))

	if err := r.advance(ctx, model.StageGenerating, fmt.Sprintf("generating %d questions from %d chunks", total, len(chunks))); err != nil {
		return nil, err
	}
	outputs, err := p.generator.Generate(r.work, chunks, quotas, job)
	if err != nil {
		return nil, r.fail(err.Error(), err)
	}

	if err := r.advance(ctx, model.StageParsing, "parsing model responses"); err != nil {
		return nil, err
	}
	var records []model.QuestionAnswer
	for _, out := range outputs {
		if out.Err != nil {
			continue
		}
		parsed := parser.Parse(out.Raw, job.QuestionType, job.Language)
		if len(parsed) == 0 {
			log.Warnf("Pipeline: %v", &model.ParseError{Chunk: out.Chunk + 1, Length: len(out.Raw)})
			continue
		}
		records = append(records, parsed...)
	}
	return p.finish(r, records, job.RequestedCount)
}

// runQuestionPaper extracts the existing questions of an exam paper
func (p *Pipeline) runQuestionPaper(ctx context.Context, r *run, in Input, meta model.DocumentMetadata, text string, job model.GenerationJob) ([]model.QuestionAnswer, string, error) {
	paper := generator.PaperInput{Text: text, Meta: meta, Job: job}
	if meta.DocType == model.DocTypePDF && in.Path != "" {
		if content, err := os.ReadFile(in.Path); err == nil {
			paper.PDF = content
		}
	}

	if err := r.advance(ctx, model.StageGenerating, "extracting questions from question paper"); err != nil {
		return nil, "", err
	}
	raw, err := p.papers.Direct(r.work, paper)
	if err != nil && !errors.Is(err, generator.ErrDirectNotApplicable) {
		log.Warnf("Pipeline: direct question-paper extraction failed for job %s, using regex extraction: %v", r.jobID, err)
	}

	if err := r.advance(ctx, model.StageParsing, "parsing question paper"); err != nil {
		return nil, "", err
	}
	records, strategy := p.papers.Records(raw, paper)
	log.Infof("Pipeline: question paper %s handled with %s strategy", meta.FileName, strategy)

	records, err = p.finish(r, records, job.RequestedCount)
	return records, strategy, err
}

// finish deduplicates and trims the records of the parsing stage
func (p *Pipeline) finish(r *run, records []model.QuestionAnswer, requested int) ([]model.QuestionAnswer, error) {
	records = parser.Dedup(records)
	if requested > 0 && len(records) > requested {
		records = records[:requested]
	}
	if len(records) == 0 {
		return nil, r.fail("no valid questions could be parsed", &model.ParseError{})
	}
	return records, nil
}

// classify builds metadata from the file, or from the text itself for raw
// text input. An explicit language hint replaces the detected language.
func (p *Pipeline) classify(ctx context.Context, in Input) model.DocumentMetadata {
	var meta model.DocumentMetadata
	if in.Path != "" {
		meta = p.classifier.Classify(ctx, in.Path)
	} else {
		lang := classifier.DetectLanguage(in.Text)
		meta = model.DocumentMetadata{
			FileName:        sourceName(in),
			FileSize:        int64(len(in.Text)),
			MimeType:        "text/plain",
			DocType:         model.DocTypeText,
			Language:        lang,
			IsQuestionPaper: classifier.IsQuestionPaper(in.Text, lang),
		}
	}

	if in.Language == model.LanguageEnglish || in.Language == model.LanguageBengali {
		meta.Language = in.Language
	}
	return meta
}

func (p *Pipeline) extract(ctx context.Context, in Input, meta model.DocumentMetadata) (string, error) {
	if in.Path == "" {
		return strings.TrimSpace(in.Text), nil
	}
	extractor, err := p.extractors.For(meta)
	if err != nil {
		return "", err
	}
	text, err := extractor.Extract(ctx, in.Path)
	if err != nil {
		var extractionErr *model.ExtractionError
		if !errors.As(err, &extractionErr) {
			err = &model.ExtractionError{Strategy: extractor.Name(), Err: err}
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &model.ExtractionError{Strategy: extractor.Name(), Err: errors.New("no text extracted")}
	}
	log.Infof("Pipeline: %s extracted %d characters from %s", extractor.Name(), len(text), meta.FileName)
	return text, nil
}

func sourceName(in Input) string {
	if in.SourceName != "" {
		return in.SourceName
	}
	if in.Path != "" {
		return filepath.Base(in.Path)
	}
	return TextSourceName
}

// jobLanguage picks the prompt language; undetected text is treated as English
func jobLanguage(lang model.Language) model.Language {
	if lang == model.LanguageBengali {
		return model.LanguageBengali
	}
	return model.LanguageEnglish
}

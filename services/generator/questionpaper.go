package generator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/chunker"
	"github.com/sahilchouksey/quiz-brain/services/inference"
	"github.com/sahilchouksey/quiz-brain/services/parser"
	"github.com/sahilchouksey/quiz-brain/services/prompts"
)

const (
	// DefaultDirectMaxWords is the longest paper sent whole to the model
	DefaultDirectMaxWords = 3000
	// DefaultDirectPDFMaxBytes caps raw PDF attachments
	DefaultDirectPDFMaxBytes = 15 << 20
	// minOptionMarkers turns a numbered segment into a multiple choice question
	minOptionMarkers = 3
)

// Question-paper strategies
const (
	StrategyDirect = "direct_model"
	StrategyRegex  = "regex"
)

// ErrDirectNotApplicable means the paper is too long for a single direct call
var ErrDirectNotApplicable = errors.New("document too long for direct extraction")

// QuestionPaperConfig configures the question-paper extractor
type QuestionPaperConfig struct {
	Model             string
	DirectMaxWords    int
	DirectPDFMaxBytes int
	AttachPDF         bool // provider accepts application/pdf attachments
}

// QuestionPaperExtractor pulls existing questions out of exam papers
type QuestionPaperExtractor struct {
	client            ModelClient
	registry          *prompts.Registry
	model             string
	directMaxWords    int
	directPDFMaxBytes int
	attachPDF         bool
}

// NewQuestionPaperExtractor creates the extractor. A nil client disables the
// direct strategy.
func NewQuestionPaperExtractor(client ModelClient, registry *prompts.Registry, cfg QuestionPaperConfig) *QuestionPaperExtractor {
	if registry == nil {
		registry = prompts.NewRegistry()
	}
	if cfg.DirectMaxWords <= 0 {
		cfg.DirectMaxWords = DefaultDirectMaxWords
	}
	if cfg.DirectPDFMaxBytes <= 0 {
		cfg.DirectPDFMaxBytes = DefaultDirectPDFMaxBytes
	}
	return &QuestionPaperExtractor{
		client:            client,
		registry:          registry,
		model:             cfg.Model,
		directMaxWords:    cfg.DirectMaxWords,
		directPDFMaxBytes: cfg.DirectPDFMaxBytes,
		attachPDF:         cfg.AttachPDF,
	}
}

// PaperInput is an extracted question paper
type PaperInput struct {
	Text string
	Meta model.DocumentMetadata
	Job  model.GenerationJob
	PDF  []byte // original file when it is a PDF, may be nil
}

// Direct sends the whole paper to the model in one call. It is used for
// short papers and for papers whose text came from rasterized pages.
func (e *QuestionPaperExtractor) Direct(ctx context.Context, in PaperInput) (string, error) {
	if e.client == nil {
		return "", ErrDirectNotApplicable
	}
	words := len(chunker.Words(in.Text))
	if words > e.directMaxWords && !in.Meta.IsRasterized() {
		return "", ErrDirectNotApplicable
	}

	count := in.Job.RequestedCount
	if count <= 0 {
		count = len(splitNumbered(in.Text))
	}
	if count <= 0 {
		count = chunker.OptimalQuestionCount(words)
	}

	job := in.Job
	job.DocumentType = model.DocumentTypeQuestionPaper
	prompt, err := e.registry.Render(prompts.KeyFor(job), prompts.Data{
		Text:          in.Text,
		Count:         count,
		AnswerOptions: job.AnswerOptionCount,
	})
	if err != nil {
		return "", err
	}

	req := inference.Request{Prompt: prompt}
	if e.attachPDF && in.Meta.DocType == model.DocTypePDF && len(in.PDF) > 0 && len(in.PDF) <= e.directPDFMaxBytes {
		req.Attachments = append(req.Attachments, inference.Attachment{MIMEType: "application/pdf", Data: in.PDF})
	}

	log.Infof("QuestionPaper: direct extraction of %s (%d words, %d attachments)", in.Meta.FileName, words, len(req.Attachments))
	return e.client.Generate(ctx, req, e.model)
}

// Records parses the direct response, falling back to regex extraction when
// there is no response or it yields nothing.
func (e *QuestionPaperExtractor) Records(raw string, in PaperInput) ([]model.QuestionAnswer, string) {
	if strings.TrimSpace(raw) != "" {
		lang := in.Job.Language
		if records := parser.Parse(raw, in.Job.QuestionType, lang); len(records) > 0 {
			return records, StrategyDirect
		}
		log.Warnf("QuestionPaper: direct response for %s parsed to nothing, using regex extraction", in.Meta.FileName)
	}
	return ExtractQuestions(in.Text, in.Job.Language), StrategyRegex
}

var (
	paperNumberRe  = regexp.MustCompile(`(?m)^\s*(?:[0-9]+|[০-৯]+)\s*[.)।]\s*`)
	marksRe        = regexp.MustCompile(`(?i)[\[(]\s*(?:[0-9]+|[০-৯]+)\s*(?:marks?|নম্বর)?\s*[\])]`)
	paperOptionRe  = regexp.MustCompile(`(?:^|\s)\(?([A-Da-d]|[কখগঘ])\)\s*`)
	collapseSpaces = regexp.MustCompile(`\s+`)
)

// splitNumbered returns the text of every numbered segment
func splitNumbered(text string) []string {
	locs := paperNumberRe.FindAllStringIndex(text, -1)
	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, text[loc[1]:end])
	}
	return segments
}

// ExtractQuestions splits a paper on numbered markers. Segments with at
// least three option markers become multiple choice questions with their
// (label, text) pairs; the rest are short questions. The paper carries no
// answer key, so every answer is the placeholder.
func ExtractQuestions(text string, lang model.Language) []model.QuestionAnswer {
	placeholder := parser.PlaceholderAnswer(lang)
	var records []model.QuestionAnswer

	for _, segment := range splitNumbered(text) {
		segment = marksRe.ReplaceAllString(segment, " ")

		markers := paperOptionRe.FindAllStringSubmatchIndex(segment, -1)
		if len(markers) < minOptionMarkers {
			question := clean(segment)
			if question == "" {
				continue
			}
			records = append(records, model.QuestionAnswer{
				Question:     question,
				Answer:       placeholder,
				QuestionType: model.QuestionTypeShort,
			})
			continue
		}

		question := clean(segment[:markers[0][0]])
		if question == "" {
			continue
		}
		options := make([]model.Option, 0, len(markers))
		for i, m := range markers {
			end := len(segment)
			if i+1 < len(markers) {
				end = markers[i+1][0]
			}
			if optText := clean(segment[m[1]:end]); optText != "" {
				options = append(options, model.Option{
					Label: strings.ToUpper(segment[m[2]:m[3]]),
					Text:  optText,
				})
			}
		}
		records = append(records, model.QuestionAnswer{
			Question:     question,
			Answer:       placeholder,
			QuestionType: model.QuestionTypeMultipleChoice,
			Options:      options,
			Incomplete:   len(options) < parser.MinOptions,
		})
	}

	log.Infof("QuestionPaper: regex extraction found %d questions", len(records))
	return records
}

func clean(s string) string {
	return strings.TrimSpace(collapseSpaces.ReplaceAllString(s, " "))
}

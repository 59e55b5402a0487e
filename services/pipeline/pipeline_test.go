package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/extraction"
	"github.com/sahilchouksey/quiz-brain/services/generator"
	"github.com/sahilchouksey/quiz-brain/services/inference"
	"github.com/sahilchouksey/quiz-brain/services/ocr"
	"github.com/sahilchouksey/quiz-brain/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoMCQs = `{"questions": [
 {"question": "How do cells divide?", "options": ["A) Mitosis", "B) Osmosis", "C) Diffusion", "D) Fusion"], "correct_option": "A"},
 {"question": "How many daughter nuclei does mitosis produce?", "options": ["A) One", "B) Two", "C) Three", "D) Four"], "correct_option": "B"}
]}`

const bengaliQuestionPaper = `পূর্ণমান: ৫০
১. সালোকসংশ্লেষণ প্রক্রিয়ায় কোনটি প্রয়োজন?
(ক) আলো (খ) মাটি (গ) লবণ (ঘ) বালি
২. কোষ বিভাজন কাকে বলে?`

type fakeModel struct {
	mu       sync.Mutex
	prompts  []string
	requests []inference.Request
	respond  func(prompt string) (string, error)
}

func (f *fakeModel) Generate(ctx context.Context, req inference.Request, modelName string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req.Prompt)
}

func reply(raw string) *fakeModel {
	return &fakeModel{respond: func(string) (string, error) { return raw, nil }}
}

type fakeRecognizer struct {
	text string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img ocr.Image, opts ocr.Options) (ocr.Result, error) {
	return ocr.Result{Text: f.text, Strategy: "fake"}, nil
}

// recorder collects transitions
type recorder struct {
	events []Event
	onStep func(ev Event)
}

func (r *recorder) Observe(ctx context.Context, ev Event) {
	r.events = append(r.events, ev)
	if r.onStep != nil {
		r.onStep(ev)
	}
}

func (r *recorder) stages() []model.JobStage {
	stages := make([]model.JobStage, len(r.events))
	for i, ev := range r.events {
		stages[i] = ev.To
	}
	return stages
}

func newPipeline(client generator.ModelClient, recognizer ocr.Recognizer) *Pipeline {
	return New(client, recognizer, Config{Ladder: extraction.NewLadder()})
}

func TestRunTextPDF(t *testing.T) {
	path := testutil.WriteFile(t, "cells.pdf", testutil.TextPDF([]string{testutil.Words(50)}))
	client := reply(twoMCQs)
	rec := &recorder{}

	result, err := newPipeline(client, nil).Run(context.Background(), "job-a", Input{
		Path:           path,
		QuestionType:   model.QuestionTypeMultipleChoice,
		AnswerOptions:  4,
		RequestedCount: 2,
	}, rec)
	require.NoError(t, err)

	assert.Equal(t, model.DocTypePDF, result.Metadata.DocType)
	assert.Equal(t, model.PDFSubtypeTextBased, result.Metadata.PDFSubtype)
	assert.False(t, result.Metadata.IsQuestionPaper)
	assert.Empty(t, result.Strategy)

	require.Len(t, client.prompts, 1, "a 50 word document is a single chunk")
	assert.Contains(t, client.prompts[0], "exactly 2 multiple choice questions")
	assert.Contains(t, client.prompts[0], testutil.Words(50))

	assert.Equal(t, "cells.pdf", result.Artifact.SourceDocument)
	assert.False(t, result.Artifact.GeneratedAt.IsZero())
	require.Len(t, result.Artifact.Questions, 2)
	assert.Equal(t, "Mitosis", result.Artifact.Questions[0].Answer)
	assert.Equal(t, "B", result.Artifact.Questions[1].CorrectOption)

	assert.Equal(t, []model.JobStage{
		model.StageClassifying,
		model.StageExtracting,
		model.StageGenerating,
		model.StageParsing,
		model.StageCompleted,
	}, rec.stages())
	assert.Equal(t, 2, rec.events[4].QuestionCount)
}

func TestRunScannedQuestionPaper(t *testing.T) {
	path := testutil.WriteFile(t, "paper.png", testutil.PNG(8, 8))
	client := reply("I could not read the paper.")

	result, err := newPipeline(client, &fakeRecognizer{text: bengaliQuestionPaper}).Run(context.Background(), "job-b", Input{
		Path:         path,
		QuestionType: model.QuestionTypeMultipleChoice,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.DocTypeImage, result.Metadata.DocType)
	assert.Equal(t, model.LanguageBengali, result.Metadata.Language)
	assert.True(t, result.Metadata.IsQuestionPaper)

	require.Len(t, client.prompts, 1, "the whole paper goes out in one direct call")
	assert.Contains(t, client.prompts[0], "কোষ বিভাজন কাকে বলে?")

	assert.Equal(t, generator.StrategyRegex, result.Strategy)
	require.Len(t, result.Artifact.Questions, 2)
	mcq := result.Artifact.Questions[0]
	assert.Equal(t, model.QuestionTypeMultipleChoice, mcq.QuestionType)
	assert.Len(t, mcq.Options, 4)
	assert.Equal(t, "উত্তর প্রদান করা হয়নি", mcq.Answer)
	assert.Equal(t, model.QuestionTypeShort, result.Artifact.Questions[1].QuestionType)
}

func TestRunQuestionPaperDirectResponse(t *testing.T) {
	client := reply(`[{"question": "সালোকসংশ্লেষণ প্রক্রিয়ায় কোনটি প্রয়োজন?", "options": ["ক) আলো", "খ) মাটি", "গ) লবণ", "ঘ) বালি"], "correct_option": "ক"}]`)

	result, err := newPipeline(client, nil).Run(context.Background(), "job-c", Input{
		Text:         bengaliQuestionPaper,
		QuestionType: model.QuestionTypeMultipleChoice,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, generator.StrategyDirect, result.Strategy)
	require.Len(t, result.Artifact.Questions, 1)
	assert.Equal(t, "আলো", result.Artifact.Questions[0].Answer)
	assert.Equal(t, TextSourceName, result.Artifact.SourceDocument)
}

func TestRunTextInputWithLanguageHint(t *testing.T) {
	client := reply(`[{"question": "What is mitosis?", "answer": "Cell division."}, {"question": "what is  MITOSIS?", "answer": "dup"}]`)

	result, err := newPipeline(client, nil).Run(context.Background(), "job-d", Input{
		Text:         testutil.Words(120),
		SourceName:   "notes.txt",
		Language:     model.LanguageBengali,
		QuestionType: model.QuestionTypeShort,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.LanguageBengali, result.Metadata.Language)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "সংক্ষিপ্ত প্রশ্ন", "the language hint selects the Bengali template")
	require.Len(t, result.Artifact.Questions, 1, "duplicate questions collapse")
	assert.Equal(t, "notes.txt", result.Artifact.SourceDocument)
}

func TestRunTruncatesToRequestedCount(t *testing.T) {
	client := reply(`[{"question": "Q1?", "answer": "a"}, {"question": "Q2?", "answer": "b"}, {"question": "Q3?", "answer": "c"}]`)

	result, err := newPipeline(client, nil).Run(context.Background(), "job-e", Input{
		Text:           testutil.Words(80),
		QuestionType:   model.QuestionTypeShort,
		RequestedCount: 2,
	}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Artifact.Questions, 2)
}

func TestRunCancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := reply(twoMCQs)
	rec := &recorder{onStep: func(ev Event) {
		if ev.To == model.StageExtracting {
			cancel()
		}
	}}

	result, err := newPipeline(client, nil).Run(ctx, "job-f", Input{Text: testutil.Words(80)}, rec)
	assert.Nil(t, result)

	var failure *model.JobFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, model.StageExtracting, failure.Stage)
	assert.Equal(t, "cancelled", failure.Reason)
	assert.ErrorIs(t, err, model.ErrCancelled)
	assert.Empty(t, client.prompts, "no model call after cancellation")
	assert.Equal(t, model.StageFailed, rec.events[len(rec.events)-1].To)
}

func TestRunGenerationFailure(t *testing.T) {
	client := &fakeModel{respond: func(string) (string, error) {
		return "", &model.GenerationError{Model: "qa", Err: errors.New("retries exhausted")}
	}}

	_, err := newPipeline(client, nil).Run(context.Background(), "job-g", Input{Text: testutil.Words(80)}, nil)

	var failure *model.JobFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, model.StageGenerating, failure.Stage)
	var genErr *model.GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestRunNothingParsed(t *testing.T) {
	_, err := newPipeline(reply("I'm not able to help with that."), nil).Run(context.Background(), "job-h", Input{Text: testutil.Words(80)}, nil)

	var failure *model.JobFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, model.StageParsing, failure.Stage)
}

func TestRunExtractionFailure(t *testing.T) {
	path := testutil.WriteFile(t, "empty.txt", []byte("   \n"))

	_, err := newPipeline(reply(twoMCQs), nil).Run(context.Background(), "job-i", Input{Path: path}, nil)

	var failure *model.JobFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, model.StageExtracting, failure.Stage)
	var extractionErr *model.ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestRunRequiresInput(t *testing.T) {
	_, err := newPipeline(reply(twoMCQs), nil).Run(context.Background(), "job-j", Input{Text: "  "}, nil)

	var failure *model.JobFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, model.StagePending, failure.Stage)
	assert.True(t, strings.Contains(failure.Reason, "input"))
}

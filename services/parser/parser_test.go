package parser

import (
	"testing"

	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoQuestions = `{"questions":[
 {"question":"What is the capital of France?","options":["A) Paris","B) London","C) Rome","D) Berlin"],"answer":"Paris","correct_option":"A","difficulty":"Easy"},
 {"question":"Which planet is red?","options":[{"key":"A","text":"Mars"},{"key":"B","text":"Venus"}],"correct_option":"A"}
]}`

func TestParseTiers(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		qt    model.QuestionType
		tier  Tier
		count int
	}{
		{"strict object", twoQuestions, model.QuestionTypeMultipleChoice, TierStrictJSON, 2},
		{"bare array", `[{"question":"Define osmosis.","answer":"Movement of water."}]`, model.QuestionTypeShort, TierStrictJSON, 1},
		{"single object", `{"question":"Define osmosis.","answer":"Movement of water."}`, model.QuestionTypeShort, TierStrictJSON, 1},
		{"fenced block", "Here you go:\n```json\n" + twoQuestions + "\n```\nGood luck!", model.QuestionTypeMultipleChoice, TierFenced, 2},
		{"embedded with trailing comma", `Sure! {"questions": [{"question": "Q1?", "answer": "A1"},]} Hope this helps`, model.QuestionTypeShort, TierBalanced, 1},
		{"numbered list", "1. What is X?\nA) alpha\nB) beta\nAnswer: B\n2. What is Y?", model.QuestionTypeMultipleChoice, TierNumbered, 2},
		{"garbage", "I cannot help with that.", model.QuestionTypeShort, TierNone, 0},
		{"empty", "   ", model.QuestionTypeShort, TierNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseDetailed(tt.raw, tt.qt, model.LanguageEnglish)
			assert.Equal(t, tt.tier, result.Tier)
			assert.Len(t, result.Records, tt.count)
		})
	}
}

func TestParseNormalizesMultipleChoice(t *testing.T) {
	records := Parse(twoQuestions, model.QuestionTypeMultipleChoice, model.LanguageEnglish)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, model.QuestionTypeMultipleChoice, first.QuestionType)
	assert.Equal(t, []model.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "London"}, {Label: "C", Text: "Rome"}, {Label: "D", Text: "Berlin"}}, first.Options)
	assert.Equal(t, "A", first.CorrectOption)
	assert.Equal(t, "easy", first.Difficulty)
	assert.False(t, first.Incomplete)

	second := records[1]
	assert.Equal(t, "Mars", second.Answer, "empty answers take the correct option text")
	assert.True(t, second.HasOption(second.CorrectOption))
}

func TestParseDegradedRecords(t *testing.T) {
	records := Parse("1. What is X?\nA) alpha\nB) beta\nAnswer: B\n2. What is Y?", model.QuestionTypeMultipleChoice, model.LanguageEnglish)
	require.Len(t, records, 2)

	assert.True(t, records[0].Degraded)
	assert.Equal(t, "B", records[0].CorrectOption)
	assert.Equal(t, "beta", records[0].Answer)

	assert.True(t, records[1].Degraded)
	assert.True(t, records[1].Incomplete)
	assert.Equal(t, PlaceholderAnswer(model.LanguageEnglish), records[1].Answer)
	assert.Empty(t, records[1].Options)
}

func TestParseBengaliNumbered(t *testing.T) {
	records := Parse("১. কোষ কাকে বলে?\n২। সালোকসংশ্লেষণ কী?", model.QuestionTypeShort, model.LanguageBengali)
	require.Len(t, records, 2)
	assert.Equal(t, "কোষ কাকে বলে?", records[0].Question)
	assert.Equal(t, "উত্তর প্রদান করা হয়নি", records[1].Answer)
}

func TestParseOptionShapes(t *testing.T) {
	tests := []struct {
		name    string
		options string
		want    []model.Option
	}{
		{"label map", `{"B": "London", "A": "Paris"}`, []model.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "London"}}},
		{"label objects", `[{"label": "a", "value": "Paris"}, {"option": "b", "text": "London"}]`, []model.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "London"}}},
		{"unlabelled strings", `["Paris", "London", "Rome"]`, []model.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "London"}, {Label: "C", Text: "Rome"}}},
		{"parenthesized labels", `["(A) Paris", "(B) London"]`, []model.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "London"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"question": "Capital of France?", "options": ` + tt.options + `, "correct_option": "A"}`
			records := Parse(raw, model.QuestionTypeMultipleChoice, model.LanguageEnglish)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Options)
		})
	}
}

func TestParseBengaliOptions(t *testing.T) {
	raw := `{"questions": [{"question": "কোনটি প্রয়োজন?", "options": ["ক) আলো", "খ) মাটি", "গ) লবণ", "ঘ) বালি"], "answer": "আলো"}]}`

	records := Parse(raw, model.QuestionTypeMultipleChoice, model.LanguageBengali)
	require.Len(t, records, 1)
	assert.Equal(t, "ক", records[0].CorrectOption)
	assert.Equal(t, model.Option{Label: "ঘ", Text: "বালি"}, records[0].Options[3])
}

func TestValidate(t *testing.T) {
	options := []model.Option{{Label: "A", Text: "Paris"}, {Label: "B", Text: "London"}, {Label: "C", Text: "Rome"}}
	score := 1.5

	records := Validate([]model.QuestionAnswer{
		{Question: "  "},
		{Question: "Q text match", Options: options, CorrectOption: "  paris "},
		{Question: "Q label answer", Options: options, Answer: "(c)"},
		{Question: "Q unresolvable", Options: options, CorrectOption: "Z", Answer: "Madrid"},
		{Question: "Q one option", Options: options[:1], CorrectOption: "A"},
		{Question: "Q bad score", Options: options, CorrectOption: "B", ConfidenceScore: &score},
	}, model.QuestionTypeMultipleChoice, model.LanguageEnglish)
	require.Len(t, records, 5)

	assert.Equal(t, "A", records[0].CorrectOption)
	assert.Equal(t, "Paris", records[0].Answer)

	assert.Equal(t, "C", records[1].CorrectOption)
	assert.Equal(t, "Rome", records[1].Answer)

	assert.Empty(t, records[2].CorrectOption)
	assert.Equal(t, "Madrid", records[2].Answer)

	assert.True(t, records[3].Incomplete)
	assert.Equal(t, "A", records[3].CorrectOption)

	assert.Nil(t, records[4].ConfidenceScore)
	assert.Equal(t, "London", records[4].Answer)
}

func TestValidateShortDropsOptions(t *testing.T) {
	records := Validate([]model.QuestionAnswer{
		{Question: "Define osmosis.", Answer: "Water movement.", Options: []model.Option{{Label: "A", Text: "x"}}, CorrectOption: "A"},
		{Question: "Define diffusion."},
	}, model.QuestionTypeShort, model.LanguageEnglish)
	require.Len(t, records, 2)

	assert.Nil(t, records[0].Options)
	assert.Empty(t, records[0].CorrectOption)
	assert.Equal(t, model.QuestionTypeShort, records[0].QuestionType)
	assert.True(t, IsPlaceholder(records[1].Answer))
}

func TestValidateReplacesPlaceholderWithCorrectOption(t *testing.T) {
	records := Validate([]model.QuestionAnswer{{
		Question:      "Which organelle makes ATP?",
		Answer:        PlaceholderAnswer(model.LanguageEnglish),
		Options:       []model.Option{{Label: "A", Text: "Ribosome"}, {Label: "B", Text: "Mitochondrion"}},
		CorrectOption: "b",
	}}, model.QuestionTypeMultipleChoice, model.LanguageEnglish)
	require.Len(t, records, 1)

	assert.Equal(t, "B", records[0].CorrectOption)
	assert.Equal(t, "Mitochondrion", records[0].Answer)
	assert.False(t, IsPlaceholder(records[0].Answer))
}

func TestDedupAcrossChunks(t *testing.T) {
	chunkA := Parse(`[{"question": "What is a cell?", "answer": "first"}, {"question": "What is DNA?", "answer": "x"}]`, model.QuestionTypeShort, model.LanguageEnglish)
	chunkB := Parse(`[{"question": "what  is a CELL?", "answer": "second"}, {"question": "What is RNA?", "answer": "y"}]`, model.QuestionTypeShort, model.LanguageEnglish)

	records := Dedup(append(chunkA, chunkB...))

	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Answer)
	assert.Equal(t, []string{"What is a cell?", "What is DNA?", "What is RNA?"},
		[]string{records[0].Question, records[1].Question, records[2].Question})
	assert.Equal(t, DedupKey("What is a cell?"), DedupKey("WHAT IS   A cell?"))
}

func TestBalancedJSONLargestFirst(t *testing.T) {
	s := `noise [1] more {"questions": [{"question": "a"}, {"question": "b"}]} tail {"x": 1}`
	assert.Equal(t, []string{`{"questions": [{"question": "a"}, {"question": "b"}]}`, `{"x": 1}`, `[1]`}, balancedJSON(s))

	assert.Empty(t, balancedJSON(`{"unterminated": [1, 2}`))
	assert.Equal(t, []string{`{"brace": "}"}`}, balancedJSON(`prefix {"brace": "}"} suffix`))
}

func TestParseSkipsLargerObjectsWithoutQuestions(t *testing.T) {
	raw := `Metadata: {"source": "chapter 4 notes", "model": "qa", "notes": "generated from the uploaded chapter on cell biology"}
Questions: [{"question": "What is osmosis?", "answer": "Movement of water across a membrane"}]`

	result := ParseDetailed(raw, model.QuestionTypeShort, model.LanguageEnglish)
	assert.Equal(t, TierBalanced, result.Tier)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "What is osmosis?", result.Records[0].Question)

	nested := `Result: {"status": "ok", "data": {"questions": [{"question": "Define mitosis.", "answer": "Cell division"}]}}`
	result = ParseDetailed(nested, model.QuestionTypeShort, model.LanguageEnglish)
	assert.Equal(t, TierBalanced, result.Tier)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Define mitosis.", result.Records[0].Question)
}

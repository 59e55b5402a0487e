package model

import "time"

// QuestionType is the kind of question a job asks for
type QuestionType string

const (
	QuestionTypeShort          QuestionType = "SHORT"
	QuestionTypeMultipleChoice QuestionType = "MULTIPLECHOICE"
)

// ParseQuestionType normalizes user input, defaulting to multiple choice
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(s) {
	case QuestionTypeShort, "short", "Short":
		return QuestionTypeShort
	}
	return QuestionTypeMultipleChoice
}

// Option is one labelled choice of a multiple choice question
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuestionAnswer is a single validated record produced by the parser
type QuestionAnswer struct {
	Question        string       `json:"question"`
	Answer          string       `json:"answer"`
	QuestionType    QuestionType `json:"question_type"`
	Options         []Option     `json:"options,omitempty"`
	CorrectOption   string       `json:"correct_option,omitempty"`
	Difficulty      string       `json:"difficulty,omitempty"`
	ConfidenceScore *float64     `json:"confidence_score,omitempty"`
	SourceText      string       `json:"source_text,omitempty"`

	// Incomplete marks a multiple choice record without usable options
	Incomplete bool `json:"incomplete,omitempty"`
	// Degraded marks records recovered by the numbered-question fallback
	Degraded bool `json:"degraded,omitempty"`
}

// HasOption reports whether label names one of the record's options
func (q QuestionAnswer) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// Artifact is the self-contained output of a completed job
type Artifact struct {
	SourceDocument string           `json:"source_document"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Questions      []QuestionAnswer `json:"questions"`
}

package parser

import (
	"strings"

	"github.com/sahilchouksey/quiz-brain/model"
	"golang.org/x/text/cases"
)

// MinOptions is the number of options below which a multiple choice record
// is flagged incomplete
const MinOptions = 2

// Validate normalizes records to the requested question type. Records with
// an empty question are dropped.
func Validate(records []model.QuestionAnswer, qt model.QuestionType, lang model.Language) []model.QuestionAnswer {
	fold := cases.Fold()
	out := make([]model.QuestionAnswer, 0, len(records))

	for _, r := range records {
		r.Question = strings.TrimSpace(r.Question)
		if r.Question == "" {
			continue
		}
		r.Answer = strings.TrimSpace(r.Answer)
		r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))
		r.QuestionType = qt
		if r.ConfidenceScore != nil && (*r.ConfidenceScore < 0 || *r.ConfidenceScore > 1) {
			r.ConfidenceScore = nil
		}

		if qt != model.QuestionTypeMultipleChoice {
			r.Options = nil
			r.CorrectOption = ""
			r.Incomplete = false
			if r.Answer == "" {
				r.Answer = PlaceholderAnswer(lang)
			}
			out = append(out, r)
			continue
		}

		if r.Options == nil {
			r.Options = []model.Option{}
		}
		r.Incomplete = len(r.Options) < MinOptions
		r.CorrectOption = resolveCorrectOption(r, fold)

		if r.CorrectOption != "" {
			text := optionText(r.Options, r.CorrectOption)
			if r.Answer == "" || IsPlaceholder(r.Answer) || namesLabel(r.Answer, r.CorrectOption) {
				r.Answer = text
			}
		}
		if r.Answer == "" {
			r.Answer = PlaceholderAnswer(lang)
		}
		out = append(out, r)
	}
	return out
}

// resolveCorrectOption maps correct_option onto an option label. It accepts
// a label ("B", "b)", "(খ)"), a label-prefixed text, or an option's text,
// and falls back to the answer field. Anything unresolvable is cleared.
func resolveCorrectOption(r model.QuestionAnswer, fold cases.Caser) string {
	for _, candidate := range []string{r.CorrectOption, r.Answer} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if label, _, ok := splitLabelled(candidate); ok && label != "" && r.HasOption(label) {
			return label
		}
		if label := strings.ToUpper(strings.Trim(candidate, "()[]. ")); label != "" && r.HasOption(label) {
			return label
		}
		key := fold.String(normalizeSpace(candidate))
		for _, opt := range r.Options {
			if fold.String(normalizeSpace(opt.Text)) == key {
				return opt.Label
			}
		}
	}
	return ""
}

// namesLabel reports whether answer is only a reference to label
func namesLabel(answer, label string) bool {
	bare := strings.ToUpper(strings.Trim(strings.TrimSpace(answer), "()[]. "))
	if bare == label {
		return true
	}
	l, text, ok := splitLabelled(answer)
	return ok && l == label && text == ""
}

func optionText(options []model.Option, label string) string {
	for _, opt := range options {
		if opt.Label == label {
			return opt.Text
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package parser

import (
	"strings"

	"github.com/sahilchouksey/quiz-brain/model"
	"golang.org/x/text/cases"
)

// DedupKey is the case-folded, whitespace-normalized question text
func DedupKey(question string) string {
	return strings.Join(strings.Fields(cases.Fold().String(question)), " ")
}

// Dedup drops records whose question repeats an earlier one. The first
// occurrence wins and order is preserved.
func Dedup(records []model.QuestionAnswer) []model.QuestionAnswer {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.QuestionAnswer, 0, len(records))

	for _, r := range records {
		key := DedupKey(r.Question)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

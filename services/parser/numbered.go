package parser

import (
	"regexp"
	"strings"

	"github.com/sahilchouksey/quiz-brain/model"
)

const (
	placeholderEnglish = "Answer not provided"
	placeholderBengali = "উত্তর প্রদান করা হয়নি"
)

// PlaceholderAnswer is recorded when the source carries no answer. It is
// never a fabricated answer.
func PlaceholderAnswer(lang model.Language) string {
	if lang == model.LanguageBengali {
		return placeholderBengali
	}
	return placeholderEnglish
}

// IsPlaceholder reports whether answer is one of the placeholder answers
func IsPlaceholder(answer string) bool {
	return answer == placeholderEnglish || answer == placeholderBengali
}

var (
	numberedLineRe = regexp.MustCompile(`(?m)^\s*(?:Q(?:uestion)?\s*|প্রশ্ন\s*)?(?:[0-9]{1,3}|[০-৯]{1,3})\s*[.):।]\s*(\S.*)$`)
	answerLineRe   = regexp.MustCompile(`^\s*(?:Answer|Ans|Correct answer|উত্তর|সঠিক উত্তর)\s*[:：\-]\s*(.+)$`)
)

// numberedSplit recovers questions from plain text numbered lists. Options
// and "Answer:" lines under a question are picked up when present.
func numberedSplit(text string, lang model.Language) []model.QuestionAnswer {
	locs := numberedLineRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	records := make([]model.QuestionAnswer, 0, len(locs))
	for i, loc := range locs {
		question := strings.TrimSpace(text[loc[2]:loc[3]])
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}

		record := model.QuestionAnswer{Question: question, Degraded: true}
		for _, line := range strings.Split(text[loc[1]:bodyEnd], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if m := answerLineRe.FindStringSubmatch(line); m != nil {
				record.Answer = strings.TrimSpace(m[1])
				continue
			}
			if label, optText, ok := splitLabelled(line); ok && optText != "" {
				record.Options = append(record.Options, model.Option{Label: label, Text: optText})
			}
		}
		if record.Answer == "" {
			record.Answer = PlaceholderAnswer(lang)
		}
		records = append(records, record)
	}
	return records
}

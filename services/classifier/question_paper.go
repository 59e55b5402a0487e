package classifier

import (
	"regexp"
	"strings"

	"github.com/sahilchouksey/quiz-brain/model"
)

var (
	westernNumberedRe = regexp.MustCompile(`(?m)^\s*(?:Q\.?\s*)?\d{1,3}\s*[.)]\s*\S`)
	bengaliNumberedRe = regexp.MustCompile(`(?m)^\s*(?:প্রশ্ন\s*)?[০-৯]{1,3}\s*[.)।]\s*\S`)
	latinOptionRe     = regexp.MustCompile(`(?m)(?:^|\s)\(?[A-Da-d]\)\s*\S`)
	bengaliOptionRe   = regexp.MustCompile(`(?m)(?:^|\s)\(?[কখগঘ]\)\s*\S`)
)

var (
	englishPaperKeywords = []string{
		"full marks", "total marks", "time allowed", "time:", "answer all", "answer any",
		"question paper", "examination", "marks)", "[marks", "section a", "attempt all",
	}
	bengaliPaperKeywords = []string{
		"পূর্ণমান", "সময়", "সম\u09df", "প্রশ্নের উত্তর", "উত্তর দাও", "পরীক্ষা", "বিভাগ",
	}
)

// Signals are the marker counts question-paper detection is based on
type Signals struct {
	WesternNumbered int
	BengaliNumbered int
	LatinOptions    int
	BengaliOptions  int
	Keywords        int
}

// DetectSignals counts question numbering, option markers and exam keywords
func DetectSignals(text string) Signals {
	lower := strings.ToLower(text)
	s := Signals{
		WesternNumbered: len(westernNumberedRe.FindAllStringIndex(text, -1)),
		BengaliNumbered: len(bengaliNumberedRe.FindAllStringIndex(text, -1)),
		LatinOptions:    len(latinOptionRe.FindAllStringIndex(text, -1)),
		BengaliOptions:  len(bengaliOptionRe.FindAllStringIndex(text, -1)),
	}
	for _, kw := range englishPaperKeywords {
		if strings.Contains(lower, kw) {
			s.Keywords++
		}
	}
	for _, kw := range bengaliPaperKeywords {
		if strings.Contains(text, kw) {
			s.Keywords++
		}
	}
	return s
}

// IsQuestionPaper applies the script specific thresholds to the signals
func (s Signals) IsQuestionPaper(lang model.Language) bool {
	if lang == model.LanguageBengali {
		numbered := s.BengaliNumbered + s.WesternNumbered
		options := s.BengaliOptions + s.LatinOptions
		return (numbered >= 2 && options >= 4) || s.Keywords >= 2
	}

	numbered := s.WesternNumbered
	options := s.LatinOptions
	return (numbered >= 3 && options >= 4) || numbered >= 5 || (s.Keywords >= 3 && numbered >= 2)
}

// IsQuestionPaper reports whether a text sample looks like an exam paper
func IsQuestionPaper(text string, lang model.Language) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return DetectSignals(text).IsQuestionPaper(lang)
}

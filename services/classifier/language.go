package classifier

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/sahilchouksey/quiz-brain/model"
)

// BengaliRatioThreshold is the share of Bengali codepoints among letters
// above which a sample is Bengali
const BengaliRatioThreshold = 0.3

// bengaliKeywords rescue short OCR samples where the ratio is unreliable
var bengaliKeywords = []string{
	"প্রশ্ন",
	"উত্তর",
	"নম্বর",
	"সময়",
	"সম\u09df", // precomposed য়
	"পূর্ণমান",
	"অধ্যায়",
	"অধ্যা\u09df",
}

func isBengaliRune(r rune) bool {
	return r >= 0x0980 && r <= 0x09FF
}

// BengaliRatio is the share of Bengali codepoints over all letters and
// Bengali combining marks in text
func BengaliRatio(text string) float64 {
	var bengali, total int
	for _, r := range text {
		switch {
		case isBengaliRune(r):
			bengali++
			total++
		case unicode.IsLetter(r):
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(bengali) / float64(total)
}

func containsBengaliKeyword(text string) bool {
	for _, kw := range bengaliKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// DetectLanguage classifies a sample as Bengali or English. Empty or
// letterless samples are unknown.
func DetectLanguage(text string) model.Language {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.LanguageUnknown
	}
	if BengaliRatio(text) > BengaliRatioThreshold || containsBengaliKeyword(text) {
		return model.LanguageBengali
	}

	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return model.LanguageUnknown
	}

	if whatlanggo.Detect(text).Lang == whatlanggo.Ben {
		return model.LanguageBengali
	}
	return model.LanguageEnglish
}

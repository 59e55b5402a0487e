// Package parser turns free-form model output into validated question
// records. It never fails: unparseable output yields no records.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/model"
	"github.com/sahilchouksey/quiz-brain/services/prompts"
)

// Tier names the parsing strategy that produced a result
type Tier string

const (
	TierStrictJSON Tier = "strict_json"
	TierFenced     Tier = "fenced_block"
	TierBalanced   Tier = "balanced_json"
	TierNumbered   Tier = "numbered_split"
	TierNone       Tier = "none"
)

// Result is the validated records plus the tier that found them
type Result struct {
	Records []model.QuestionAnswer
	Tier    Tier
}

// Parse returns the validated records found in raw
func Parse(raw string, qt model.QuestionType, lang model.Language) []model.QuestionAnswer {
	return ParseDetailed(raw, qt, lang).Records
}

// ParseDetailed tries each tier in order: strict JSON, fenced code blocks,
// balanced JSON substrings from largest to smallest, and finally a numbered-question
// split whose records are flagged degraded.
func ParseDetailed(raw string, qt model.QuestionType, lang model.Language) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Tier: TierNone}
	}

	if payload, ok := decode(trimmed); ok {
		return Result{Records: Validate(itemsToRecords(payload, lang), qt, lang), Tier: TierStrictJSON}
	}

	var fenced []model.QuestionAnswer
	for _, block := range fencedBlocks(trimmed) {
		if payload, ok := decode(block); ok {
			fenced = append(fenced, itemsToRecords(payload, lang)...)
		}
	}
	if records := Validate(fenced, qt, lang); len(records) > 0 {
		return Result{Records: records, Tier: TierFenced}
	}

	if records := fromBalanced(trimmed, qt, lang); len(records) > 0 {
		return Result{Records: records, Tier: TierBalanced}
	}

	if records := Validate(numberedSplit(trimmed, lang), qt, lang); len(records) > 0 {
		log.Warnf("Parser: no JSON found in %d chars, recovered %d records from numbered questions", len(trimmed), len(records))
		return Result{Records: records, Tier: TierNumbered}
	}

	return Result{Tier: TierNone}
}

// fromBalanced tries the balanced JSON values of s from largest to smallest,
// descending into a value when it holds no questions itself
func fromBalanced(s string, qt model.QuestionType, lang model.Language) []model.QuestionAnswer {
	for _, candidate := range balancedJSON(s) {
		if payload, ok := decode(candidate); ok {
			if records := Validate(itemsToRecords(payload, lang), qt, lang); len(records) > 0 {
				return records
			}
		}
		if records := fromBalanced(candidate[1:len(candidate)-1], qt, lang); len(records) > 0 {
			return records
		}
	}
	return nil
}

// decode accepts {"questions": [...]}, a bare array, or a single question
// object, and returns the question items
func decode(s string) ([]map[string]any, bool) {
	var payload any
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, false
	}

	switch v := payload.(type) {
	case map[string]any:
		if qs, ok := v["questions"]; ok {
			arr, ok := qs.([]any)
			if !ok {
				return nil, false
			}
			return objects(arr), true
		}
		if _, ok := v["question"]; ok {
			return []map[string]any{v}, true
		}
	case []any:
		return objects(v), true
	}
	return nil, false
}

func objects(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func itemsToRecords(items []map[string]any, lang model.Language) []model.QuestionAnswer {
	records := make([]model.QuestionAnswer, 0, len(items))
	for _, item := range items {
		record := model.QuestionAnswer{
			Question:      firstString(item, "question", "question_text", "q"),
			Answer:        firstString(item, "answer", "correct_answer", "answer_text"),
			CorrectOption: firstString(item, "correct_option", "correctOption", "correct"),
			Difficulty:    firstString(item, "difficulty"),
			SourceText:    firstString(item, "source_text", "source"),
			Options:       parseOptions(item["options"], lang),
		}
		if score, ok := number(item["confidence_score"]); ok {
			record.ConfidenceScore = &score
		}
		records = append(records, record)
	}
	return records
}

func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

var labelledOptionRe = regexp.MustCompile(`^\s*\(?([A-Ha-h]|[কখগঘঙচছজ])\s*[).:]\s*(.*)$`)

// splitLabelled splits "A) text" style options
func splitLabelled(s string) (label, text string, ok bool) {
	m := labelledOptionRe.FindStringSubmatch(s)
	if m == nil {
		return "", strings.TrimSpace(s), false
	}
	return strings.ToUpper(m[1]), strings.TrimSpace(m[2]), true
}

// parseOptions accepts "A) text" strings, {label|key|option, text|value}
// objects, or a label to text map
func parseOptions(v any, lang model.Language) []model.Option {
	var options []model.Option

	switch raw := v.(type) {
	case []any:
		for _, item := range raw {
			switch o := item.(type) {
			case string:
				label, text, _ := splitLabelled(o)
				options = append(options, model.Option{Label: label, Text: text})
			case map[string]any:
				options = append(options, model.Option{
					Label: strings.ToUpper(firstString(o, "label", "key", "option", "id")),
					Text:  firstString(o, "text", "value", "option_text", "content"),
				})
			default:
				options = append(options, model.Option{Text: strings.TrimSpace(fmt.Sprint(o))})
			}
		}
	case map[string]any:
		labels := make([]string, 0, len(raw))
		for label := range raw {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool { return labelRank(labels[i]) < labelRank(labels[j]) })
		for _, label := range labels {
			text, _ := raw[label].(string)
			options = append(options, model.Option{Label: strings.ToUpper(strings.TrimSpace(label)), Text: strings.TrimSpace(text)})
		}
	}

	return fillLabels(options, lang)
}

// labelRank orders known labels by script position and everything else after
func labelRank(label string) string {
	upper := strings.ToUpper(strings.TrimSpace(label))
	for i, known := range prompts.AllOptionLabels() {
		if known == upper {
			return fmt.Sprintf("0%02d", i)
		}
	}
	return "1" + upper
}

// fillLabels gives positional labels to options the model left unlabelled
func fillLabels(options []model.Option, lang model.Language) []model.Option {
	if len(options) == 0 {
		return options
	}
	labels := prompts.OptionLabels(lang, len(options))
	out := options[:0]
	for i, opt := range options {
		if opt.Text == "" {
			continue
		}
		if opt.Label == "" && i < len(labels) {
			opt.Label = labels[i]
		}
		out = append(out, opt)
	}
	return out
}

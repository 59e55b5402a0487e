// Package prompts holds the generation prompt templates, keyed by language,
// document type, question type and count mode.
package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/sahilchouksey/quiz-brain/model"
)

// CountMode says whether the caller fixed the number of questions
type CountMode string

const (
	CountAuto     CountMode = "auto"
	CountSpecific CountMode = "specific"
)

// Key selects a template
type Key struct {
	Language     model.Language
	DocumentType string
	QuestionType model.QuestionType
	CountMode    CountMode
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Language, k.DocumentType, k.QuestionType, k.CountMode)
}

// Data is what every template renders from
type Data struct {
	Text          string
	Count         int
	AnswerOptions int
	Labels        []string
}

// LabelList joins the option labels for display, e.g. "A, B, C, D"
func (d Data) LabelList() string {
	return strings.Join(d.Labels, ", ")
}

var (
	latinLabels   = []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	bengaliLabels = []string{"ক", "খ", "গ", "ঘ", "ঙ", "চ", "ছ", "জ"}
)

const (
	// MaxAnswerOptions is the number of option labels available per script
	MaxAnswerOptions     = 8
	DefaultAnswerOptions = 4
)

// OptionLabels returns the first n option labels of the language's script
func OptionLabels(lang model.Language, n int) []string {
	labels := latinLabels
	if lang == model.LanguageBengali {
		labels = bengaliLabels
	}
	if n <= 0 {
		n = DefaultAnswerOptions
	}
	n = max(2, min(n, MaxAnswerOptions))
	return append([]string(nil), labels[:n]...)
}

// AllOptionLabels returns every label known for either script
func AllOptionLabels() []string {
	return append(append([]string(nil), latinLabels...), bengaliLabels...)
}

// Registry maps keys to parsed templates. It is read-only after NewRegistry.
type Registry struct {
	templates map[Key]*template.Template
	generic   map[Key]*template.Template
}

type entry struct {
	key  Key
	text string
}

// NewRegistry parses every template. A malformed template panics at
// startup rather than at generation time.
func NewRegistry() *Registry {
	r := &Registry{
		templates: make(map[Key]*template.Template),
		generic:   make(map[Key]*template.Template),
	}
	for _, e := range append(englishTemplates, bengaliTemplates...) {
		r.templates[e.key] = template.Must(template.New(e.key.String()).Parse(e.text))
	}
	for _, e := range genericTemplates {
		r.generic[e.key] = template.Must(template.New("generic/" + e.key.String()).Parse(e.text))
	}
	return r
}

func genericKey(lang model.Language, qt model.QuestionType) Key {
	return Key{Language: lang, QuestionType: qt}
}

// normalize maps hints the registry has no templates for onto English
func normalize(key Key) Key {
	if key.Language != model.LanguageBengali {
		key.Language = model.LanguageEnglish
	}
	if key.DocumentType != model.DocumentTypeQuestionPaper {
		key.DocumentType = model.DocumentTypeContext
	}
	if key.QuestionType != model.QuestionTypeShort {
		key.QuestionType = model.QuestionTypeMultipleChoice
	}
	if key.CountMode != CountSpecific {
		key.CountMode = CountAuto
	}
	return key
}

// Lookup returns the template for key. Missing entries fall back to the same
// key with the other count mode, then to the generic template of the
// language and question type, then to the English generic one.
func (r *Registry) Lookup(key Key) (*template.Template, error) {
	key = normalize(key)
	if tmpl, ok := r.templates[key]; ok {
		return tmpl, nil
	}

	other := key
	other.CountMode = CountAuto
	if key.CountMode == CountAuto {
		other.CountMode = CountSpecific
	}
	if tmpl, ok := r.templates[other]; ok {
		return tmpl, nil
	}

	if tmpl, ok := r.generic[genericKey(key.Language, key.QuestionType)]; ok {
		return tmpl, nil
	}
	if tmpl, ok := r.generic[genericKey(model.LanguageEnglish, key.QuestionType)]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("no prompt template for %s", key)
}

// Render executes the template for key
func (r *Registry) Render(key Key, data Data) (string, error) {
	tmpl, err := r.Lookup(key)
	if err != nil {
		return "", err
	}
	if len(data.Labels) == 0 {
		data.Labels = OptionLabels(key.Language, data.AnswerOptions)
	}
	data.AnswerOptions = len(data.Labels)

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", key, err)
	}
	return sb.String(), nil
}

// KeyFor derives the template key of a job
func KeyFor(job model.GenerationJob) Key {
	mode := CountAuto
	if job.RequestedCount > 0 {
		mode = CountSpecific
	}
	return normalize(Key{
		Language:     job.Language,
		DocumentType: job.DocumentType,
		QuestionType: job.QuestionType,
		CountMode:    mode,
	})
}

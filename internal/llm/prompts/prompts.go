package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"

	"github.com/pavelanni/quiz/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var questionTagRegex = regexp.MustCompile(`(?i)</?\s*question\b[^>]*>`)

// Variant represents an explanation prompt variant.
type Variant string

const (
	// VariantBrief asks for a one or two sentence explanation.
	VariantBrief Variant = "brief"
	// VariantDetailed asks for a short paragraph and a related fact.
	VariantDetailed Variant = "detailed"
)

var validVariants = map[Variant]bool{
	VariantBrief:    true,
	VariantDetailed: true,
}

var (
	loadOnce         sync.Once
	loadErr          error
	explainTemplates map[Variant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// ExplainData holds template data for explanation prompts.
type ExplainData struct {
	QuestionText   string
	Choices        []string
	CorrectAnswer  string
	SelectedAnswer string
	Correct        bool
}

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// Load parses the embedded prompt templates once.
func Load() error {
	return LoadFS(templateFS)
}

// LoadFS parses prompt templates from fsys. Only the first call has effect.
func LoadFS(fsys fs.FS) error {
	loadOnce.Do(func() {
		explainTemplates = make(map[Variant]*template.Template)
		for v := range validVariants {
			file := "templates/explain_" + string(v) + ".txt"
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", file, err)
				return
			}
			tmpl, err := template.New("explain").Funcs(funcs).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", file, err)
				return
			}
			explainTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildExplainPrompt renders the explanation prompt for a locked-in answer.
func BuildExplainPrompt(variant Variant, q model.Question, selected int) (string, error) {
	if explainTemplates == nil {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := explainTemplates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}
	if err := q.Validate(); err != nil {
		return "", err
	}
	if selected < 0 || selected >= len(q.Choices) {
		return "", fmt.Errorf("selected choice %d out of range", selected)
	}

	choices := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		choices[i] = sanitize(c)
	}
	data := ExplainData{
		QuestionText:   sanitize(q.Text),
		Choices:        choices,
		CorrectAnswer:  choices[q.CorrectChoice],
		SelectedAnswer: choices[selected],
		Correct:        selected == q.CorrectChoice,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sanitize strips tags that would let question text escape its delimiters.
func sanitize(s string) string {
	return strings.TrimSpace(questionTagRegex.ReplaceAllString(s, ""))
}

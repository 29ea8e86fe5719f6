// Package docgen renders localized certificate documents from a translation
// table. Templates use {field} placeholders filled from the submitted form.
package docgen

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"curia/internal/calendar"
	domainerrors "curia/pkg/domain-errors"
)

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// Generator holds the document templates, keyed by document id then
// language.
type Generator struct {
	docs map[string]map[string]string
	now  func() time.Time
}

type Option func(*Generator)

// WithClock sets the time source used for the issue date.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Load reads the translation file: a JSON array of objects carrying an "id"
// plus one template per language code.
func Load(path string, opts ...Option) (*Generator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translations: %w", err)
	}
	return Parse(data, opts...)
}

// Parse builds a generator from raw translation JSON.
func Parse(data []byte, opts ...Option) (*Generator, error) {
	var entries []map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse translations: %w", err)
	}

	g := &Generator{
		docs: make(map[string]map[string]string, len(entries)),
		now:  time.Now,
	}
	for _, entry := range entries {
		id, ok := entry["id"]
		if !ok {
			return nil, fmt.Errorf("translation entry without id")
		}
		templates := make(map[string]string, len(entry)-1)
		for lang, tmpl := range entry {
			if lang != "id" {
				templates[lang] = tmpl
			}
		}
		g.docs[id] = templates
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Generate renders the document for a form submission. Placeholders resolve
// from the form values, {issue_date} renders today's date in the requested
// language, and unknown placeholders are left in place.
func (g *Generator) Generate(docID, lang string, values map[string]string) (string, error) {
	templates, ok := g.docs[docID]
	if !ok {
		return "", domainerrors.New(domainerrors.CodeNotFound, "unknown document id "+docID)
	}
	tmpl, ok := templates[lang]
	if !ok {
		return "", domainerrors.New(domainerrors.CodeNotFound, "document "+docID+" has no "+lang+" translation")
	}

	issueDate := calendar.Format(g.now(), lang)
	out := placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[1 : len(match)-1]
		if key == "issue_date" {
			return issueDate
		}
		if v, ok := values[key]; ok {
			return v
		}
		return match
	})
	return out, nil
}

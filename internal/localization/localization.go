// Package localization renders user-facing texts for notifications and the bot.
// Catalogs are flat key → text JSON files named after their language, e.g. "uk.json".
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// DefaultLanguage is used when a key is missing in the requested language.
const DefaultLanguage = "en"

type catalog map[string]string

// Localizer is read-only after construction and safe for concurrent use.
type Localizer struct {
	catalogs map[string]catalog
}

// Embedded returns a Localizer over the catalogs compiled into the binary.
func Embedded() (*Localizer, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, err
	}
	return NewLocalizer(sub)
}

// NewLocalizer loads every "<lang>.json" file at the root of fsys.
func NewLocalizer(fsys fs.FS) (*Localizer, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}

	l := &Localizer{catalogs: make(map[string]catalog, len(names))}
	for _, name := range names {
		c, err := readCatalog(fsys, name)
		if err != nil {
			return nil, err
		}
		l.catalogs[strings.TrimSuffix(name, ".json")] = c
	}
	return l, nil
}

func readCatalog(fsys fs.FS, name string) (catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", name, err)
	}
	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", name, err)
	}
	return c, nil
}

// Base reduces a language tag such as "uk-UA" or "en_US" to its base language.
// Unparseable or empty tags map to DefaultLanguage.
func Base(tag string) string {
	t, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if err != nil {
		return DefaultLanguage
	}
	b, _ := t.Base()
	return b.String()
}

// Languages lists the loaded catalogs.
func (l *Localizer) Languages() []string {
	out := make([]string, 0, len(l.catalogs))
	for lang := range l.catalogs {
		out = append(out, lang)
	}
	return out
}

// GetString returns the text for key in lang, falling back to DefaultLanguage and
// finally to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	if text, ok := l.catalogs[Base(lang)][key]; ok {
		return text
	}
	if text, ok := l.catalogs[DefaultLanguage][key]; ok {
		return text
	}
	return key
}

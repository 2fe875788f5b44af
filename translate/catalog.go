package translate

import (
	"fmt"

	"golang.org/x/text/language"
)

// Catalog is a static lookup-table translator. Entries are registered per
// locale and domain; Func negotiates the best matching locale with a
// language.Matcher, so a catalog holding "pt" entries serves "pt-BR"
// requests. Missing entries fall back to the untranslated message.
type Catalog struct {
	tags    []language.Tag
	entries map[language.Tag]map[string]map[string]string // tag -> domain -> message
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[language.Tag]map[string]map[string]string),
	}
}

// Add registers a translation for the given locale and domain.
func (c *Catalog) Add(locale, domain, message, translation string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("translate: parse locale %q: %w", locale, err)
	}
	domains, ok := c.entries[tag]
	if !ok {
		domains = make(map[string]map[string]string)
		c.entries[tag] = domains
		c.tags = append(c.tags, tag)
	}
	msgs, ok := domains[domain]
	if !ok {
		msgs = make(map[string]string)
		domains[domain] = msgs
	}
	msgs[message] = translation
	return nil
}

// Func returns a translator bound to the locale that best matches the
// given one. When the catalog is empty or the locale cannot be parsed,
// the identity translator is returned.
func (c *Catalog) Func(locale string) Func {
	if len(c.tags) == 0 {
		return Identity
	}
	desired, err := language.Parse(locale)
	if err != nil {
		return Identity
	}
	matcher := language.NewMatcher(c.tags)
	_, i, _ := matcher.Match(desired)
	entries := c.entries[c.tags[i]]
	return func(domain, message string, params map[string]any) string {
		if msgs, ok := entries[domain]; ok {
			if t, ok := msgs[message]; ok {
				return t
			}
		}
		return message
	}
}

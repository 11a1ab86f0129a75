package search

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

const otherCategory = "Other"

// CategoryTable maps interests to provider filters and picks a display
// category for each place.
type CategoryTable struct {
	DefaultFilter  string            `yaml:"default_filter"`
	FallbackFilter string            `yaml:"fallback_filter"`
	Interests      map[string]string `yaml:"interests"`
	Preferred      []string          `yaml:"preferred"`
	Generic        []string          `yaml:"generic"`

	generic map[string]struct{}
}

// DefaultCategories returns the embedded table.
func DefaultCategories() (*CategoryTable, error) {
	return ParseCategories(categoriesYAML)
}

// ParseCategories decodes a YAML category table.
func ParseCategories(data []byte) (*CategoryTable, error) {
	var t CategoryTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse category table: %w", err)
	}
	if t.DefaultFilter == "" || t.FallbackFilter == "" {
		return nil, fmt.Errorf("category table needs default_filter and fallback_filter")
	}
	t.generic = make(map[string]struct{}, len(t.Generic))
	for _, g := range t.Generic {
		t.generic[g] = struct{}{}
	}
	return &t, nil
}

// FilterFor maps an interest tag to a category filter. Tags match exactly;
// unknown and empty tags get the broad default.
func (t *CategoryTable) FilterFor(interest string) string {
	if f, ok := t.Interests[strings.TrimSpace(interest)]; ok && f != "" {
		return f
	}
	return t.DefaultFilter
}

// PickCategory chooses the display category of a place: the first preferred
// tag it carries, else its first non-generic tag, else its first tag.
func (t *CategoryTable) PickCategory(categories []string) string {
	if len(categories) == 0 {
		return otherCategory
	}
	have := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		have[c] = struct{}{}
	}
	for _, p := range t.Preferred {
		if _, ok := have[p]; ok {
			return Humanize(p)
		}
	}
	for _, c := range categories {
		if _, generic := t.generic[c]; !generic {
			return Humanize(c)
		}
	}
	return Humanize(categories[0])
}

// Humanize turns "tourism.sights" into "Tourism Sights". Dots become spaces
// and the first letter of every word is upper-cased; underscores are part
// of a word, so "theme_park" becomes "Theme_park".
func Humanize(category string) string {
	var b strings.Builder
	b.Grow(len(category))
	prevWord := false
	for _, r := range category {
		if r == '.' {
			r = ' '
		}
		word := isWordRune(r)
		if word && !prevWord {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
		prevWord = word
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

package issue

import (
	"sort"

	"golang.org/x/text/language"
)

// LocalizedText maps BCP 47 language tags to text.
type LocalizedText map[string]string

// Get returns the text best matching the requested language, falling back to
// English and then to any available translation.
func (t LocalizedText) Get(want language.Tag) string {
	if len(t) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]language.Tag, 0, len(keys))
	parsed := make([]string, 0, len(keys))
	for _, k := range keys {
		tag, err := language.Parse(k)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		parsed = append(parsed, k)
	}
	if len(tags) > 0 {
		_, idx, conf := language.NewMatcher(tags).Match(want)
		if conf != language.No {
			return t[parsed[idx]]
		}
	}
	if v, ok := t["en"]; ok {
		return v
	}
	return t[keys[0]]
}

// Publication is a list or document that may be annexed to issues.
type Publication struct {
	ID    string        `json:"id" yaml:"id"`
	Title LocalizedText `json:"title" yaml:"title"`
}

// DisplayTitle returns the localized title, or the id when no title exists.
func (p Publication) DisplayTitle(lang language.Tag) string {
	if title := p.Title.Get(lang); title != "" {
		return title
	}
	return p.ID
}

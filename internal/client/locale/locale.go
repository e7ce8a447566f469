// Package locale negotiates the UI language of the client.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is used when no source yields a supported language.
const Default = "en"

// PreferenceKey ключ в PreferenceStore для сохраненного языка
const PreferenceKey = "locale"

// Supported lists the locales the platform ships translations for.
// The first entry is the fallback of the matcher.
var Supported = []language.Tag{
	language.English,
	language.French,
	language.Spanish,
	language.Arabic,
}

// Resolver picks a supported locale from candidate sources.
type Resolver struct {
	matcher language.Matcher
	tags    []language.Tag
}

// NewResolver creates a resolver over Supported
func NewResolver() *Resolver {
	return &Resolver{
		matcher: language.NewMatcher(Supported),
		tags:    Supported,
	}
}

// Resolve returns the first source that maps to a supported locale.
// Sources are given in priority order, e.g. explicit flag, stored
// preference, system LANG. Empty and unparsable sources are skipped.
func (r *Resolver) Resolve(sources ...string) string {
	for _, src := range sources {
		if code := r.Normalize(src); code != "" {
			return code
		}
	}
	return Default
}

// Normalize maps a single locale string ("fr", "fr-CA", "fr_FR.UTF-8")
// to a supported base code, or "" if it does not match any.
func (r *Resolver) Normalize(src string) string {
	tag, ok := parse(src)
	if !ok {
		return ""
	}

	_, idx, conf := r.matcher.Match(tag)
	if conf < language.High {
		return ""
	}

	base, _ := r.tags[idx].Base()
	return base.String()
}

// parse приводит POSIX-формат (fr_FR.UTF-8) к BCP 47 и парсит его
func parse(src string) (language.Tag, bool) {
	src = strings.TrimSpace(src)
	if i := strings.IndexAny(src, ".@"); i >= 0 {
		src = src[:i]
	}
	src = strings.ReplaceAll(src, "_", "-")
	if src == "" {
		return language.Und, false
	}

	tag, err := language.Parse(src)
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}

// LoginPath returns the login entry point for the given locale.
func LoginPath(code string) string {
	if code == "" {
		code = Default
	}
	return "/" + code + "/login"
}

package client

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Locale identifies an audio or subtitle language, e.g. "ja-JP" or "en-US".
type Locale string

// ParseLocale validates and canonicalizes a locale string.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return Locale(tag.String()), nil
}

// Human returns a human-readable English name for the locale, e.g.
// "Japanese" for "ja-JP". The raw locale string is returned when the tag
// cannot be parsed.
func (l Locale) Human() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return string(l)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return string(l)
}

func (l Locale) String() string {
	return string(l)
}

// SystemLocale derives a locale from the LANG environment variable,
// falling back to "en-US".
func SystemLocale() Locale {
	lang := os.Getenv("LANG")
	if i := strings.IndexByte(lang, '.'); i >= 0 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	if l, err := ParseLocale(lang); err == nil {
		return l
	}
	return "en-US"
}

func containsLocale(locales []Locale, l Locale) bool {
	for _, candidate := range locales {
		if candidate == l {
			return true
		}
	}
	return false
}

// HasAudioLocale reports whether l appears in locales.
func HasAudioLocale(locales []Locale, l Locale) bool {
	return containsLocale(locales, l)
}

// Package locale resolves the preferred UI locale for a request.
//
// A request path may carry a leading locale segment (/en/pos). When present
// that segment is authoritative; when absent the engine negotiates against
// the client's Accept-Language preferences and redirects to the localized
// path. The resolved tag travels with the request context, never in global
// state.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locales is the immutable, process-wide set of supported locales. Built
// once at startup; safe for concurrent use without locking.
type Locales struct {
	tags    []language.Tag
	matcher language.Matcher
}

// New parses the ordered locale tag list. The first entry is the default
// locale used when negotiation finds no match.
func New(tags []string) (*Locales, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("locale: at least one supported tag is required")
	}
	parsed := make([]language.Tag, 0, len(tags))
	for _, raw := range tags {
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("locale: parse tag %q: %w", raw, err)
		}
		parsed = append(parsed, tag)
	}
	return &Locales{
		tags:    parsed,
		matcher: language.NewMatcher(parsed),
	}, nil
}

// Default returns the default locale tag.
func (l *Locales) Default() language.Tag {
	return l.tags[0]
}

// Supported returns the supported tags in configuration order.
func (l *Locales) Supported() []language.Tag {
	return l.tags
}

// Split checks whether path begins with a supported locale segment. When it
// does, the segment is authoritative: Split returns the tag and the
// locale-free remainder used by every downstream component. The remainder
// is never empty; stripping /en yields /.
func (l *Locales) Split(path string) (language.Tag, string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	segment := trimmed
	rest := "/"
	if idx := strings.IndexByte(trimmed, '/'); idx != -1 {
		segment = trimmed[:idx]
		rest = trimmed[idx:]
	}
	if segment == "" {
		return language.Und, path, false
	}
	for _, tag := range l.tags {
		if strings.EqualFold(segment, tag.String()) {
			return tag, rest, true
		}
	}
	return language.Und, path, false
}

// Negotiate picks the supported locale best matching the Accept-Language
// header. An empty or malformed header yields the default locale.
func (l *Locales) Negotiate(acceptLanguage string) language.Tag {
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" {
		return l.Default()
	}
	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return l.Default()
	}
	// Match can return a synthetic tag with extensions; index back into the
	// supported list to keep tags canonical.
	_, idx, _ := l.matcher.Match(prefs...)
	return l.tags[idx]
}

// RedirectPath localizes a path that lacked a locale segment:
// /{tag}{path}, with the root path collapsing to /{tag}.
func (l *Locales) RedirectPath(tag language.Tag, path string) string {
	if path == "/" || path == "" {
		return "/" + tag.String()
	}
	return "/" + tag.String() + path
}

// Package placeholder substitutes {{KEY}} tokens in questionnaire text.
package placeholder

import (
	"regexp"
	"strings"
)

// Well-known keys used by the built-in content.
const (
	KeyOwnName   = "Y" // the caregiver answering the questionnaire
	KeyCaredName = "X" // the person they care for
)

var tokenRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Lookup is a source of placeholder values.
type Lookup interface {
	Lookup(key string) (string, bool)
}

// Values is a Lookup backed by a map.
type Values map[string]string

// Lookup implements Lookup.
func (v Values) Lookup(key string) (string, bool) {
	s, ok := v[key]
	return s, ok
}

// Chain consults each Lookup in order and returns the first non-empty value.
type Chain []Lookup

// Lookup implements Lookup.
func (c Chain) Lookup(key string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Lookup(key); ok && Sanitize(v) != "" {
			return v, true
		}
	}
	return "", false
}

// Context carries the value sources consulted for each token, in priority
// order. Any source may be nil.
type Context struct {
	// Overrides are explicit in-memory values, such as names captured
	// earlier in the running session.
	Overrides Lookup

	// Guest is locally stored progress from before an account exists.
	Guest Lookup

	// Profile is the signed-in user's profile.
	Profile Lookup
}

// DefaultFallbacks are the humanized values used when no source has a key.
func DefaultFallbacks() map[string]string {
	return map[string]string{
		KeyOwnName:   "Cuidadores",
		KeyCaredName: "la persona que acompañas",
	}
}

// Resolver replaces tokens using a Context and a fallback table.
type Resolver struct {
	fallbacks map[string]string
}

// New returns a Resolver with the given fallback table. A nil table uses
// DefaultFallbacks.
func New(fallbacks map[string]string) *Resolver {
	if fallbacks == nil {
		fallbacks = DefaultFallbacks()
	}
	return &Resolver{fallbacks: fallbacks}
}

// Resolve replaces every {{KEY}} token in text. For each key the first
// non-empty value among ctx.Overrides, ctx.Guest and ctx.Profile wins;
// otherwise the fallback for the key is used, or the key itself.
func (r *Resolver) Resolve(text string, ctx Context) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		key := tokenRe.FindStringSubmatch(tok)[1]
		return r.Value(key, ctx)
	})
}

// Value resolves a single key through the cascade.
func (r *Resolver) Value(key string, ctx Context) string {
	for _, src := range []Lookup{ctx.Overrides, ctx.Guest, ctx.Profile} {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok {
			if v = Sanitize(v); v != "" {
				return v
			}
		}
	}
	if v, ok := r.fallbacks[key]; ok {
		return v
	}
	return key
}

// Keys returns the distinct keys referenced by text, in order of appearance.
func Keys(text string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range tokenRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// Sanitize trims s and collapses internal whitespace runs to one space.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

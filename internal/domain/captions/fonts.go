package captions

import (
	"fmt"
	"sort"
	"strings"
)

// Font maps a selectable key to a concrete renderable family.
type Font struct {
	Key         string
	Family      string
	Description string
}

// UnsupportedFontError is a caller error; it enumerates the valid keys so the
// caller can fix the request without digging through docs.
type UnsupportedFontError struct {
	Key   string
	Valid []string
}

func (e *UnsupportedFontError) Error() string {
	return fmt.Sprintf("unsupported font %q, valid keys: %s", e.Key, strings.Join(e.Valid, ", "))
}

// Registry is an immutable font table injected at construction. No
// process-wide mutable state.
type Registry struct {
	fonts map[string]Font
}

// DefaultRegistry returns the product's five supported caption fonts.
func DefaultRegistry() Registry {
	fonts := []Font{
		{Key: "komika", Family: "Komika Axis", Description: "Bold comic style, the short-form default"},
		{Key: "montserrat", Family: "Montserrat", Description: "Clean geometric sans"},
		{Key: "poppins", Family: "Poppins", Description: "Rounded modern sans"},
		{Key: "bangers", Family: "Bangers", Description: "Loud display font for punchy captions"},
		{Key: "roboto", Family: "Roboto", Description: "Neutral fallback"},
	}
	m := make(map[string]Font, len(fonts))
	for _, f := range fonts {
		m[f.Key] = f
	}
	return Registry{fonts: m}
}

// Resolve returns the font for key, or an UnsupportedFontError listing every
// valid key.
func (r Registry) Resolve(key string) (Font, error) {
	if f, ok := r.fonts[strings.ToLower(strings.TrimSpace(key))]; ok {
		return f, nil
	}
	return Font{}, &UnsupportedFontError{Key: key, Valid: r.Keys()}
}

// Keys lists the supported font keys, sorted for stable messages.
func (r Registry) Keys() []string {
	out := make([]string, 0, len(r.fonts))
	for k := range r.fonts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fonts lists the registry entries sorted by key, for the fonts listing
// endpoint and CLI help.
func (r Registry) Fonts() []Font {
	out := make([]Font, 0, len(r.fonts))
	for _, k := range r.Keys() {
		out = append(out, r.fonts[k])
	}
	return out
}

// Package language defines the closed set of languages the assistant speaks.
package language

import "strings"

// Code is an ISO-639-1 language code restricted to the supported set.
type Code string

const (
	English Code = "en"
	Hindi   Code = "hi"

	// Default is used whenever a language cannot be determined or is unsupported.
	Default = English
)

type profile struct {
	name   string
	notice string
}

var profiles = map[Code]profile{
	English: {name: "English", notice: "Response too long."},
	Hindi:   {name: "Hindi", notice: "उत्तर बहुत लंबा है।"},
}

// Supported returns the languages in a stable order.
func Supported() []Code {
	return []Code{English, Hindi}
}

// IsSupported reports whether c is in the supported set.
func IsSupported(c Code) bool {
	_, ok := profiles[c]
	return ok
}

// Clamp coerces an arbitrary code into the supported set. Anything unknown,
// including the empty string, becomes Default.
func Clamp(raw string) Code {
	c := Code(strings.ToLower(strings.TrimSpace(raw)))
	if IsSupported(c) {
		return c
	}
	return Default
}

// Name returns the English display name used in prompts ("English", "Hindi").
func (c Code) Name() string {
	if p, ok := profiles[c]; ok {
		return p.name
	}
	return profiles[Default].name
}

// ShortNotice returns the fixed message spoken when a reply runs too long.
func (c Code) ShortNotice() string {
	if p, ok := profiles[c]; ok {
		return p.notice
	}
	return profiles[Default].notice
}

func (c Code) String() string { return string(c) }

// FromName converts a full language name (as returned by some ASR APIs, e.g.
// "english") or a two-letter code to an ISO-639-1 code. The result is not
// clamped.
func FromName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) == 2 {
		return name
	}
	known := map[string]string{
		"english":    "en",
		"hindi":      "hi",
		"french":     "fr",
		"spanish":    "es",
		"german":     "de",
		"italian":    "it",
		"portuguese": "pt",
		"dutch":      "nl",
		"russian":    "ru",
		"japanese":   "ja",
		"korean":     "ko",
		"chinese":    "zh",
		"arabic":     "ar",
		"urdu":       "ur",
		"bengali":    "bn",
		"marathi":    "mr",
		"tamil":      "ta",
		"telugu":     "te",
	}
	if code, ok := known[name]; ok {
		return code
	}
	return name
}

// Package lang validates the language hint sent to the transcription API.
//
// Input is any BCP 47 tag ("pt-BR", "zh_Hant", "fra"); the API only takes
// the ISO 639-1 base ("pt", "zh", "fr").
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supported lists the base languages Whisper is documented to transcribe.
var supported = map[string]bool{
	"af": true, "ar": true, "az": true, "be": true, "bg": true, "bn": true,
	"bs": true, "ca": true, "cs": true, "cy": true, "da": true, "de": true,
	"el": true, "en": true, "es": true, "et": true, "fa": true, "fi": true,
	"fr": true, "gl": true, "gu": true, "he": true, "hi": true, "hr": true,
	"hu": true, "hy": true, "id": true, "is": true, "it": true, "ja": true,
	"kk": true, "kn": true, "ko": true, "lt": true, "lv": true, "mi": true,
	"mk": true, "ml": true, "mr": true, "ms": true, "ne": true, "nl": true,
	"no": true, "pa": true, "pl": true, "pt": true, "ro": true, "ru": true,
	"sk": true, "sl": true, "sr": true, "sv": true, "sw": true, "ta": true,
	"te": true, "th": true, "tl": true, "tr": true, "uk": true, "ur": true,
	"vi": true, "zh": true,
}

// Normalize lowercases a code and converts underscores to hyphens.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(lang string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(lang), "_", "-"))
}

// Parse returns the canonical tag for lang.
// Returns ErrInvalid if lang is malformed or its base language is not supported.
func Parse(lang string) (language.Tag, error) {
	tag, err := language.Parse(Normalize(lang))
	if err != nil {
		return language.Und, fmt.Errorf("invalid language code %q (use codes like 'en', 'fr', 'pt-BR'): %w",
			lang, ErrInvalid)
	}
	base, _ := tag.Base()
	if !supported[base.String()] {
		return language.Und, fmt.Errorf("unsupported language %q: %w", lang, ErrInvalid)
	}
	return tag, nil
}

// Validate checks if the language code is usable. Empty means auto-detect.
func Validate(lang string) error {
	if lang == "" {
		return nil
	}
	_, err := Parse(lang)
	return err
}

// BaseCode returns the ISO 639-1 code the API expects, or "" for auto-detect.
// Examples: "pt-BR" -> "pt", "zh_Hant" -> "zh", "fra" -> "fr"
func BaseCode(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := Parse(lang)
	if err != nil {
		return Normalize(lang)
	}
	base, _ := tag.Base()
	return base.String()
}

// DisplayName returns the English name of lang, e.g. "Brazilian Portuguese".
// Empty input reads as "auto-detect"; unknown input is returned as is.
func DisplayName(lang string) string {
	if lang == "" {
		return "auto-detect"
	}
	tag, err := Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}

// Supported returns the number of base languages accepted.
func Supported() int {
	return len(supported)
}

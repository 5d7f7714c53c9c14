package translate

import (
	"context"
	"errors"
)

// ErrTranslationFailure wraps every error produced by a translation backend.
// Callers match it with errors.Is and surface a retryable failure.
var ErrTranslationFailure = errors.New("translation failed")

// Translator is a machine translation backend. Language codes are ISO 639-1
// base codes ("en", "hi").
type Translator interface {
	// Translate returns text rendered in targetLang.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// CheckHealth reports whether the backend can serve requests.
	CheckHealth(ctx context.Context) error

	// SupportedLanguages lists the codes the backend accepts.
	SupportedLanguages(ctx context.Context) ([]string, error)
}

// Result is the outcome of one translation request.
type Result struct {
	TranslatedText string `json:"translatedText"`
	SourceText     string `json:"sourceText"`
	SourceLang     string `json:"sourceLang"`
	TargetLang     string `json:"targetLang"`
	// CharCount is the number of characters (runes) in SourceText.
	CharCount int `json:"charCount"`
}

package translate

import (
	"context"
	"strings"
	"time"
)

// phrases is the fixed demonstration table, keyed lower(text)|source|target.
var phrases = map[string]string{
	"hello|en|hi":        "नमस्ते",
	"hello|en|es":        "Hola",
	"hello|en|fr":        "Bonjour",
	"good morning|en|hi": "सुप्रभात",
	"good morning|en|es": "Buenos días",
	"good morning|en|fr": "Bonjour",
	"thank you|en|hi":    "धन्यवाद",
	"thank you|en|es":    "Gracias",
	"thank you|en|fr":    "Merci",
	"how are you|en|hi":  "आप कैसे हैं",
	"how are you|en|es":  "¿Cómo estás?",
	"how are you|en|fr":  "Comment allez-vous?",
	"welcome|en|hi":      "स्वागत है",
	"welcome|en|es":      "Bienvenido",
	"welcome|en|fr":      "Bienvenue",
}

// MockTranslator serves the phrase table and otherwise prefixes the text with
// the upper-cased target code, e.g. "[ES] text".
type MockTranslator struct {
	languages []string
	latency   time.Duration
}

// NewMockTranslator creates a mock backend. latency simulates a round trip.
func NewMockTranslator(languages []string, latency time.Duration) *MockTranslator {
	return &MockTranslator{languages: append([]string(nil), languages...), latency: latency}
}

func phraseKey(text, sourceLang, targetLang string) string {
	return strings.ToLower(text) + "|" + sourceLang + "|" + targetLang
}

// Translate implements Translator.
func (m *MockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if m.latency > 0 {
		t := time.NewTimer(m.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if out, ok := phrases[phraseKey(text, sourceLang, targetLang)]; ok {
		return out, nil
	}
	return "[" + strings.ToUpper(targetLang) + "] " + text, nil
}

// CheckHealth implements Translator.
func (m *MockTranslator) CheckHealth(ctx context.Context) error {
	return ctx.Err()
}

// SupportedLanguages implements Translator.
func (m *MockTranslator) SupportedLanguages(ctx context.Context) ([]string, error) {
	return append([]string(nil), m.languages...), nil
}

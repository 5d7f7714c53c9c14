package language

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// Engine names a detection implementation.
type Engine string

const (
	// EngineHeuristic is the ordered rule table.
	EngineHeuristic Engine = "heuristic"
	// EngineStatistical uses whatlanggo trigram models.
	EngineStatistical Engine = "whatlang"
)

// ParseEngine parses a detector engine name.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(s) {
	case "", "heuristic", "rules":
		return EngineHeuristic, nil
	case "whatlang", "whatlanggo", "statistical":
		return EngineStatistical, nil
	default:
		return "", fmt.Errorf("unknown detector engine: %s (supported: heuristic, whatlang)", s)
	}
}

// LanguageDetector is what the session needs from a detector.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (*Record, error)
}

// NewLanguageDetector builds the detector for engine.
func NewLanguageDetector(engine Engine, catalog *Catalog) (LanguageDetector, error) {
	switch engine {
	case EngineHeuristic:
		return NewDetector(catalog), nil
	case EngineStatistical:
		return NewStatisticalDetector(catalog), nil
	default:
		return nil, fmt.Errorf("unknown detector engine: %s", engine)
	}
}

// MinStatisticalConfidence is the whatlanggo confidence below which a guess
// is treated as no match.
const MinStatisticalConfidence = 0.5

var whatlangCodes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Hin: "hi",
	whatlanggo.Mar: "mr",
	whatlanggo.Ben: "bn",
	whatlanggo.Pan: "pa",
	whatlanggo.Guj: "gu",
	whatlanggo.Tam: "ta",
	whatlanggo.Tel: "te",
	whatlanggo.Kan: "kn",
	whatlanggo.Mal: "ml",
	whatlanggo.Urd: "ur",
	whatlanggo.Arb: "ar",
	whatlanggo.Spa: "es",
	whatlanggo.Fra: "fr",
	whatlanggo.Deu: "de",
	whatlanggo.Por: "pt",
	whatlanggo.Ita: "it",
	whatlanggo.Rus: "ru",
	whatlanggo.Cmn: "zh",
	whatlanggo.Jpn: "ja",
	whatlanggo.Kor: "ko",
}

// StatisticalDetector follows the Detector contract but ranks languages with
// whatlanggo. Unreliable guesses and languages outside the catalog fall back
// to English.
type StatisticalDetector struct {
	catalog *Catalog
}

// NewStatisticalDetector builds a whatlanggo-backed detector.
func NewStatisticalDetector(catalog *Catalog) *StatisticalDetector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &StatisticalDetector{catalog: catalog}
}

// Detect has the same short-input and fallback behavior as Detector.Detect.
func (d *StatisticalDetector) Detect(text string) (Record, bool) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinDetectRunes {
		return Record{}, false
	}
	info := whatlanggo.Detect(trimmed)
	if info.Confidence >= MinStatisticalConfidence {
		if code, ok := whatlangCodes[info.Lang]; ok {
			if rec, ok := d.catalog.ByCode(code); ok {
				return rec, true
			}
		}
	}
	return d.catalog.ByCode(DefaultCode)
}

// DetectLanguage implements LanguageDetector.
func (d *StatisticalDetector) DetectLanguage(ctx context.Context, text string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := d.Detect(text)
	observeDetection(EngineStatistical, rec.Code, ok)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

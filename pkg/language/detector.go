package language

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
)

// MinDetectRunes is the shortest trimmed input the detectors will look at.
const MinDetectRunes = 3

// DefaultCode is returned when no rule matches.
const DefaultCode = "en"

// Rule pairs a language code with the pattern that identifies it.
type Rule struct {
	Code    string
	Pattern *regexp.Regexp
}

// words builds an alternation of function words delimited by non-letters.
// regexp's \b is ASCII-only, which breaks on accented words.
func words(ws ...string) string {
	return `(?:^|[^\p{L}\p{M}])(?:` + strings.Join(ws, "|") + `)(?:[^\p{L}\p{M}]|$)`
}

func rule(code string, alternatives ...string) Rule {
	return Rule{Code: code, Pattern: regexp.MustCompile(strings.Join(alternatives, "|"))}
}

// DefaultRules is the ordered rule table. The first matching rule wins, so
// languages sharing a script are decided by position alone: Devanagari text is
// always Hindi (Marathi is never reached), Arabic-script text is always Urdu,
// and text containing kana is Japanese even when it also contains Han.
// Reordering this table changes detection results.
var DefaultRules = []Rule{
	rule("hi", `\p{Devanagari}`, words("hai", "nahi", "kya", "aap")),
	rule("mr", `\p{Devanagari}`, words("aahe", "aani", "nahi")),
	rule("bn", `\p{Bengali}`),
	rule("pa", `\p{Gurmukhi}`),
	rule("gu", `\p{Gujarati}`),
	rule("ta", `\p{Tamil}`),
	rule("te", `\p{Telugu}`),
	rule("kn", `\p{Kannada}`),
	rule("ml", `\p{Malayalam}`),
	rule("ur", `\p{Arabic}`),
	rule("ar", `\p{Arabic}`),
	rule("ja", `\p{Hiragana}`, `\p{Katakana}`),
	rule("zh", `\p{Han}`),
	rule("ko", `\p{Hangul}`),
	rule("ru", `\p{Cyrillic}`),
	rule("es", `[ñ¿¡]`, words("el", "los", "las", "que", "por", "para", "con", "una", "está", "estás", "hola", "gracias", "cómo", "muy", "pero", "buenos", "días")),
	rule("fr", `[œæ]`, words("le", "les", "est", "et", "je", "vous", "nous", "une", "bonjour", "merci", "avec", "pour", "dans", "très")),
	rule("de", `[äöüß]`, words("der", "das", "und", "ist", "nicht", "ich", "guten", "danke", "ein", "eine", "mit")),
	rule("pt", `[ãõ]`, words("não", "você", "obrigado", "obrigada", "olá", "uma", "com", "muito", "bom")),
	rule("it", words("ciao", "grazie", "buongiorno", "sono", "della", "questo", "perché", "il", "gli")),
}

// Detector guesses the language of a text from an ordered rule table.
// Detect is pure and safe for concurrent use.
type Detector struct {
	catalog *Catalog
	rules   []Rule
}

// NewDetector builds a detector over catalog using DefaultRules.
// A nil catalog means DefaultCatalog.
func NewDetector(catalog *Catalog) *Detector {
	return NewDetectorWithRules(catalog, DefaultRules)
}

// NewDetectorWithRules builds a detector with a custom rule table. Rules whose
// code is not in the catalog are dropped.
func NewDetectorWithRules(catalog *Catalog, rules []Rule) *Detector {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if catalog.Valid(r.Code) {
			kept = append(kept, r)
		}
	}
	return &Detector{catalog: catalog, rules: kept}
}

// Detect returns the best-guess language of text. It reports false when the
// trimmed text is shorter than MinDetectRunes; otherwise it returns the first
// matching rule's language, or English when nothing matches.
func (d *Detector) Detect(text string) (Record, bool) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinDetectRunes {
		return Record{}, false
	}
	normalized := cases.Lower(xlanguage.Und).String(trimmed)

	for _, r := range d.rules {
		if r.Pattern.MatchString(normalized) {
			return d.catalog.ByCode(r.Code)
		}
	}
	return d.catalog.ByCode(DefaultCode)
}

// DetectLanguage is Detect shaped for asynchronous callers. It returns nil when
// no language is detected.
func (d *Detector) DetectLanguage(ctx context.Context, text string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := d.Detect(text)
	observeDetection(EngineHeuristic, rec.Code, ok)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Rules returns the effective rule order as language codes.
func (d *Detector) Rules() []string {
	codes := make([]string, len(d.rules))
	for i, r := range d.rules {
		codes[i] = r.Code
	}
	return codes
}

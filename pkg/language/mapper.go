package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

// LanguageMapper handles conversion between the language tags clients send
// and the base codes the catalog and translation backends use.
// Clients may send "EN", "en-US" or "fr_CA" (BCP 47 or POSIX style), while
// backends expect ISO 639-1 codes like "en" and "fr".
type LanguageMapper struct{}

// NewLanguageMapper creates a new language mapper instance.
func NewLanguageMapper() *LanguageMapper {
	return &LanguageMapper{}
}

// ToBackendCode converts a client language tag to backend format.
// Examples:
//   - "EN" -> "en"
//   - "fr-CA" -> "fr"
//   - "pt_BR" -> "pt"
//   - "zh-Hant-TW" -> "zh"
func (lm *LanguageMapper) ToBackendCode(tag string) string {
	raw := strings.TrimSpace(tag)
	if raw == "" {
		return ""
	}
	normalized := strings.ReplaceAll(raw, "_", "-")

	if t, err := xlanguage.Parse(normalized); err == nil {
		if base, conf := t.Base(); conf != xlanguage.No {
			return base.String()
		}
	}

	// Unparseable tag: fall back to the text before the first separator.
	lang := strings.ToLower(normalized)
	if idx := strings.IndexAny(lang, "-"); idx >= 0 {
		lang = lang[:idx]
	}
	return lang
}

// ToRecognitionTag converts a code to the regional locale speech engines
// expect. A missing region is filled with the most likely one:
//   - "en" -> "en-US"
//   - "hi" -> "hi-IN"
//   - "pt" -> "pt-BR"
//   - "en-GB" -> "en-GB"
//
// Unparseable input is returned lower-cased.
func (lm *LanguageMapper) ToRecognitionTag(code string) string {
	raw := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	t, err := xlanguage.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	base, bconf := t.Base()
	region, rconf := t.Region()
	if bconf == xlanguage.No || rconf == xlanguage.No {
		return t.String()
	}
	tag, err := xlanguage.Compose(base, region)
	if err != nil {
		return t.String()
	}
	return tag.String()
}

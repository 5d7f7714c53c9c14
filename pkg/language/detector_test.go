package language

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_ShortInputIsAbsent(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	for _, text := range []string{"", "   ", "a", "ab", "  ab  ", "\tहि\n", "你好"} {
		_, ok := d.Detect(text)
		assert.False(t, ok, "expected no detection for %q", text)
	}
}

func TestDetect_DefaultsToEnglish(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	for _, text := range []string{"hello", "good morning", "How are you", "xyz123", "welcome"} {
		rec, ok := d.Detect(text)
		require.True(t, ok, text)
		assert.Equal(t, "en", rec.Code, text)
	}
}

func TestDetect_Scripts(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	cases := map[string]string{
		"नमस्ते दुनिया":     "hi",
		"ভালো আছি":         "bn",
		"ਸਤ ਸ੍ਰੀ ਅਕਾਲ":     "pa",
		"કેમ છો":           "gu",
		"வணக்கம்":          "ta",
		"నమస్కారం":         "te",
		"ನಮಸ್ಕಾರ":          "kn",
		"നമസ്കാരം":         "ml",
		"こんにちは":            "ja",
		"日本語のテキスト":         "ja",
		"你好世界":             "zh",
		"안녕하세요":            "ko",
		"привет мир":       "ru",
		"Hola, ¿qué tal?":  "es",
		"Bonjour le monde": "fr",
		"Guten Tag":        "de",
		"Obrigado, amigo":  "pt",
		"Ciao bella":       "it",
	}
	for text, want := range cases {
		rec, ok := d.Detect(text)
		require.True(t, ok, text)
		assert.Equal(t, want, rec.Code, text)
	}
}

func TestDetect_SharedScriptResolvedByOrder(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)

	// Marathi function words do not help: Hindi comes first and matches the script.
	rec, ok := d.Detect("मी घरी आहे")
	require.True(t, ok)
	assert.Equal(t, "hi", rec.Code)

	rec, ok = d.Detect("مرحبا بالعالم")
	require.True(t, ok)
	assert.Equal(t, "ur", rec.Code)
}

func TestDetect_CaseInsensitive(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	rec, ok := d.Detect("  HOLA AMIGOS  ")
	require.True(t, ok)
	assert.Equal(t, "es", rec.Code)
}

func TestDetect_RuleOrderIsStable(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)
	codes := d.Rules()
	index := func(code string) int {
		for i, c := range codes {
			if c == code {
				return i
			}
		}
		return -1
	}
	assert.Less(t, index("hi"), index("mr"))
	assert.Less(t, index("ur"), index("ar"))
	assert.Less(t, index("ja"), index("zh"))
	assert.Less(t, index("es"), index("fr"))
}

func TestDetect_RulesOutsideCatalogAreDropped(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog([]Record{{ID: 1, Code: "en", Name: "English"}, {ID: 2, Code: "mr", Name: "Marathi"}})
	require.NoError(t, err)

	d := NewDetector(catalog)
	assert.Equal(t, []string{"mr"}, d.Rules())

	rec, ok := d.Detect("मी घरी आहे")
	require.True(t, ok)
	assert.Equal(t, "mr", rec.Code)
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil)

	rec, err := d.DetectLanguage(context.Background(), "hi")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = d.DetectLanguage(context.Background(), "bonjour")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "fr", rec.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.DetectLanguage(ctx, "bonjour")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatisticalDetector(t *testing.T) {
	t.Parallel()

	d := NewStatisticalDetector(nil)

	_, ok := d.Detect("  ")
	assert.False(t, ok)

	rec, ok := d.Detect("Это очень длинное предложение на русском языке, которое легко распознать.")
	require.True(t, ok)
	assert.Equal(t, "ru", rec.Code)
}

func TestParseEngine(t *testing.T) {
	t.Parallel()

	e, err := ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineHeuristic, e)

	e, err = ParseEngine("WhatLang")
	require.NoError(t, err)
	assert.Equal(t, EngineStatistical, e)

	_, err = ParseEngine("neural")
	assert.Error(t, err)
}

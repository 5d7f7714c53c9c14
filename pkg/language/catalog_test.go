package language

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	require.GreaterOrEqual(t, c.Len(), 15)

	en, ok := c.ByCode("en")
	require.True(t, ok)
	assert.Equal(t, "English", en.Name)

	hi, ok := c.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "hi", hi.Code)

	_, ok = c.ByCode("xx")
	assert.False(t, ok)
	assert.True(t, c.Valid("fr"))
	assert.False(t, c.Valid(""))
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	all := c.All()
	all[0].Name = "mutated"

	en, _ := c.ByCode(all[0].Code)
	assert.NotEqual(t, "mutated", en.Name)
}

func TestCatalog_Popular(t *testing.T) {
	t.Parallel()

	popular := DefaultCatalog().Popular()
	codes := make([]string, 0, len(popular))
	for _, r := range popular {
		codes = append(codes, r.Code)
	}
	assert.ElementsMatch(t, PopularCodes, codes)
}

func TestCatalog_Search(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()

	res := c.Search("HINDI")
	require.Len(t, res, 1)
	assert.Equal(t, "hi", res[0].Code)

	res = c.Search("Español")
	require.Len(t, res, 1)
	assert.Equal(t, "es", res[0].Code)

	assert.Empty(t, c.Search("klingon"))
}

func TestNewCatalog_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog([]Record{{ID: 1, Code: "en"}, {ID: 2, Code: "en"}})
	assert.Error(t, err)

	_, err = NewCatalog([]Record{{ID: 1, Code: "en"}, {ID: 1, Code: "fr"}})
	assert.Error(t, err)

	_, err = NewCatalog([]Record{{ID: 1}})
	assert.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "languages.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"code":"en","name":"English","nativeName":"English","flag":"x"}]`), 0o644))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLanguageMapper_ToBackendCode(t *testing.T) {
	t.Parallel()

	lm := NewLanguageMapper()
	cases := map[string]string{
		"EN":         "en",
		"en":         "en",
		"fr-CA":      "fr",
		"pt_BR":      "pt",
		"zh-Hant-TW": "zh",
		"  hi  ":     "hi",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, lm.ToBackendCode(in), in)
	}
}

func TestLanguageMapper_ToRecognitionTag(t *testing.T) {
	t.Parallel()

	lm := NewLanguageMapper()
	cases := map[string]string{
		"en":    "en-US",
		"hi":    "hi-IN",
		"es":    "es-ES",
		"fr":    "fr-FR",
		"ja":    "ja-JP",
		"pt":    "pt-BR",
		"en-GB": "en-GB",
		"fr_CA": "fr-CA",
		"!!":    "!!",
	}
	for in, want := range cases {
		assert.Equal(t, want, lm.ToRecognitionTag(in), in)
	}
}

package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/language"
)

// Client is the stateless front for a Translator. It normalises language
// tags, splits long texts, records metrics and wraps backend errors in
// ErrTranslationFailure.
type Client struct {
	translator Translator
	engine     string
	mapper     *language.LanguageMapper
	chunkRunes int
	logger     *logrus.Logger
}

// NewClient wraps translator. chunkRunes <= 0 sends every text in one call.
func NewClient(translator Translator, engine EngineType, chunkRunes int, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	if engine == "" {
		engine = EngineMock
	}
	return &Client{
		translator: translator,
		engine:     string(engine),
		mapper:     language.NewLanguageMapper(),
		chunkRunes: chunkRunes,
		logger:     logger,
	}
}

// Engine names the backend in use.
func (c *Client) Engine() string { return c.engine }

// Translate renders text in targetLang. The returned Result echoes the
// caller's text and codes.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, error) {
	src := c.mapper.ToBackendCode(sourceLang)
	tgt := c.mapper.ToBackendCode(targetLang)

	log := c.logger.WithFields(logrus.Fields{
		"engine":      c.engine,
		"source_lang": src,
		"target_lang": tgt,
		"text_length": len(text),
	})
	log.Debug("Translating text")

	start := time.Now()
	chunks := splitIntoChunks(text, c.chunkRunes)
	if len(chunks) > 1 {
		log.WithField("chunks", len(chunks)).Info("Translating long text in chunks")
	}

	var out strings.Builder
	for i, chunk := range chunks {
		translated, err := c.translateChunk(ctx, chunk, src, tgt)
		if err != nil {
			recordTranslation(c.engine, time.Since(start), err, len(text), 0, len(chunks))
			log.WithError(err).WithField("chunk", i+1).Error("Translation failed")
			return Result{}, fmt.Errorf("%w: %w", ErrTranslationFailure, err)
		}
		out.WriteString(translated)
	}

	result := Result{
		TranslatedText: out.String(),
		SourceText:     text,
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		CharCount:      utf8.RuneCountInString(text),
	}
	duration := time.Since(start)
	recordTranslation(c.engine, duration, nil, len(text), len(result.TranslatedText), len(chunks))
	log.WithField("duration_ms", duration.Milliseconds()).Info("Translation completed successfully")
	return result, nil
}

func (c *Client) translateChunk(ctx context.Context, chunk, src, tgt string) (string, error) {
	lead, core, trail := trimEdges(chunk)
	if core == "" {
		return chunk, nil
	}
	translated, err := c.translator.Translate(ctx, core, src, tgt)
	if err != nil {
		return "", err
	}
	return lead + translated + trail, nil
}

// CheckHealth reports backend health, wrapping failures in
// ErrTranslationFailure.
func (c *Client) CheckHealth(ctx context.Context) error {
	if err := c.translator.CheckHealth(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrTranslationFailure, err)
	}
	return nil
}

// SupportedLanguages lists the backend's language codes.
func (c *Client) SupportedLanguages(ctx context.Context) ([]string, error) {
	codes, err := c.translator.SupportedLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranslationFailure, err)
	}
	return codes, nil
}

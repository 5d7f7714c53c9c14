package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultArgosURL is where a local Argos Translate service listens.
	DefaultArgosURL = "http://127.0.0.1:5000"
	// DefaultArgosTimeout bounds one request.
	DefaultArgosTimeout = 30 * time.Second
)

// argosFallbackLanguages is reported when the service has no /languages route.
var argosFallbackLanguages = []string{
	"en", "es", "fr", "de", "it", "pt", "ru", "zh", "ja", "ko",
	"ar", "hi", "ur", "bn", "tr", "pl", "nl", "sv",
}

// ArgosClient talks to an Argos Translate HTTP wrapper.
type ArgosClient struct {
	endpoint jsonEndpoint
}

// NewArgosClient creates a client. Empty baseURL and zero timeout select the
// defaults.
func NewArgosClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *ArgosClient {
	if baseURL == "" {
		baseURL = DefaultArgosURL
	}
	if timeout <= 0 {
		timeout = DefaultArgosTimeout
	}
	return &ArgosClient{endpoint: newJSONEndpoint(string(EngineArgos), baseURL, timeout, logger)}
}

type argosTranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type argosTranslateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate implements Translator.
func (c *ArgosClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var resp argosTranslateResponse
	err := c.endpoint.do(ctx, http.MethodPost, "/translate", argosTranslateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("argos: %w", err)
	}
	return resp.TranslatedText, nil
}

// CheckHealth probes /health. A wrapper without that route (404) counts as
// healthy as long as it answers.
func (c *ArgosClient) CheckHealth(ctx context.Context) error {
	err := c.endpoint.do(ctx, http.MethodGet, "/health", nil, nil)
	var be *backendError
	if errors.As(err, &be) && be.Status == http.StatusNotFound {
		c.endpoint.logger.Debug("Argos service has no /health route, treating as healthy")
		return nil
	}
	if err != nil {
		return fmt.Errorf("argos health check: %w", err)
	}
	return nil
}

// SupportedLanguages asks the service and falls back to the common Argos
// package set.
func (c *ArgosClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	var codes []string
	err := c.endpoint.do(ctx, http.MethodGet, "/languages", nil, &codes)
	if err == nil && len(codes) > 0 {
		return codes, nil
	}
	var be *backendError
	if err != nil && !errors.As(err, &be) {
		return nil, fmt.Errorf("argos languages: %w", err)
	}
	return append([]string(nil), argosFallbackLanguages...), nil
}

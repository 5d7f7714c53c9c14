package translate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultLibreTranslateURL is where a local LibreTranslate listens.
	DefaultLibreTranslateURL = "http://localhost:5000"
	// DefaultLibreTranslateTimeout bounds one request.
	DefaultLibreTranslateTimeout = 30 * time.Second
)

// LibreTranslateClient talks to the LibreTranslate REST API.
type LibreTranslateClient struct {
	endpoint jsonEndpoint
	apiKey   string
}

// NewLibreTranslateClient creates a client. Empty baseURL and zero timeout
// select the defaults.
func NewLibreTranslateClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *LibreTranslateClient {
	if baseURL == "" {
		baseURL = DefaultLibreTranslateURL
	}
	if timeout <= 0 {
		timeout = DefaultLibreTranslateTimeout
	}
	return &LibreTranslateClient{
		endpoint: newJSONEndpoint(string(EngineLibreTranslate), baseURL, timeout, logger),
		apiKey:   apiKey,
	}
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type libreLanguage struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets,omitempty"`
}

// Translate implements Translator.
func (c *LibreTranslateClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var resp libreTranslateResponse
	err := c.endpoint.do(ctx, http.MethodPost, "/translate", libreTranslateRequest{
		Q:      text,
		Source: sourceLang,
		Target: targetLang,
		Format: "text",
		APIKey: c.apiKey,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("libretranslate: %w", err)
	}
	return resp.TranslatedText, nil
}

// CheckHealth uses /languages, which every LibreTranslate version serves.
func (c *LibreTranslateClient) CheckHealth(ctx context.Context) error {
	if err := c.endpoint.do(ctx, http.MethodGet, "/languages", nil, nil); err != nil {
		return fmt.Errorf("libretranslate health check: %w", err)
	}
	return nil
}

// SupportedLanguages implements Translator.
func (c *LibreTranslateClient) SupportedLanguages(ctx context.Context) ([]string, error) {
	var langs []libreLanguage
	if err := c.endpoint.do(ctx, http.MethodGet, "/languages", nil, &langs); err != nil {
		return nil, fmt.Errorf("libretranslate languages: %w", err)
	}
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.Code)
	}
	return codes, nil
}

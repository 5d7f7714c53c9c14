package translate

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// EngineType names a translation backend.
type EngineType string

const (
	// EngineMock answers from a small phrase table and tags everything else.
	EngineMock EngineType = "mock"
	// EngineLibreTranslate uses a LibreTranslate server.
	EngineLibreTranslate EngineType = "libretranslate"
	// EngineArgos uses an Argos Translate HTTP service.
	EngineArgos EngineType = "argos"
)

// Config selects and configures a Translator.
type Config struct {
	Engine EngineType
	// BaseURL of the HTTP backends. Ignored by the mock engine.
	BaseURL string
	// APIKey is sent to LibreTranslate when set.
	APIKey string
	// Timeout bounds a single backend HTTP request.
	Timeout time.Duration
	// MockLatency delays every mock translation.
	MockLatency time.Duration
	// Languages are the codes the mock engine reports as supported.
	Languages []string
	Logger    *logrus.Logger
}

// NewTranslator builds the backend named by cfg.Engine.
func NewTranslator(cfg Config) (Translator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	cfg.Logger.WithFields(logrus.Fields{
		"engine":   cfg.Engine,
		"base_url": cfg.BaseURL,
	}).Info("Creating translator instance")

	switch cfg.Engine {
	case EngineMock, "":
		return NewMockTranslator(cfg.Languages, cfg.MockLatency), nil
	case EngineLibreTranslate:
		return NewLibreTranslateClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout, cfg.Logger), nil
	case EngineArgos:
		return NewArgosClient(cfg.BaseURL, cfg.Timeout, cfg.Logger), nil
	default:
		cfg.Logger.WithField("engine", cfg.Engine).Error("Unknown translation engine")
		return nil, fmt.Errorf("unknown translation engine: %s", cfg.Engine)
	}
}

// ParseEngineType parses an engine name case-insensitively.
func ParseEngineType(s string) (EngineType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mock":
		return EngineMock, nil
	case "libretranslate", "libre":
		return EngineLibreTranslate, nil
	case "argos":
		return EngineArgos, nil
	default:
		return "", fmt.Errorf("unknown engine type: %s (supported: mock, libretranslate, argos)", s)
	}
}

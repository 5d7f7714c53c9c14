// Package config loads server configuration from an optional TOML file,
// LINGUAFLOW_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	"github.com/dasmlab/linguaflow/pkg/translate"
	"github.com/dasmlab/linguaflow/pkg/voice"
)

// EnvPrefix prefixes every environment override, e.g. LINGUAFLOW_MT_ENGINE.
const EnvPrefix = "LINGUAFLOW"

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MTConfig selects the machine translation backend.
type MTConfig struct {
	Engine      string        `mapstructure:"engine"`
	URL         string        `mapstructure:"url"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ChunkRunes  int           `mapstructure:"chunk_runes"`
	MockLatency time.Duration `mapstructure:"mock_latency"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type LanguageConfig struct {
	CatalogFile string `mapstructure:"catalog_file"`
	Detector    string `mapstructure:"detector"`
}

type SessionConfig struct {
	Debounce          time.Duration `mapstructure:"debounce"`
	MaxChars          int           `mapstructure:"max_chars"`
	SourceLang        string        `mapstructure:"source_lang"`
	TargetLang        string        `mapstructure:"target_lang"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type VoiceConfig struct {
	Engine string `mapstructure:"engine"`
}

// Config is the complete server configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	MT       MTConfig       `mapstructure:"mt"`
	History  StoreConfig    `mapstructure:"history"`
	Settings StoreConfig    `mapstructure:"settings"`
	Language LanguageConfig `mapstructure:"language"`
	Session  SessionConfig  `mapstructure:"session"`
	Voice    VoiceConfig    `mapstructure:"voice"`
}

// setDefaults registers every key, which also makes AutomaticEnv see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")

	v.SetDefault("grpc.port", 50051)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("mt.engine", string(translate.EngineMock))
	v.SetDefault("mt.url", "")
	v.SetDefault("mt.api_key", "")
	v.SetDefault("mt.timeout", 30*time.Second)
	v.SetDefault("mt.chunk_runes", 2000)
	v.SetDefault("mt.mock_latency", time.Duration(0))

	v.SetDefault("history.backend", string(history.BackendMemory))
	v.SetDefault("history.path", "")
	v.SetDefault("settings.backend", "memory")
	v.SetDefault("settings.path", "")

	v.SetDefault("language.catalog_file", "")
	v.SetDefault("language.detector", string(language.EngineHeuristic))

	v.SetDefault("session.debounce", 500*time.Millisecond)
	v.SetDefault("session.max_chars", 5000)
	v.SetDefault("session.source_lang", "en")
	v.SetDefault("session.target_lang", "hi")
	v.SetDefault("session.heartbeat_interval", 30*time.Second)
	v.SetDefault("session.idle_timeout", 60*time.Second)

	v.SetDefault("voice.engine", string(voice.EngineNull))
}

// Load reads cfgFile (optional), the environment and flags, in increasing
// order of precedence. A missing cfgFile is not an error. flags may be nil;
// a flag is bound to the key of the same name with "-" read as ".".
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", ".")
			if !isKnownKey(v, key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("linguaflow")
		v.SetConfigType("toml")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/linguaflow")
		// The default locations are optional.
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isKnownKey(v *viper.Viper, key string) bool {
	for _, k := range v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Validate checks values that would otherwise fail deep inside startup.
func (c *Config) Validate() error {
	var errs []error
	for name, port := range map[string]int{"grpc.port": c.GRPC.Port, "http.port": c.HTTP.Port} {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s out of range: %d", name, port))
		}
	}
	if _, err := translate.ParseEngineType(c.MT.Engine); err != nil {
		errs = append(errs, err)
	}
	if _, err := history.ParseBackend(c.History.Backend); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Settings.Backend) {
	case "", "memory", "mem", "bunt", "buntdb", "file":
	default:
		errs = append(errs, fmt.Errorf("unknown settings backend: %s (supported: memory, bunt)", c.Settings.Backend))
	}
	if _, err := language.ParseEngine(c.Language.Detector); err != nil {
		errs = append(errs, err)
	}
	if _, err := voice.ParseEngineKind(c.Voice.Engine); err != nil {
		errs = append(errs, err)
	}
	if c.Session.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("session.max_chars must be positive: %d", c.Session.MaxChars))
	}
	if c.Session.Debounce < 0 {
		errs = append(errs, fmt.Errorf("session.debounce must not be negative: %s", c.Session.Debounce))
	}
	switch strings.ToLower(c.Logger.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown logger.format: %s (supported: text, json)", c.Logger.Format))
	}
	return errors.Join(errs...)
}

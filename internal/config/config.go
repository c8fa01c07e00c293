package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the application configuration. Values are resolved in
// priority order: defaults, then the optional YAML config file, then
// BOOKWISE_* environment variables.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath string `koanf:"db_path"`

	// LogMode selects the logger encoder: "dev" or "prod".
	LogMode string `koanf:"log_mode" validate:"oneof=dev prod production"`

	Curveball CurveballConfig `koanf:"curveball"`
	Composer  ComposerConfig  `koanf:"composer"`
}

// CurveballConfig configures the mastery-gate scheduler.
type CurveballConfig struct {
	// DelayDays is how long after full coverage the curveball becomes
	// due. Threaded into the scheduler so tests can vary it.
	DelayDays int `koanf:"delay_days" validate:"min=1"`
}

// ComposerConfig configures lesson composition.
type ComposerConfig struct {
	// MaxReviewIdeas caps how many due review ideas one lesson pulls in.
	MaxReviewIdeas int `koanf:"max_review_ideas" validate:"min=1"`

	// MaxCorrectionConcepts caps how many queued correction concepts one
	// lesson pulls in.
	MaxCorrectionConcepts int `koanf:"max_correction_concepts" validate:"min=1"`

	// GenerateAttempts bounds retries against the question generation
	// service before falling back to placeholder questions.
	GenerateAttempts int `koanf:"generate_attempts" validate:"min=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogMode: "dev",
		Curveball: CurveballConfig{
			DelayDays: 3,
		},
		Composer: ComposerConfig{
			MaxReviewIdeas:        2,
			MaxCorrectionConcepts: 2,
			GenerateAttempts:      3,
		},
	}
}

// Load resolves configuration from defaults, the YAML file at path (if
// path is non-empty and the file exists), and BOOKWISE_* env vars.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// Double underscore nests: BOOKWISE_CURVEBALL__DELAY_DAYS maps to
	// curveball.delay_days, BOOKWISE_DB_PATH to db_path.
	err := k.Load(env.Provider("BOOKWISE_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "BOOKWISE_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load env config: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

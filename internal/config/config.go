package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ImageModel     string  `env:"IMAGE_MODEL" envDefault:"stability.stable-diffusion-xl-v1"`
	ImageEndpoint  string  `env:"IMAGE_ENDPOINT"`
	ImageKey       string  `env:"IMAGE_KEY"`
	ImageKeyParam  string  `env:"IMAGE_KEY_PARAM"`
	ImageKeyHdr    string  `env:"IMAGE_KEY_HEADER"`
	DefaultStyle   string  `env:"DEFAULT_STYLE" envDefault:"photographic"`
	DefaultCfg     float64 `env:"DEFAULT_CFG_SCALE" envDefault:"7"`
	DefaultSteps   int     `env:"DEFAULT_STEPS" envDefault:"30"`
	NegativePrompt string  `env:"NEGATIVE_PROMPT"`
	PromptTemplate string  `env:"PROMPT_TEMPLATE"`

	TextProvider    string  `env:"TEXT_PROVIDER" envDefault:"bedrock"`
	TextModel       string  `env:"TEXT_MODEL" envDefault:"anthropic.claude-3-haiku-20240307-v1:0"`
	TextTemperature float64 `env:"TEXT_TEMPERATURE" envDefault:"0.8"`
	OpenAIKey       string  `env:"OPENAI_API_KEY"`
	OpenAIKeyParam  string  `env:"OPENAI_API_KEY_PARAM"`
	GeminiKey       string  `env:"GEMINI_API_KEY"`
	GeminiKeyParam  string  `env:"GEMINI_API_KEY_PARAM"`

	Briefs      []string `env:"BRIEFS" envSeparator:";"`
	BriefsParam string   `env:"BRIEFS_PARAM"`

	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"RETRY_INTERVAL" envDefault:"10s"`
	RetryBackoff     string        `env:"RETRY_BACKOFF" envDefault:"fixed"`
	RetryMaxInterval time.Duration `env:"RETRY_MAX_INTERVAL" envDefault:"1m"`
	RetryJitter      float64       `env:"RETRY_JITTER" envDefault:"0.2"`
	Workers          int           `env:"WORKERS" envDefault:"1"`

	OutputDir    string `env:"OUTPUT_DIR" envDefault:"/tmp/promobot"`
	Bucket       string `env:"BUCKET"`
	Prefix       string `env:"PREFIX"`
	Distribution string `env:"DISTRIBUTION"`
	SiteURL      string `env:"SITE_URL"`
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.TextProvider {
	case "bedrock", "openai", "gemini":
	default:
		return fmt.Errorf("unknown TEXT_PROVIDER %q", c.TextProvider)
	}
	switch c.RetryBackoff {
	case "fixed", "exponential":
	default:
		return fmt.Errorf("unknown RETRY_BACKOFF %q", c.RetryBackoff)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	return nil
}

// UseS3 reports whether artifacts go to a bucket instead of OutputDir.
func (c Config) UseS3() bool {
	return c.Bucket != ""
}

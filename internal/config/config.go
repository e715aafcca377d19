package config

import (
	"log"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" default:"8080"`
	MongoURI        string        `env:"MONGO_URI"`
	DBName          string        `env:"DB_NAME" default:"storefront"`
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" default:"20m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"15s"`

	DocumentsDir    string        `env:"DOCUMENTS_DIR" default:"/app/private"`
	DocumentsBucket string        `env:"DOCUMENTS_BUCKET" default:"verification-documents"`
	DocumentBuckets []string      `env:"DOCUMENT_BUCKETS"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	SignedURLTTL    time.Duration `env:"SIGNED_URL_TTL" default:"1800s"`
	SignedURLSecret string        `env:"SIGNED_URL_SECRET"`

	CheckoutSessionTTL time.Duration `env:"CHECKOUT_SESSION_TTL" default:"30m"`

	LLMBaseURL string        `env:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	LLMAPIKey  string        `env:"LLM_API_KEY"`
	LLMModel   string        `env:"LLM_MODEL" default:"gpt-4o-mini"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" default:"60s"`

	LogLevel       string `env:"LOG_LEVEL" default:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" default:"false"`
}

// Load reads .env (when present) into the process environment and maps the
// environment onto Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		SkipFiles: true,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.SignedURLTTL <= 0 {
		return errors.New("SIGNED_URL_TTL must be positive")
	}
	return nil
}

// Buckets returns every bucket name a document path may be prefixed with.
// The default bucket is always first.
func (c *Config) Buckets() []string {
	out := []string{c.DocumentsBucket}
	for _, b := range c.DocumentBuckets {
		b = strings.TrimSpace(b)
		if b == "" || b == c.DocumentsBucket {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (c *Config) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.DocumentsBucket = strings.Trim(strings.TrimSpace(c.DocumentsBucket), "/")
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.LLMBaseURL = strings.TrimRight(strings.TrimSpace(c.LLMBaseURL), "/")
	if c.SignedURLSecret == "" {
		c.SignedURLSecret = c.JWTSecret
	}
}

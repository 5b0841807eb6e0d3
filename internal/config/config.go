package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type (
	// Config holds all runtime settings, populated from MV_-prefixed
	// environment variables.
	Config struct {
		ListenAddr string `env:"MV_LISTEN_ADDR" envDefault:":8080"`
		DBPath     string `env:"MV_DB_PATH" envDefault:"/data/mediavault.db"`

		S3        S3Config        `envPrefix:"MV_S3_"`
		Auth      AuthConfig      `envPrefix:"MV_AUTH_"`
		Assistant AssistantConfig `envPrefix:"MV_ASSISTANT_"`

		// SignTTL is the validity window of signed read URLs.
		SignTTL time.Duration `env:"MV_SIGN_TTL" envDefault:"15m"`
		// UploadTTL is the validity window of presigned upload credentials.
		UploadTTL time.Duration `env:"MV_UPLOAD_TTL" envDefault:"10m"`
		// URLCacheSize bounds the in-process signed-URL cache.
		URLCacheSize int `env:"MV_URL_CACHE_SIZE" envDefault:"4096"`
	}

	S3Config struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
	}

	AuthConfig struct {
		Issuer       string `env:"ISSUER"`
		ClientID     string `env:"CLIENT_ID"`
		ClientSecret string `env:"CLIENT_SECRET"`
		RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`

		SessionSecret string        `env:"SESSION_SECRET"`
		SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
		CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`

		// BootstrapAdmin, when set, is upserted into the allowlist as an
		// admin at startup so a fresh deployment is reachable.
		BootstrapAdmin string `env:"BOOTSTRAP_ADMIN"`
	}

	AssistantConfig struct {
		Endpoint    string        `env:"ENDPOINT"`
		APIKey      string        `env:"API_KEY"`
		Model       string        `env:"MODEL" envDefault:"claude-3-5-sonnet-20241022"`
		Timeout     time.Duration `env:"TIMEOUT" envDefault:"60s"`
		MaxTokens   int           `env:"MAX_TOKENS" envDefault:"600"`
		Temperature float64       `env:"TEMPERATURE" envDefault:"0.2"`
	}
)

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

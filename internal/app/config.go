package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config is the API server configuration, loadable from environment variables
// (ECART_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string        `usage:"PostgreSQL connection URL (ECART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	ImageBaseURL string        `default:"" usage:"Base URL prepended to relative product image paths" flag:"image-base-url"`
	JWTSecret    string        `usage:"HMAC secret for login tokens (ECART_JWT_SECRET)" flag:"jwt-secret"`
	TokenTTL     time.Duration `default:"24h" usage:"Login token lifetime" flag:"token-ttl"`
	BcryptCost   int           `default:"8" usage:"bcrypt cost for stored passwords" flag:"bcrypt-cost"`
	Recaptcha    RecaptchaConfig
	Login        LoginConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// RecaptchaConfig configures registration CAPTCHA verification.
type RecaptchaConfig struct {
	Secret    string `usage:"reCAPTCHA secret key (ECART_RECAPTCHA_SECRET)"`
	VerifyURL string `default:"https://www.google.com/recaptcha/api/siteverify" usage:"reCAPTCHA verification endpoint"`
}

// LoginConfig throttles login attempts per email.
type LoginConfig struct {
	Interval time.Duration `default:"12s" usage:"One login attempt is refunded every interval"`
	Burst    int           `default:"5"   usage:"Login attempts allowed at once, 0 disables throttling"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ECART",
		Files:     []string{"config.yaml", "/etc/ecart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set ECART_DATABASE_URL or DATABASE_URL")
	case c.JWTSecret == "":
		return errors.New("JWT secret is required: set ECART_JWT_SECRET")
	case c.Recaptcha.Secret == "":
		return errors.New("reCAPTCHA secret is required: set ECART_RECAPTCHA_SECRET")
	}
	return nil
}

// applyPlatformDefaults maps the DATABASE_URL and PORT variables set by
// hosting platforms onto the ECART_ configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

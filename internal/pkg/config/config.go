package config

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port     string `env:"PORT,      default=5100"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5000,https://nikko-develop.space"`

	Auth   AuthConfig
	Cookie CookieConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

type AuthConfig struct {
	AccessSecret    string        `env:"JWT_ACCESS_SECRET,  required"`
	RefreshSecret   string        `env:"JWT_REFRESH_SECRET, required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,   default=15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,  default=1440h"`
	// HashCost is the bcrypt work factor.
	HashCost int `env:"HASH_COST, default=7"`
	// HashWorkers bounds concurrent hashing; 0 means one per CPU.
	HashWorkers     int  `env:"HASH_WORKERS,            default=0"`
	MaskLoginErrors bool `env:"AUTH_MASK_LOGIN_ERRORS,  default=true"`
	// RevocationBackend selects where revoked refresh token ids live: redis or memory.
	RevocationBackend string `env:"REVOCATION_BACKEND, default=redis"`
}

type CookieConfig struct {
	Name     string        `env:"REFRESH_COOKIE_NAME,      default=refreshToken"`
	Path     string        `env:"REFRESH_COOKIE_PATH,      default=/"`
	Domain   string        `env:"REFRESH_COOKIE_DOMAIN"`
	HTTPOnly bool          `env:"REFRESH_COOKIE_HTTP_ONLY, default=true"`
	Secure   bool          `env:"REFRESH_COOKIE_SECURE,    default=true"`
	SameSite string        `env:"REFRESH_COOKIE_SAME_SITE, default=none"`
	MaxAge   time.Duration `env:"REFRESH_COOKIE_MAX_AGE,   default=1440h"`
}

// SameSiteMode converts the configured attribute to its net/http value.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the rules envconfig tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.Auth.HashCost < bcrypt.MinCost || c.Auth.HashCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("HASH_COST must be within %d..%d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.HashCost))
	}
	if c.Auth.HashWorkers < 0 {
		errs = append(errs, fmt.Errorf("HASH_WORKERS must not be negative, got %d", c.Auth.HashWorkers))
	}
	switch c.Auth.RevocationBackend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("REVOCATION_BACKEND must be redis or memory, got %q", c.Auth.RevocationBackend))
	}
	if c.Cookie.SameSiteMode() == http.SameSiteDefaultMode {
		errs = append(errs, fmt.Errorf("REFRESH_COOKIE_SAME_SITE must be strict, lax or none, got %q", c.Cookie.SameSite))
	}
	if c.Cookie.SameSiteMode() == http.SameSiteNoneMode && !c.Cookie.Secure {
		errs = append(errs, errors.New("REFRESH_COOKIE_SAME_SITE=none requires REFRESH_COOKIE_SECURE=true"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

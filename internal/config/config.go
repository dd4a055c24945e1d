package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "HomeHelp"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSessionTTL     = 30 * 24 * time.Hour
	defaultOTPTTL         = 5 * time.Minute
	defaultOTPCooldown    = 30 * time.Second
	defaultOTPAttempts    = 5
	defaultCountryCode    = "+91"
	defaultGeocoderURL    = "https://nominatim.openstreetmap.org"
	defaultAddressCache   = 10000
	defaultAddressTTL     = 30 * time.Minute

	// OTPModeStatic accepts the fixed development code instead of issuing real ones.
	OTPModeStatic = "static"
	// OTPModeRedis issues random, expiring, attempt-limited codes stored in Redis.
	OTPModeRedis = "redis"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	RunMigrations  bool
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration

	JWTSecret  string
	SessionTTL time.Duration

	OTPMode           string
	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration
	CountryCode       string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GeocoderURL      string
	AddressCacheSize int
	AddressCacheTTL  time.Duration

	SESRegion string
	SESFrom   string
}

// Load reads configuration values from the environment (and an optional .env file)
// and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		Port:               getEnv("PORT", defaultPort),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RunMigrations:      strings.EqualFold(os.Getenv("RUN_MIGRATIONS"), "true"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		OTPMode:            strings.ToLower(getEnv("OTP_MODE", OTPModeRedis)),
		OTPMaxAttempts:     defaultOTPAttempts,
		AddressCacheSize:   defaultAddressCache,
		CountryCode:        getEnv("COUNTRY_CODE", defaultCountryCode),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		GeocoderURL:        getEnv("GEOCODER_URL", defaultGeocoderURL),
		SESRegion:          os.Getenv("SES_REGION"),
		SESFrom:            os.Getenv("SES_FROM"),
	}

	var err error
	if cfg.ShutdownPeriod, err = getDuration("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", defaultOTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPResendCooldown, err = getDuration("OTP_RESEND_COOLDOWN", defaultOTPCooldown); err != nil {
		return Config{}, err
	}

	if cfg.AddressCacheTTL, err = getDuration("ADDRESS_CACHE_TTL", defaultAddressTTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("ADDRESS_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid ADDRESS_CACHE_SIZE: %q", v)
		}
		cfg.AddressCacheSize = n
	}

	if v := os.Getenv("OTP_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid OTP_MAX_ATTEMPTS: %q", v)
		}
		cfg.OTPMaxAttempts = n
	}

	switch cfg.OTPMode {
	case OTPModeStatic, OTPModeRedis:
	default:
		return Config{}, fmt.Errorf("invalid OTP_MODE: %q", cfg.OTPMode)
	}

	if cfg.IsDev() {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = "dev-only-secret"
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.OTPMode == OTPModeStatic {
		return Config{}, fmt.Errorf("OTP_MODE=static is only allowed in development")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// GoogleEnabled reports whether Google sign-in credentials are configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDuration accepts either KEY_SECONDS as an integer or KEY as a Go duration string.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	secondsKey := key + "_SECONDS"
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

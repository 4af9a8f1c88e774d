package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nekogravitycat/classroom-booking-backend/internal/people"
	"github.com/nekogravitycat/classroom-booking-backend/internal/reservation"
)

const PROD_STRING = "prod"

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	StoreDriver       string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	LogLevel          string
	LogFormat         string
	TracingEnabled    bool
	ZipkinEndpoint    string
	ShutdownTimeout   time.Duration
	PolicyFile        string
	Policy            Policy
}

// Policy is the booking policy: reservation rules and the role catalog.
type Policy struct {
	Rules   reservation.Rules
	Catalog people.Catalog
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Storage backend (default: postgres)
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StorePostgres))
	switch cfg.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StorePostgres, StoreMemory)
	}

	// Database DSN is required unless running on the in-memory store
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" && cfg.StoreDriver == StorePostgres {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required for validating tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	cfg.TracingEnabled, err = getEnvAsBool("TRACING_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}
	cfg.ZipkinEndpoint = getEnv("ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")

	// Graceful shutdown window in seconds (default: 5)
	shutdownSecs, err := getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SECONDS: %w", err)
	}
	cfg.ShutdownTimeout = time.Duration(shutdownSecs) * time.Second

	cfg.PolicyFile = getEnv("POLICY_FILE", "")
	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	cfg.Policy = *policy

	return cfg, nil
}

// policyFile mirrors the YAML layout of the policy file.
type policyFile struct {
	MinDuration time.Duration  `mapstructure:"min_duration"`
	MaxDuration time.Duration  `mapstructure:"max_duration"`
	PastGrace   time.Duration  `mapstructure:"past_grace"`
	Timezone    string         `mapstructure:"timezone"`
	Catalog     people.Catalog `mapstructure:"catalog"`
}

// LoadPolicy reads the booking policy from path. An empty path yields the defaults.
// POLICY_MIN_DURATION, POLICY_MAX_DURATION, POLICY_PAST_GRACE and POLICY_TIMEZONE
// override the file.
func LoadPolicy(path string) (*Policy, error) {
	defaults := reservation.DefaultRules()

	v := viper.New()
	v.SetDefault("min_duration", time.Duration(defaults.MinDurationMinutes)*time.Minute)
	v.SetDefault("max_duration", time.Duration(defaults.MaxDurationMinutes)*time.Minute)
	v.SetDefault("past_grace", defaults.PastGrace)
	v.SetDefault("timezone", "UTC")
	v.SetEnvPrefix("POLICY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read policy file %s: %w", path, err)
		}
	}

	var raw policyFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	if raw.MinDuration <= 0 || raw.MaxDuration < raw.MinDuration {
		return nil, fmt.Errorf("invalid policy durations: min %s, max %s", raw.MinDuration, raw.MaxDuration)
	}
	if raw.PastGrace < 0 {
		return nil, fmt.Errorf("invalid policy past_grace %s", raw.PastGrace)
	}
	loc, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid policy timezone %q: %w", raw.Timezone, err)
	}

	catalog := raw.Catalog
	if catalog.IsEmpty() {
		catalog = people.DefaultCatalog()
	}

	return &Policy{
		Rules: reservation.Rules{
			MinDurationMinutes: int(raw.MinDuration / time.Minute),
			MaxDurationMinutes: int(raw.MaxDuration / time.Minute),
			PastGrace:          raw.PastGrace,
			Location:           loc,
		},
		Catalog: catalog,
	}, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}
	return val, nil
}

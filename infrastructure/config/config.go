package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration

	// Storage
	StorageBackend string
	AWSRegion      string
	DynamoDBTable  string
	EventBusName   string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Domain rules file, hot reloaded when it changes
	DomainRulesFile string

	// City lookup
	RedisURL        string
	CityAPIURL      string
	CityAPIKey      string
	CityAPIHost     string
	CityAPITimeout  time.Duration
	CityCacheTTL    time.Duration
	CityCacheSize   int
	CityRateLimit   int
	CityRateWindow  time.Duration
	CityMinQueryLen int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AuthDisabled   bool
	UserRateLimit  int // requests per minute per user, 0 disables
	DefaultUserID  string
	AllowedOrigins []string

	// Metrics
	CloudWatchNamespace string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:  getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "peoplenet")),
		EventBusName:   getEnv("EVENT_BUS_NAME", ""),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		DomainRulesFile: getEnv("DOMAIN_RULES_FILE", ""),

		// City lookup
		RedisURL:        getEnv("REDIS_URL", ""),
		CityAPIURL:      getEnv("CITY_API_URL", "https://wft-geo-db.p.rapidapi.com/v1/geo/cities"),
		CityAPIKey:      getEnv("CITY_API_KEY", ""),
		CityAPIHost:     getEnv("CITY_API_HOST", "wft-geo-db.p.rapidapi.com"),
		CityAPITimeout:  getEnvDuration("CITY_API_TIMEOUT", 5*time.Second),
		CityCacheTTL:    getEnvDuration("CITY_CACHE_TTL", 7*24*time.Hour),
		CityCacheSize:   getEnvInt("CITY_CACHE_SIZE", 500),
		CityRateLimit:   getEnvInt("CITY_RATE_LIMIT", 1),
		CityRateWindow:  getEnvDuration("CITY_RATE_WINDOW", 1500*time.Millisecond),
		CityMinQueryLen: getEnvInt("CITY_MIN_QUERY_LENGTH", 2),

		// Authentication
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "peoplenet"),
		JWTAudience:    getEnv("JWT_AUDIENCE", ""),
		AuthDisabled:   getEnvBool("AUTH_DISABLED", false),
		UserRateLimit:  getEnvInt("USER_RATE_LIMIT", 600),
		DefaultUserID:  getEnv("DEFAULT_USER_ID", "local"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", ""),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageDynamoDB:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageMemory, StorageDynamoDB, c.StorageBackend)
	}
	if c.StorageBackend == StorageDynamoDB && c.DynamoDBTable == "" {
		return fmt.Errorf("TABLE_NAME is required for the dynamodb backend")
	}
	if c.CityRateLimit <= 0 || c.CityRateWindow <= 0 {
		return fmt.Errorf("CITY_RATE_LIMIT and CITY_RATE_WINDOW must be positive")
	}
	if c.IsProduction() {
		if c.AuthDisabled {
			return fmt.Errorf("AUTH_DISABLED cannot be set in production")
		}
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration parses a Go duration ("1.5s") or a plain number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string, defaultValue []string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

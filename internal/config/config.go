package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Postgres struct {
	URL               string
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// DSN prefers DATABASE_URL and falls back to the individual DB_* settings.
func (p Postgres) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host,
		p.Port,
		p.User,
		p.Password,
		p.DBName)
}

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	MongoURI    string
	MongoDBName string
	Postgres    Postgres

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartCacheTTL  time.Duration
	CartTTL       time.Duration

	KafkaBrokers     []string
	OrderEventsTopic string

	ProductsPerPage int
	AdminPerPage    int
	Currency        string

	AdminUser     string
	AdminPassword string
	SecureCookies bool

	LogLevel     string
	LogFormat    string
	OTLPEndpoint string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var errs []error
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		MaxRequestBodySize: int64(getInt("MAX_REQUEST_BODY_SIZE", 1<<20, &errs)),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "nexus"),
		Postgres: Postgres{
			URL:               os.Getenv("DATABASE_URL"),
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getInt("DB_PORT", 5432, &errs),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "nexus"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/postgres/migrations"),
		},

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0, &errs),
		CartCacheTTL:  getDuration("CART_CACHE_TTL", 15*time.Minute, &errs),
		CartTTL:       getDuration("CART_TTL", 7*24*time.Hour, &errs),

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic: getEnv("ORDER_EVENTS_TOPIC", "order-events"),

		ProductsPerPage: getInt("PRODUCTS_PER_PAGE", 9, &errs),
		AdminPerPage:    getInt("ADMIN_PER_PAGE", 20, &errs),
		Currency:        getEnv("CURRENCY", "USD"),

		AdminUser:     os.Getenv("ADMIN_USER"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SecureCookies: getBool("SECURE_COOKIES", false, &errs),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ProductsPerPage <= 0 {
		return fmt.Errorf("PRODUCTS_PER_PAGE must be positive, got %d", c.ProductsPerPage)
	}
	if c.AdminPerPage <= 0 {
		return fmt.Errorf("ADMIN_PER_PAGE must be positive, got %d", c.AdminPerPage)
	}
	if c.AdminUser != "" && c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_USER is set")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	return nil
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

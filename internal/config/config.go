package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration. It is built once at
// startup and read-only afterward; constructors receive the sections
// they need instead of reading ambient state.
type Config struct {
	Server   ServerConfig
	Sheet    SheetConfig
	Alpaca   AlpacaConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Risk     RiskConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// SheetConfig holds the Google Sheets backing store configuration
type SheetConfig struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string
}

// AlpacaConfig holds market data API credentials
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// RedisConfig holds the optional Redis quote cache configuration.
// An empty Addr selects the in-process cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds PostgreSQL configuration for the alert archive
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers    []string
	EventTopic string
	FillsTopic string
	GroupID    string
}

// RiskConfig holds the risk-policy knobs
type RiskConfig struct {
	// BucketThresholds are the ascending safety-margin tier boundaries
	// in percent. Both the fine and the coarse tier sets are valid
	// operating modes.
	BucketThresholds []decimal.Decimal
	// HighRiskThreshold flags positions whose margin falls below it.
	HighRiskThreshold decimal.Decimal
	// ExpiryWindowDays is the "expiring soon" horizon.
	ExpiryWindowDays int
	// QuoteTTL is the freshness window of the price cache.
	QuoteTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Sheet: SheetConfig{
			SpreadsheetID:   getEnv("SHEET_ID", ""),
			Worksheet:       getEnv("SHEET_WORKSHEET", "Sheet1"),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    getEnv("ALPACA_API_KEY", ""),
			APISecret: getEnv("ALPACA_API_SECRET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "optiontracker"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			EventTopic: getEnv("KAFKA_EVENT_TOPIC", "position-events"),
			FillsTopic: getEnv("KAFKA_FILLS_TOPIC", ""),
			GroupID:    getEnv("KAFKA_GROUP_ID", "option-tracker"),
		},
		Risk: RiskConfig{
			BucketThresholds:  getEnvDecimals("RISK_BUCKETS", []string{"0", "5", "10", "15", "20"}),
			HighRiskThreshold: getEnvDecimal("RISK_MARGIN_THRESHOLD", "5"),
			ExpiryWindowDays:  getEnvInt("RISK_EXPIRY_WINDOW_DAYS", 7),
			QuoteTTL:          time.Duration(getEnvInt("QUOTE_TTL_SECONDS", 60)) * time.Second,
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

func getEnvDecimals(key string, defaultValues []string) []decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if out, err := parseDecimals(strings.Split(value, ",")); err == nil {
			return out
		}
	}
	out, _ := parseDecimals(defaultValues)
	return out
}

func parseDecimals(parts []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

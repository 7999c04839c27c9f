package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	CartService ServiceConfig
	TaxRates    TaxRatesConfig
	Features    FeatureFlags
	Log         LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers          []string
	ShippingTaxTopic string
	TaxRatesTopic    string
	ConsumerGroup    string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// Tax table backends.
const (
	TaxRatesSourcePostgres = "postgres"
	TaxRatesSourceStatic   = "static"
)

// TaxRatesConfig selects where the tax table is read from. The static source
// serves the built-in Dutch VAT table and needs no database.
type TaxRatesConfig struct {
	Source string
}

// FeatureFlags toggles optional integrations. The allocation itself never
// depends on them.
type FeatureFlags struct {
	EnableRateCaching bool
	EnableTaxEvents   bool
}

type LogConfig struct {
	Level string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8085),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "acme"),
			Password:     getEnvString("DB_PASSWORD", "acme"),
			Name:         getEnvString("DB_NAME", "acme_tax"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_SECONDS", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:          getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			ShippingTaxTopic: getEnvString("KAFKA_SHIPPING_TAX_TOPIC", "shipping-tax-events"),
			TaxRatesTopic:    getEnvString("KAFKA_TAX_RATES_TOPIC", "tax-rate-events"),
			ConsumerGroup:    getEnvString("KAFKA_CONSUMER_GROUP", "shipping-tax-service"),
		},
		CartService: ServiceConfig{
			BaseURL: getEnvString("CART_SERVICE_URL", "http://localhost:8084"),
			Timeout: time.Duration(getEnvInt("CART_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("CART_SERVICE_API_KEY", ""),
		},
		TaxRates: TaxRatesConfig{
			Source: getEnvString("TAX_RATES_SOURCE", TaxRatesSourcePostgres),
		},
		Features: FeatureFlags{
			EnableRateCaching: getEnvBool("FEATURE_RATE_CACHING", true),
			EnableTaxEvents:   getEnvBool("FEATURE_TAX_EVENTS", true),
		},
		Log: LogConfig{
			Level: getEnvString("LOG_LEVEL", "info"),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

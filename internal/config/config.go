package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers []string
}

// ProviderConfig tunes the simulated payment provider. The failure rates
// exist for development only and default to zero.
type ProviderConfig struct {
	AuthorizeFailRate  float64
	CaptureDeclineRate float64
	Latency            time.Duration
}

// ServiceConfig holds all configuration for the payflow API.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	DBConfig       DatabaseConfig
	KafkaConfig    KafkaConfig
	ProviderConfig ProviderConfig
}

// Load reads configuration from environment variables and returns a
// ServiceConfig with sensible defaults for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "payflow")
	v.SetDefault("DB_PASSWORD", "payflow")
	v.SetDefault("DB_NAME", "payflow")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("PROVIDER_AUTH_FAIL_RATE", 0.0)
	v.SetDefault("PROVIDER_DECLINE_RATE", 0.0)
	v.SetDefault("PROVIDER_LATENCY_MS", 0)

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		},
		ProviderConfig: ProviderConfig{
			AuthorizeFailRate:  v.GetFloat64("PROVIDER_AUTH_FAIL_RATE"),
			CaptureDeclineRate: v.GetFloat64("PROVIDER_DECLINE_RATE"),
			Latency:            time.Duration(v.GetInt("PROVIDER_LATENCY_MS")) * time.Millisecond,
		},
	}, nil
}

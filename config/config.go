package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Google   GoogleConfig
	Monitor  MonitorConfig
	Redis    RedisConfig
	S3       S3Config
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type GoogleConfig struct {
	// Comma-separated OAuth client IDs accepted as the idToken audience.
	AllowedClientIDs []string
}

// MonitorTarget is one named HTTP endpoint the health monitor probes.
type MonitorTarget struct {
	Name string
	URL  string
}

type MonitorConfig struct {
	Targets      []MonitorTarget
	Interval     time.Duration
	StartupDelay time.Duration
	ProbeTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "petmarket"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "dev-secret"),
			TokenExpiry: parseDuration(getEnv("JWT_TOKEN_EXPIRY", "168h")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:4200")),
		},
		Google: GoogleConfig{
			AllowedClientIDs: parseSlice(getEnv("GOOGLE_CLIENT_ID", "")),
		},
		Monitor: MonitorConfig{
			Targets:      parseTargets(getEnv("MONITOR_TARGETS", "auth=http://localhost:8080/api/auth/health,products=http://localhost:8080/api/products/health")),
			Interval:     parseMillis(getEnv("MONITOR_INTERVAL_MS", "300000")),
			StartupDelay: parseMillis(getEnv("MONITOR_STARTUP_DELAY_MS", "2000")),
			ProbeTimeout: parseMillis(getEnv("MONITOR_PROBE_TIMEOUT_MS", "2000")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "eu-west-3"),
			Bucket:          getEnv("AWS_S3_BUCKET", "petmarket-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default 168h", s)
		return 168 * time.Hour
	}
	return duration
}

func parseMillis(s string) time.Duration {
	ms, err := strconv.Atoi(s)
	if err != nil || ms <= 0 {
		log.Printf("Invalid millisecond value %s, using 2000", s)
		ms = 2000
	}
	return time.Duration(ms) * time.Millisecond
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseTargets parses "name=url,name=url" into monitor targets.
// Entries without a name keep the raw value as both name and URL.
func parseTargets(s string) []MonitorTarget {
	var targets []MonitorTarget
	for _, entry := range parseSlice(s) {
		name, url, found := strings.Cut(entry, "=")
		if !found {
			targets = append(targets, MonitorTarget{Name: entry, URL: entry})
			continue
		}
		targets = append(targets, MonitorTarget{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return targets
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName       string
	AppVersion    string
	Environment   string
	HTTPAddr      string
	PublicBaseURL string
	// NodeID seeds snowflake ids; replicas need distinct values.
	NodeID int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis     RedisConfig
	Storage   StorageConfig
	Email     EmailConfig
	Chrome    ChromeConfig
	Reminder  ReminderConfig
	RateLimit RateLimitConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig selects and configures the file storage driver.
type StorageConfig struct {
	Driver            string
	Bucket            string
	Region            string
	Endpoint          string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PublicBaseURL     string
	PresignExpiration time.Duration
	LocalDir          string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

type ChromeConfig struct {
	Enabled   bool
	RemoteURL string
	NoSandbox bool
	Timeout   time.Duration
}

type ReminderConfig struct {
	Enabled  bool
	Interval time.Duration
	Cadence  time.Duration
	LockTTL  time.Duration
}

// RateLimitConfig throttles unauthenticated public invoice lookups per client.
type RateLimitConfig struct {
	Enabled     bool
	PublicRate  float64
	PublicBurst int
}

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	httpAddr := getenv("HTTP_ADDR", ":8080")

	cfg := Config{
		AppName:       getenv("APP_SERVICE", "invoicedesk"),
		AppVersion:    getenv("APP_VERSION", "0.1.0"),
		Environment:   environment,
		HTTPAddr:      httpAddr,
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost"+httpAddr), "/"),
		NodeID:        int64(getenvInt("NODE_ID", 1)),
		OTLPEndpoint:  getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "invoicedesk"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "invoicedesk.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Driver:            strings.ToLower(getenv("STORAGE_DRIVER", StorageDriverLocal)),
			Bucket:            strings.TrimSpace(getenv("STORAGE_BUCKET", "")),
			Region:            getenv("STORAGE_REGION", "us-east-1"),
			Endpoint:          strings.TrimSpace(getenv("STORAGE_ENDPOINT", "")),
			AccessKey:         strings.TrimSpace(getenv("STORAGE_ACCESS_KEY", "")),
			SecretKey:         strings.TrimSpace(getenv("STORAGE_SECRET_KEY", "")),
			UseSSL:            getenvBool("STORAGE_USE_SSL", false),
			UsePathStyle:      getenvBool("STORAGE_USE_PATH_STYLE", true),
			PublicBaseURL:     strings.TrimRight(getenv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
			PresignExpiration: getenvDuration("STORAGE_PRESIGN_EXPIRATION", 7*24*time.Hour),
			LocalDir:          getenv("STORAGE_LOCAL_DIR", "data/files"),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 1025),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "billing@invoicedesk.local"),
		},
		Chrome: ChromeConfig{
			Enabled:   getenvBool("CHROME_ENABLED", false),
			RemoteURL: strings.TrimSpace(getenv("CHROME_REMOTE_URL", "")),
			NoSandbox: getenvBool("CHROME_NO_SANDBOX", true),
			Timeout:   getenvDuration("CHROME_TIMEOUT", 30*time.Second),
		},
		Reminder: ReminderConfig{
			Enabled:  getenvBool("REMINDER_ENABLED", true),
			Interval: getenvDuration("REMINDER_INTERVAL", time.Hour),
			Cadence:  getenvDuration("REMINDER_CADENCE", 7*24*time.Hour),
			LockTTL:  getenvDuration("REMINDER_LOCK_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled:     getenvBool("RATE_LIMIT_ENABLED", true),
			PublicRate:  getenvFloat("RATE_LIMIT_PUBLIC_RATE", 0.5),
			PublicBurst: getenvInt("RATE_LIMIT_PUBLIC_BURST", 30),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

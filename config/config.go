package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port             string
	GinMode          string
	LogLevel         string
	DBDriver         string
	DBDSN            string
	JWTSecret        string
	CORSOrigin       string
	SaveDelay        time.Duration
	StatusResetAfter time.Duration
	RateLimit        float64
	RateBurst        int
}

// Load reads .env when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite"),
		DBDSN:            getEnv("DB_DSN", "seating.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		SaveDelay:        time.Duration(getEnvInt("SAVE_DEBOUNCE_MS", 100)) * time.Millisecond,
		StatusResetAfter: time.Duration(getEnvInt("SAVE_STATUS_RESET_MS", 3000)) * time.Millisecond,
		RateLimit:        float64(getEnvInt("RATE_LIMIT", 20)),
		RateBurst:        getEnvInt("RATE_BURST", 40),
	}
}

// InitDB opens the document store with the configured gorm driver.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

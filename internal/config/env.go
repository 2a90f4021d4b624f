package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"agri_advisor/internal/logger"
	"agri_advisor/internal/model"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration shared by the server and the CLI.
type Config struct {
	DB                 *DBConfig // nil when no database is configured
	JWTSecret          string
	JWTExpirationHours int64
	ServerPort         string
	PasscodeTTL        time.Duration
	PasscodeMaxTries   int // 0 disables the limit
	SessionStorePath   string
	Log                logger.Config
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		JWTSecret:        os.Getenv("JWT_SECRET_KEY"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		SessionStorePath: getEnv("SESSION_STORE_PATH", defaultSessionStorePath()),
		Log: logger.Config{
			File:  os.Getenv("LOG_FILE"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY not set in environment")
	}

	hours, err := strconv.ParseInt(getEnv("JWT_EXPIRATION_HOURS", "24"), 10, 64)
	if err != nil || hours <= 0 {
		logrus.WithError(err).Warn("Invalid JWT_EXPIRATION_HOURS, defaulting to 24")
		hours = 24
	}
	cfg.JWTExpirationHours = hours

	minutes, err := strconv.Atoi(getEnv("PASSCODE_TTL_MINUTES", "5"))
	if err != nil || minutes <= 0 {
		logrus.WithError(err).Warn("Invalid PASSCODE_TTL_MINUTES, defaulting to 5")
		minutes = 5
	}
	cfg.PasscodeTTL = time.Duration(minutes) * time.Minute

	tries, err := strconv.Atoi(getEnv("PASSCODE_MAX_ATTEMPTS", strconv.Itoa(model.MaxPasscodeAttempts)))
	if err != nil || tries < 0 {
		logrus.WithError(err).Warnf("Invalid PASSCODE_MAX_ATTEMPTS, defaulting to %d", model.MaxPasscodeAttempts)
		tries = model.MaxPasscodeAttempts
	}
	cfg.PasscodeMaxTries = tries

	cfg.DB, err = LoadDBConfig()
	if errors.Is(err, ErrDBNotConfigured) {
		cfg.DB = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load DB config: %w", err)
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
}

func defaultSessionStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".agri-advisor", "session.db")
	}
	return filepath.Join(home, ".agri-advisor", "session.db")
}

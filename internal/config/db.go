package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"agri_advisor/internal/model"
	"agri_advisor/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// ErrDBNotConfigured means no DB_* variables are set and the in-memory
// repositories should be used.
var ErrDBNotConfigured = errors.New("database not configured")

// DBConfig holds database connection parameters
type DBConfig struct {
	DSN string
}

// LoadDBConfig loads database configuration from environment variables
func LoadDBConfig() (*DBConfig, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	if dbHost == "" && dbUser == "" && dbName == "" {
		return nil, ErrDBNotConfigured
	}
	if dbHost == "" || dbUser == "" || dbName == "" {
		return nil, fmt.Errorf("database environment variables incomplete (DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME)")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, getEnv("DB_SSLMODE", "disable"))

	return &DBConfig{DSN: dsn}, nil
}

// ConnectDB establishes a connection to the PostgreSQL database
func ConnectDB(ctx context.Context, cfg *DBConfig) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				logrus.Info("Successfully connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		logrus.WithError(err).Warnf("Failed to connect to database (attempt %d/%d), retrying in %v", i+1, maxRetries, retryInterval)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// Execer runs a statement without returning rows.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL CHECK (role IN ('farmer', 'officer', 'admin')),
		phone TEXT UNIQUE,
		email TEXT,
		password_hash TEXT,
		name TEXT,
		panchayat TEXT,
		district TEXT,
		primary_crops TEXT[],
		land_size DOUBLE PRECISION,
		experience INTEGER,
		profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
		locale TEXT NOT NULL DEFAULT 'ml' CHECK (locale IN ('en', 'ml')),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_role ON users(email, role) WHERE email IS NOT NULL;

	CREATE TABLE IF NOT EXISTS pending_passcodes (
		phone TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	);

	ALTER TABLE pending_passcodes ADD COLUMN IF NOT EXISTS attempts INTEGER NOT NULL DEFAULT 0;

	CREATE INDEX IF NOT EXISTS idx_pending_passcodes_expires_at ON pending_passcodes(expires_at);
`

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	logrus.Info("AutoMigrate applied successfully")
	return nil
}

// SeedUsers inserts users that are not present yet.
func SeedUsers(ctx context.Context, repo repository.UserRepository, users []*model.User) error {
	for _, u := range users {
		existing, err := repo.FindByID(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
		if existing != nil {
			continue
		}
		if err := repo.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
		logrus.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("Seeded user")
	}
	return nil
}

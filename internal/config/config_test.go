package config

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"agri_advisor/internal/repository"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearDBEnv(t *testing.T) {
	for _, k := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearDBEnv(t)
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("PASSCODE_TTL_MINUTES", "")
	t.Setenv("PASSCODE_MAX_ATTEMPTS", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SESSION_STORE_PATH", "/tmp/agri/session.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Nil(t, cfg.DB)
	assert.Equal(t, int64(24), cfg.JWTExpirationHours)
	assert.Equal(t, 5*time.Minute, cfg.PasscodeTTL)
	assert.Equal(t, 5, cfg.PasscodeMaxTries)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "/tmp/agri/session.db", cfg.SessionStorePath)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	clearDBEnv(t)
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("PASSCODE_TTL_MINUTES", "10")
	t.Setenv("PASSCODE_MAX_ATTEMPTS", "0")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "agri")
	t.Setenv("DB_NAME", "advisor")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(2), cfg.JWTExpirationHours)
	assert.Equal(t, 10*time.Minute, cfg.PasscodeTTL)
	assert.Zero(t, cfg.PasscodeMaxTries)
	require.NotNil(t, cfg.DB)
	assert.Contains(t, cfg.DB.DSN, "host=localhost port=5432 user=agri")
	assert.Contains(t, cfg.DB.DSN, "dbname=advisor")
}

func TestLoad_RequiresSecret(t *testing.T) {
	clearDBEnv(t)
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDBConfig(t *testing.T) {
	clearDBEnv(t)
	_, err := LoadDBConfig()
	assert.ErrorIs(t, err, ErrDBNotConfigured)

	t.Setenv("DB_HOST", "localhost")
	_, err = LoadDBConfig()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDBNotConfigured))
}

func TestAutoMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS pending_passcodes")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, AutoMigrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedUsers_Idempotent(t *testing.T) {
	ctx := context.Background()
	seed, err := repository.SeedUsers(time.Now())
	require.NoError(t, err)

	repo := repository.NewMemoryUserRepository()
	require.NoError(t, SeedUsers(ctx, repo, seed))
	require.NoError(t, SeedUsers(ctx, repo, seed))

	officer, err := repo.FindByEmailAndRole(ctx, repository.SeedOfficerEmail, "officer")
	require.NoError(t, err)
	assert.NotNil(t, officer)
}

// Command agrictl signs in to the advisory service from a terminal and keeps
// the session in a local bolt file between runs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"agri_advisor/internal/config"
	"agri_advisor/internal/logger"
	"agri_advisor/internal/notify"
	"agri_advisor/internal/repository"
	"agri_advisor/internal/service"
	"agri_advisor/internal/session"
	"agri_advisor/internal/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	c := &cli{open: openFromConfig}
	err := newRootCmd(c).Execute()
	if cerr := c.close(); cerr != nil {
		logrus.WithError(cerr).Warn("failed to close session store")
	}
	if err != nil {
		os.Exit(1)
	}
}

// openFromConfig wires a Manager to an in-process AuthService and the bolt
// session file named by SESSION_STORE_PATH.
func openFromConfig(ctx context.Context) (*session.Manager, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Setup(cfg.Log)

	seed, err := repository.SeedUsers(time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build seed users: %w", err)
	}

	var (
		userRepo     repository.UserRepository
		passcodeRepo repository.PasscodeRepository
		closers      []func() error
	)
	if cfg.DB != nil {
		pool, err := config.ConnectDB(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		if err := config.AutoMigrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		userRepo = repository.NewUserRepository(pool)
		passcodeRepo = repository.NewPasscodeRepository(pool)
		if err := config.SeedUsers(ctx, userRepo, seed); err != nil {
			pool.Close()
			return nil, nil, err
		}
	} else {
		logrus.Debug("No database configured, using in-memory repositories")
		userRepo = repository.NewMemoryUserRepository(seed...)
		passcodeRepo = repository.NewMemoryPasscodeRepository()
	}

	svc := service.NewAuthService(userRepo, passcodeRepo, notify.NewLogSMSService(),
		utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours),
		service.WithPasscodeTTL(cfg.PasscodeTTL),
		service.WithMaxPasscodeAttempts(cfg.PasscodeMaxTries))

	store := session.NewBoltStore(cfg.SessionStorePath)
	if err := store.Open(); err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, nil, err
	}
	closers = append(closers, store.Close)

	manager := session.NewManager(svc, store, session.WithTokenVerifier(svc))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return manager, closeAll, nil
}

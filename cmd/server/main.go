package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agri_advisor/internal/config"
	"agri_advisor/internal/handler"
	"agri_advisor/internal/logger"
	"agri_advisor/internal/middleware"
	"agri_advisor/internal/notify"
	"agri_advisor/internal/repository"
	"agri_advisor/internal/service"
	"agri_advisor/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log)

	ctx := context.Background()

	seed, err := repository.SeedUsers(time.Now())
	if err != nil {
		logrus.Fatalf("Failed to build seed users: %v", err)
	}

	// --- Repositories ---
	var (
		userRepo     repository.UserRepository
		passcodeRepo repository.PasscodeRepository
		dbPool       *pgxpool.Pool
	)
	if cfg.DB != nil {
		dbPool, err = config.ConnectDB(ctx, cfg.DB)
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()

		if err := config.AutoMigrate(ctx, dbPool); err != nil {
			logrus.Fatalf("Failed to auto-migrate database: %v", err)
		}
		userRepo = repository.NewUserRepository(dbPool)
		passcodeRepo = repository.NewPasscodeRepository(dbPool)
		if err := config.SeedUsers(ctx, userRepo, seed); err != nil {
			logrus.Fatalf("Failed to seed users: %v", err)
		}
	} else {
		logrus.Warn("No database configured, using in-memory repositories")
		userRepo = repository.NewMemoryUserRepository(seed...)
		passcodeRepo = repository.NewMemoryPasscodeRepository()
	}

	// --- Services ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)
	authService := service.NewAuthService(userRepo, passcodeRepo, notify.NewLogSMSService(), jwtUtil,
		service.WithPasscodeTTL(cfg.PasscodeTTL),
		service.WithMaxPasscodeAttempts(cfg.PasscodeMaxTries))
	authHandler := handler.NewAuthHandler(authService)

	// --- Router ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logrus.StandardLogger().WriterLevel(logrus.InfoLevel)))
	router.Use(gin.RecoveryWithWriter(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel)))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, middleware.JWTAuthMiddleware(jwtUtil))

	router.GET("/health", func(c *gin.Context) {
		if dbPool == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "memory"})
			return
		}
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logrus.Infof("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exiting")
}

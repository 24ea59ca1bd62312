package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/wedding-seating/config"
	"github.com/yeremiapane/wedding-seating/database"
	"github.com/yeremiapane/wedding-seating/hub"
	"github.com/yeremiapane/wedding-seating/middlewares"
	"github.com/yeremiapane/wedding-seating/router"
	"github.com/yeremiapane/wedding-seating/services"
	"github.com/yeremiapane/wedding-seating/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLoggerWithLevel(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		utils.InfoLogger.Warn("JWT_SECRET not set, using the development secret")
	} else {
		utils.SetJWTSecret(cfg.JWTSecret)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db, utils.InfoLogger); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	directory := services.NewGormDirectory(db)
	repo := services.NewArrangementRepository(db, utils.InfoLogger)
	liveHub := hub.New(utils.InfoLogger)

	sessions := services.NewSessionManager(ctx, repo, directory, directory, liveHub, utils.InfoLogger)
	sessions.SaveDelay = cfg.SaveDelay
	sessions.StatusResetAfter = cfg.StatusResetAfter

	r := router.SetupRouter(router.Options{
		Sessions:    sessions,
		Events:      directory,
		Hub:         liveHub,
		RateLimiter: middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		CORSOrigin:  cfg.CORSOrigin,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Info("shutting down, writing pending arrangements")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.WithError(err).Error("server shutdown")
	}
	sessions.Close()
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gossip/internal/config"
	"gossip/internal/httpserver"
	"gossip/internal/logger"
	"gossip/internal/security"
	"gossip/internal/store"
)

// @title           Gossip API
// @version         1.0
// @description     Real-time chat relay backend.

// @host            localhost:9000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	stores, err := store.Open(cfg)
	if err != nil {
		zlog.Fatalw("open store", "driver", cfg.DBDriver, "err", err)
	}
	defer stores.Close()

	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)
	totpSvc := security.NewTOTPService(cfg.AppName)

	encryptor, err := security.NewEncryptor(cfg.FernetKey)
	if err != nil {
		zlog.Fatalw("init encryptor", "err", err)
	}

	router := httpserver.NewRouter(cfg, stores, tokenSvc, passwordHasher, totpSvc, encryptor, zlog)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Infow("starting server", "addr", cfg.HTTPAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatalw("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Errorw("graceful shutdown failed", "err", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/policy-letter-api/internal/app"
	"github.com/policy-letter-api/internal/config"
	"github.com/policy-letter-api/internal/pkg/logger"
	transporthttp "github.com/policy-letter-api/internal/transport/http"
	appmiddleware "github.com/policy-letter-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	lg := logger.New()
	slog.SetDefault(lg)

	cfg := config.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	srvDeps, err := app.NewServer(ctx, cfg, lg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	trusted, err := appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	limiter := appmiddleware.NewRateLimiter(rate.Limit(5), 10, trusted...)
	defer limiter.Stop()

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Auth:     srvDeps.Auth,
		Letters:  srvDeps.Letters,
		Verifier: srvDeps.Tokens,
		Roster:   srvDeps.Roster,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "mail", cfg.MailMode, "otp_store", cfg.OTPStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	stop()
	lg.Info("server stopped")
}

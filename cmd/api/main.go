package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/app/migrate"
	httpx "github.com/AbdelrahmanBadr7422/thinkflow-api/internal/http"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/repository/postgres"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/auth"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/comment"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/like"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/question"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/user"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/ws"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/config"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Up(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	activityHub := ws.NewHub()

	authSvc := auth.New(repo, log, cfg)
	userSvc := user.New(repo, log)
	questionSvc := question.New(repo, repo, log)
	commentSvc := comment.New(repo, repo, activityHub, log)
	likeSvc := like.New(repo, repo, repo, repo, activityHub, log)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, cfg, authSvc, userSvc, questionSvc, commentSvc, likeSvc, activityHub, limiter, pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

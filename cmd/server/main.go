package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"verigate/internal/analyzer"
	"verigate/internal/audit"
	httpapi "verigate/internal/http"
	"verigate/internal/platform/config"
	"verigate/internal/platform/httpserver"
	"verigate/internal/platform/logger"
	platformredis "verigate/internal/platform/redis"
	"verigate/internal/velocity"
	"verigate/internal/verification"
	verificationhandler "verigate/internal/verification/handler"
	"verigate/internal/verification/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Audit trail: Postgres when configured, in-memory otherwise.
	var auditStore audit.Store = audit.NewInMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgStore := audit.NewPostgres(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Error("ensure audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = pgStore
	}

	// Velocity signals: Redis when configured, in-memory otherwise.
	var velocityStore velocity.Store = velocity.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		velocityStore = velocity.NewRedisStore(redisClient.Client)
	}

	service := verification.NewService(
		verification.NewInMemorySessionStore(),
		analyzer.NewStaticDocumentAnalyzer(),
		analyzer.NewStaticBiometricAnalyzer(),
		audit.NewService(auditStore),
		velocity.NewService(velocityStore, cfg.VelocityWindow, cfg.VelocityLimit),
		log,
		metrics.New(),
		cfg.DeviceRisk,
	)

	router := httpapi.NewRouter(verificationhandler.New(service, log))
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting verigate", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

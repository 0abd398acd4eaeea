package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adpulse/adpulse/internal/analytics"
	"github.com/adpulse/adpulse/internal/cache"
	"github.com/adpulse/adpulse/internal/config"
	"github.com/adpulse/adpulse/internal/httpx"
	"github.com/adpulse/adpulse/internal/obs"
	"github.com/adpulse/adpulse/internal/reports"
	"github.com/adpulse/adpulse/internal/store"
	"github.com/adpulse/adpulse/internal/store/memory"
	"github.com/adpulse/adpulse/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("postgres error", slog.String("err", err.Error()))
			os.Exit(1)
		}
		defer pg.Close()
		st = pg
		logger.Info("using postgres store")
	} else {
		st = memory.New()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	var c cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		c = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), logger)
		logger.Info("using redis report cache", slog.String("addr", cfg.RedisAddr))
	}

	deriver := analytics.Deriver{
		Mode:            analytics.ROASMode(cfg.ROASMode),
		ForcedCPMAgency: cfg.ForcedCPMAgency,
	}
	svc := reports.New(st, c, cfg.CacheTTL, deriver, anomalyConfig(cfg), healthWeights(cfg), logger)

	m := obs.New()
	r := httpx.NewRouter(logger, st, svc, m, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

// anomalyConfig applies scoring-file overrides on top of the defaults.
func anomalyConfig(cfg config.Config) analytics.AnomalyConfig {
	out := analytics.DefaultAnomalyConfig()
	if v := cfg.Scoring.Anomaly.ImpressionChangePct; v > 0 {
		out.ImpressionChangePct = v
	}
	if v := cfg.Scoring.Anomaly.TransactionDropPct; v > 0 {
		out.TransactionDropPct = v
	}
	if v := cfg.Scoring.Anomaly.ZeroStreakDays; v > 0 {
		out.ZeroStreakDays = v
	}
	return out
}

func healthWeights(cfg config.Config) analytics.HealthWeights {
	w := cfg.Scoring.HealthWeights
	out := analytics.HealthWeights{ROAS: w.ROAS, Pacing: w.Pacing, BurnRate: w.BurnRate, CTR: w.CTR, Overspend: w.Overspend}
	if out == (analytics.HealthWeights{}) {
		return analytics.DefaultHealthWeights()
	}
	return out
}

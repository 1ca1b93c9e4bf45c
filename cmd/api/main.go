package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bonchef/internal/adapter/repo"
	"bonchef/internal/http/handlers"
	"bonchef/internal/http/httpapi"
	"bonchef/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: db connection failed")
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	infra.NewMetrics(reg)

	jobs := repo.NewImportJobRepository(infra.NewSQLRunner(pool, logger), cfg.MaxPendingVideoJobs)
	app := handlers.NewApp(jobs, pool, &logger)

	opts := httpapi.Options{
		Logger:         &logger,
		Gatherer:       reg,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		TrustedProxies: cfg.TrustedProxies,
	}
	if cfg.StorageDriver == "filesystem" {
		opts.StaticDir = cfg.StoragePath
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, opts))

	go func() {
		logger.Info().Msgf("api: listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: shutdown failed")
	}
	logger.Info().Msg("api: stopped")
}

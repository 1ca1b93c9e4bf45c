package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bonchef/internal/adapter/repo"
	"bonchef/internal/cache"
	"bonchef/internal/fetcher"
	"bonchef/internal/importer"
	"bonchef/internal/infra"
	"bonchef/internal/infra/credentials"
	"bonchef/internal/prompts"
	"bonchef/internal/providers/genai"
	"bonchef/internal/providers/media"
	"bonchef/internal/providers/social"
	"bonchef/internal/providers/videoproc"
	"bonchef/internal/recipes"
	"bonchef/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()
	sqlRunner := infra.NewSQLRunner(pool, logger)

	reg := prometheus.NewRegistry()
	metrics := infra.NewMetrics(reg)

	jobs := repo.NewImportJobRepository(sqlRunner, cfg.MaxPendingVideoJobs)
	recipeStore := repo.NewRecipeRepository(sqlRunner)

	pages, err := newPageFetcher(ctx, cfg, &logger, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure fetcher")
	}

	images, err := newImageStore(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	promptRepo, err := prompts.Load(cfg.PromptsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to load prompts")
	}

	keys := credentials.NewStore(sqlRunner)
	geminiKey, err := keys.Resolve(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: failed to load gemini api key from store")
	}
	videoKey, err := keys.Resolve(ctx, credentials.ProviderVideoProcessor, cfg.VideoProcessorAPIKey)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: failed to load video processor key from store")
	}

	gemini, err := genai.NewClient(genai.Options{
		APIKey:  geminiKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure gemini client")
	}
	if geminiKey == "" {
		logger.Warn().Str("model", gemini.Model()).Msg("worker: gemini api key missing, every import will fail")
	}

	mediaSvc := media.NewService(gemini, promptRepo, images, &logger)
	processor := importer.NewProcessor(importer.Deps{
		Fetcher:     pages,
		Recipes:     recipes.NewService(gemini, promptRepo, &logger),
		Images:      images,
		OCR:         mediaSvc,
		Thumbnails:  mediaSvc,
		Transcriber: mediaSvc,
		Photos:      mediaSvc,
		Videos:      social.NewScraper(pages, &logger),
		VideoProc: videoproc.NewClient(videoproc.Options{
			BaseURL: cfg.VideoProcessorURL,
			APIKey:  videoKey,
			Logger:  &logger,
		}),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})

	worker := importer.NewWorker(jobs, importer.NewRunner(processor, jobs, recipeStore, metrics, &logger), importer.WorkerOptions{
		PollInterval:  cfg.WorkerPollInterval,
		StaleAfter:    cfg.StaleJobAge,
		SweepSchedule: cfg.StaleSweepSchedule,
		Logger:        &logger,
	})

	sweeper, err := worker.StartSweeper(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to schedule stale sweep")
	}
	defer func() { <-sweeper.Stop().Done() }()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := infra.NewHTTPServer(cfg, mux)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.Error().Err(err).Msg("worker: metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("worker: stopped with error")
		return
	}
	logger.Info().Msg("worker: stopped")
}

func newPageFetcher(ctx context.Context, cfg *infra.Config, logger *infra.Logger, metrics *infra.Metrics) (importer.PageFetcher, error) {
	direct, err := fetcher.New(fetcher.Options{
		ProxyURL:       cfg.FetchProxyURL,
		MaxRetries:     cfg.FetchMaxRetries,
		AttemptTimeout: cfg.FetchAttemptTimeout,
		Logger:         logger,
		Metrics:        metrics,
	})
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return direct, nil
	}
	client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("worker: redis unavailable, page cache disabled")
		return direct, nil
	}
	return cache.NewPageCache(direct, cache.RedisKV{Client: client}, cfg.PageCacheTTL, logger, metrics), nil
}

func newImageStore(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*storage.ImageStore, error) {
	var (
		objects storage.ObjectStore
		baseURL = cfg.StorageBaseURL
	)
	switch cfg.StorageDriver {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		objects, baseURL = s3Store, s3Store.BaseURL()
	default:
		fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return nil, err
		}
		objects = fileStore
	}
	return storage.NewImageStore(objects, storage.ImageOptions{
		Placeholder:   cfg.PlaceholderImageURL,
		PublicBaseURL: baseURL,
		Logger:        logger,
	}), nil
}

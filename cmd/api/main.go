package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"imgprompt/internal/history"
	"imgprompt/internal/http/handlers"
	httpapi "imgprompt/internal/http/httpapi"
	"imgprompt/internal/imageref"
	"imgprompt/internal/infra"
	"imgprompt/internal/infra/credentials"
	"imgprompt/internal/infra/geoip"
	"imgprompt/internal/middleware"
	"imgprompt/internal/providers/aryan"
	"imgprompt/internal/providers/genai"
	"imgprompt/internal/resolver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &handlers.App{
		Logger: logger,
		Backends: handlers.BackendInfo{
			AryanEndpoint:        cfg.AryanEndpoint,
			AryanInsecureBlocked: cfg.BlockInsecureUpstreams,
			GeminiModel:          cfg.GeminiModel,
			HistoryBackend:       "memory",
		},
	}
	var keyReader credentials.KeyReader

	dbpool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrNoDatabase):
		logger.Warn().Msg("DATABASE_URL not set; history is in-memory and key storage is disabled")
		app.History = history.NewMemoryStore(cfg.HistoryLimit)
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger)
		if err := history.EnsureSchema(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		store := credentials.NewStore(runner)
		app.History = history.NewPostgresStore(runner, cfg.HistoryLimit)
		app.Backends.HistoryBackend = "postgres"
		app.Keys = store
		keyReader = store
	}

	envKey := func() string {
		if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
			return v
		}
		return cfg.GeminiAPIKey
	}
	app.Credentials = credentials.NewChain(keyReader, envKey, logger)

	engineLogger := logger
	app.Resolver = resolver.New(resolver.Options{
		Aryan: aryan.NewClient(aryan.Options{
			Endpoint:      cfg.AryanEndpoint,
			BlockInsecure: cfg.BlockInsecureUpstreams,
		}),
		Vision: genai.NewClient(genai.Options{
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
			Logger:  &engineLogger,
		}),
		Fetcher:       imageref.NewHTTPFetcher(imageref.FetcherOptions{Timeout: cfg.ImageFetchTimeout}),
		AryanTimeout:  cfg.AryanTimeout,
		VisionTimeout: cfg.GeminiTimeout,
		Logger:        &engineLogger,
	})

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer geo.Close()

	var lookup middleware.CountryLookup
	if fn := geo.Lookup(); fn != nil {
		lookup = fn
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		DefaultLocale:      "en",
		CountryLookup:      lookup,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		AdminSecret:        cfg.AdminJWTSecret,
	})
	if cfg.AdminJWTSecret == "" {
		logger.Warn().Msg("ADMIN_JWT_SECRET not set; PUT /v1/auth/key rejects every request")
	}
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("API listening on %s", server.Addr())
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

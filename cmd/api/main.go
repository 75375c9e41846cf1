package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pualine/Ellah-art-studio/internal/history"
	"github.com/pualine/Ellah-art-studio/internal/http/handlers"
	"github.com/pualine/Ellah-art-studio/internal/http/httpapi"
	"github.com/pualine/Ellah-art-studio/internal/infra"
	"github.com/pualine/Ellah-art-studio/internal/infra/geoip"
	"github.com/pualine/Ellah-art-studio/internal/middleware"
	"github.com/pualine/Ellah-art-studio/internal/providers/genai"
	"github.com/pualine/Ellah-art-studio/internal/providers/image"
	"github.com/pualine/Ellah-art-studio/internal/storage"
	"github.com/pualine/Ellah-art-studio/internal/studio"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// Optional Postgres history
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	var recorder *history.Recorder
	if dbpool != nil {
		defer dbpool.Close()
		recorder = history.NewRecorder(dbpool, logger)
		if err := recorder.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare history schema")
		}
	} else {
		recorder = history.NewRecorder(nil, logger)
	}

	// Optional on-disk retention of generated images
	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage path")
	}

	// Optional GeoIP locale fallback
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open geoip database")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	// Generation client, injected into the session manager
	client, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: cfg.GenerateTimeout},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}
	generator := image.NewGeminiGenerator(client)
	examples := studio.NewHTTPExampleFetcher(cfg.ExampleImageURL, cfg.MaxUploadBytes)
	manager := studio.NewManager(generator, examples, cfg.DefaultPrompt, logger)

	sessions := studio.NewStore(cfg.SessionTTL)
	go sessions.Run(ctx)

	app := handlers.NewApp(cfg, logger, manager, sessions, recorder, files)
	router := httpapi.NewRouter(app, cfg, logger, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("model", client.Model()).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"liminal-reels/internal/http/handlers"
	"liminal-reels/internal/http/httpapi"
	"liminal-reels/internal/infra"
	"liminal-reels/internal/jobs"
	"liminal-reels/internal/overlay"
	"liminal-reels/internal/providers/image"
	"liminal-reels/internal/reel"
	"liminal-reels/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewAssetStore(cfg.AssetsDir, cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare asset directories")
	}

	provider := image.NewSelector(
		image.NewMockProvider(store, logger),
		image.NewOpenAIProvider(image.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIImageModel,
			BaseURL: cfg.OpenAIBaseURL,
			Store:   store,
			Logger:  logger,
		}),
		func() bool { return cfg.MockGeneration },
		cfg.OpenAIAPIKey,
	)

	themes := reel.NewRegistry()
	if cfg.ThemesPath != "" {
		if err := themes.LoadFile(cfg.ThemesPath); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.ThemesPath).Msg("failed to load theme file")
		}
	}

	composer := reel.NewComposer(reel.ComposerOptions{
		Config:   cfg,
		Provider: provider,
		Overlay:  overlay.NewEngine(store, logger, cfg.FontPath),
		Themes:   themes,
		Store:    store,
		Encoder: reel.NewFFmpegEncoder(reel.FFmpegOptions{
			FFmpegPath: cfg.FFmpegPath,
			FrameRate:  cfg.FrameRate,
			AudioPath:  cfg.AudioPath,
			Logger:     logger,
		}),
		Logger: logger,
	})

	app := handlers.NewApp(logger, composer, jobs.NewTracker())
	router := httpapi.NewRouter(app, logger, cfg)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

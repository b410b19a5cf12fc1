package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"personastudio/internal/adapter/repo"
	"personastudio/internal/http/handlers"
	"personastudio/internal/http/httpapi"
	"personastudio/internal/infra"
	"personastudio/internal/infra/credentials"
	"personastudio/internal/infra/geoip"
	"personastudio/internal/providers/replicate"
	"personastudio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	// Env token wins; the integration-token table is the fallback so a
	// rotated token takes effect without a redeploy.
	token := cfg.ReplicateAPIToken
	if token == "" {
		stored, err := credentials.NewStore(runner).ReplicateAPIToken(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load stored gateway token")
		} else {
			token = stored
		}
	}
	gateway := replicate.NewClient(replicate.Options{
		APIToken: token,
		BaseURL:  cfg.ReplicateBaseURL,
		Logger:   &logger,
	})

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file store")
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country enrichment disabled")
	}
	if geo != nil {
		defer geo.Close()
	}

	app := handlers.NewApp(cfg, logger, gateway, repo.NewPersonaRepository(runner), store)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		CountryLookup:  geoip.LookupFunc(geo),
		StaticDir:      cfg.StoragePath,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

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

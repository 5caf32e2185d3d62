package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"engrafo/internal/database"
	"engrafo/internal/http/handlers"
	httpapi "engrafo/internal/http/httpapi"
	"engrafo/internal/infra"
	"engrafo/internal/infra/geoip"
	"engrafo/internal/middleware"
	"engrafo/internal/providers/paypal"
	"engrafo/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	var lookup middleware.CountryLookup
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Warn().Err(err).Msg("geoip database unavailable, country detection disabled")
		} else {
			lookup = geoip.Lookup(resolver)
		}
	}

	gateway, err := paypal.NewClient(paypal.Options{
		ClientID: cfg.PayPalClientID,
		Secret:   cfg.PayPalSecret,
		BaseURL:  cfg.PayPalBaseURL,
		IPNURL:   cfg.PayPalIPNURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure payment gateway")
	}

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open document storage")
	}

	app := &handlers.App{
		SQL:    infra.NewSQLRunner(dbpool, logger),
		Logger: logger,
		Cfg:    cfg,
		PayPal: gateway,
		Store:  store,
		PingDB: func(ctx context.Context) error {
			return infra.PingDB(ctx, dbpool)
		},
	}

	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
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

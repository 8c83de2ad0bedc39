package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mediadl/internal/bootstrap"
	"mediadl/internal/http/handlers"
	httpapi "mediadl/internal/http/httpapi"
	"mediadl/internal/infra"
	"mediadl/internal/infra/geoip"
	"mediadl/internal/middleware"
)

func main() {
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	svc, err := bootstrap.Build(cfg, logger, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire pipeline")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	app := &handlers.App{
		Jobs:      svc.Jobs,
		Runner:    svc.Runner,
		Extractor: svc.Extractor,
		Files:     svc.Files,
		Logger:    logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
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
	if err := svc.Runner.Wait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("jobs still running at shutdown")
	}
	logger.Info().Msg("server stopped")
}

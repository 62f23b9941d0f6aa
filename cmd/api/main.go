package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"helium-admin/internal/analytics"
	"helium-admin/internal/http/handlers"
	"helium-admin/internal/http/httpapi"
	"helium-admin/internal/infra"
	"helium-admin/internal/infra/geoip"
	"helium-admin/internal/mail"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := infra.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country enrichment disabled")
		geo = nil
	}
	if closer, ok := geo.(io.Closer); ok {
		defer closer.Close()
	}

	var mailer *mail.Service
	if cfg.SMTPConfigured() {
		transport, err := mail.NewSMTPTransport(mail.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPass,
			SenderEmail: cfg.SenderEmail,
			FromName:    cfg.SMTPFromName,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid smtp configuration")
		}
		mailer = mail.NewService(sqlRunner, transport, logger, cfg.EmailAssetDir)
	} else {
		logger.Warn().Msg("smtp not configured, email endpoints disabled")
	}

	var ga *analytics.Client
	if cfg.GAPropertyID != "" {
		key, err := analytics.LoadKey(cfg.GAKeyJSON, cfg.GAKeyFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load analytics credentials")
		}
		ga, err = analytics.NewClient(analytics.Options{
			Key:        key,
			PropertyID: cfg.GAPropertyID,
			Logger:     &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build analytics client")
		}
	} else {
		logger.Warn().Msg("analytics property not configured, analytics endpoint disabled")
	}

	app := &handlers.App{
		SQL:           sqlRunner,
		Logger:        logger,
		Validate:      handlers.NewValidator(),
		Mailer:        mailer,
		Analytics:     ga,
		Geo:           geo,
		AssetDir:      cfg.EmailAssetDir,
		SignupBaseURL: cfg.SignupBaseURL,
	}

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
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

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ahmedoumar/storify/internal/accounts"
	"github.com/ahmedoumar/storify/internal/auth"
	"github.com/ahmedoumar/storify/internal/config"
	"github.com/ahmedoumar/storify/internal/db"
	"github.com/ahmedoumar/storify/internal/email"
	"github.com/ahmedoumar/storify/internal/handlers"
	"github.com/ahmedoumar/storify/internal/stories"
	"github.com/ahmedoumar/storify/internal/telemetry"
	"github.com/ahmedoumar/storify/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	shutdownTelemetry, traceMiddleware, err := telemetry.Init(ctx, version.Name, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	database, err := db.Connect(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var mailer email.Mailer = email.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPMailer(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
			AppURL:   cfg.AppURL,
		})
	}

	accountStore := accounts.NewStore(database)
	authService := auth.NewService(accountStore, auth.NewBcryptHasher(cfg.BcryptCost), mailer)
	storyStore := stories.NewStore(database)

	handler, err := handlers.New(authService, storyStore, handlers.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SigningKey:     cfg.JWTSigningKey,
		TokenTTL:       cfg.AccessTokenTTL,
		Middleware:     traceMiddleware,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build handlers")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", version.Version).Msg("starting storify-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/bookhaven/book-platform-api/services/auth-service/internal/config"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/handler"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/repository"
	"github.com/bookhaven/book-platform-api/services/auth-service/internal/usecase"
	"github.com/bookhaven/book-platform-api/shared/auth"
	"github.com/bookhaven/book-platform-api/shared/middleware"
	"github.com/bookhaven/book-platform-api/shared/validate"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "auth-service").Logger()

	cfg := config.NewAuthServiceConfig(&logger)
	if cfg.Env == "development" {
		logger = logger.Level(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.Mongo.Database)
	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	sessionRepo := repository.NewSessionMongoRepository(ctx, &logger, db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer)
	authUsecase := usecase.NewAuthUsecase(userRepo, sessionRepo, jwtAuth, cfg)

	validator, err := validate.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build request validator")
	}

	authHandler := handler.NewAuthHandler(authUsecase, userRepo, validator, &logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestLogger(&logger))
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	authHandler.RegisterRoutes(router, middleware.RequireAuth(jwtAuth, cfg.Token.AccessTokenSecret))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.Env).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("http server stopped unexpectedly")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}

	logger.Info().Msg("http server stopped")
}

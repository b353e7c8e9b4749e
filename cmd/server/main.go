package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/schoolatlas-dev/schoolatlas/cache"
	redisgeocode "github.com/schoolatlas-dev/schoolatlas/cache/redis"
	"github.com/schoolatlas-dev/schoolatlas/config"
	"github.com/schoolatlas-dev/schoolatlas/graph"
	"github.com/schoolatlas-dev/schoolatlas/internal/auth"
	"github.com/schoolatlas-dev/schoolatlas/internal/geocode"
	"github.com/schoolatlas-dev/schoolatlas/internal/mail"
	"github.com/schoolatlas-dev/schoolatlas/internal/secrets"
	"github.com/schoolatlas-dev/schoolatlas/middleware"
	"github.com/schoolatlas-dev/schoolatlas/mongodb"
	"github.com/schoolatlas-dev/schoolatlas/services"
)

// geocodeCacheTTL bounds how long geocode answers are reused. Addresses do
// not move; a week keeps the billing down without serving stale map pins.
const geocodeCacheTTL = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stdout).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)
	log.Info().Msg("Starting schoolatlas server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := secrets.Overlay(ctx, cfg); err != nil {
		log.Warn().Err(err).Msg("Secrets overlay failed, continuing with env configuration")
	}

	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongodb.CloseMongoDB(shutdownCtx)
	}()
	db := mongodb.GetDB()

	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user repository")
	}
	sessionRepo, err := mongodb.NewSessionRepositoryMongo(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session repository")
	}
	schoolRepo, err := mongodb.NewSchoolRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create school repository")
	}
	reviewRepo, err := mongodb.NewReviewRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create review repository")
	}

	geocodeCache := newGeocodeCache(cfg)
	defer geocodeCache.Close()

	geocoder := geocode.NewClient(cfg.GoogleMapsAPIKey, geocodeCache)
	mailer := mail.NewClient(cfg.MailServerToken, cfg.MailFromAddress, cfg.MailAPIBaseURL)
	if !mailer.Configured() {
		log.Warn().Msg("Mail client not configured, password recovery mails will fail")
	}

	hasher := auth.NewBcryptPasswordHasher(auth.HashCost)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.SessionTTL())

	authSvc := services.NewAuthService(userRepo, sessionRepo, tokens, hasher, cfg.SessionTTL())
	userSvc := services.NewUserService(userRepo, schoolRepo, sessionRepo, hasher, mailer)
	schoolSvc := services.NewSchoolService(schoolRepo, reviewRepo, geocoder)
	reviewSvc := services.NewReviewService(reviewRepo, schoolRepo, userRepo)

	schema, err := graph.NewSchema(graph.NewResolver(authSvc, userSvc, schoolSvc, reviewSvc))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build GraphQL schema")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	// The session middleware is scoped to the API route: the health probe
	// must answer even when the caller presents a stale cookie.
	e.POST("/graphql", graph.Handler(schema), middleware.Session(tokens, sessionRepo, userRepo))
	e.GET("/healthz", func(c echo.Context) error {
		if err := mongodb.Ping(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "mongo unreachable")
		}
		return c.String(http.StatusOK, "ok")
	})

	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// newGeocodeCache picks the cache backend from config. Redis lets multiple
// replicas share geocode answers; memory is the single-node default.
func newGeocodeCache(cfg *config.Config) cache.GeocodeCache {
	if cfg.GeocodeCacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return redisgeocode.NewGeocodeCache(client, "schoolatlas", geocodeCacheTTL)
	}
	return cache.NewMemoryGeocodeCache(geocodeCacheTTL)
}

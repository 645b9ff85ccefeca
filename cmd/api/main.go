package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(string(cfg.Environment), cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize asset storage")
	}

	// Redis is optional: without it tokens cannot be revoked and recipe
	// creation is not rate limited.
	var denylist service.TokenDenylist
	var createLimiter gin.HandlerFunc
	if cfg.HasRedis() {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("continuing without redis")
		} else {
			defer client.Close()
			denylist = service.NewRedisDenylist(client)
			createLimiter = middleware.NewRecipeCreationRateLimiter(client, cfg.RecipeRateLimit).Middleware()
		}
	}

	images := service.NewImageService(store)
	recipes := service.NewRecipeService(db, images)
	svc := api.Services{
		Auth:        service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist),
		Users:       service.NewUserService(db),
		Catalog:     service.NewCatalogService(db),
		Recipes:     recipes,
		Memberships: service.NewMembershipService(db, recipes, images),
		Follows:     service.NewFollowService(db, images),
		Shopping:    service.NewShoppingService(db),
	}

	srv := server.New(cfg, db, svc, api.Options{
		PDFFontPath:         cfg.PDFFontPath,
		RecipeCreateLimiter: createLimiter,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("received signal")
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}

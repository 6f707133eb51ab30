package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"recipes/docs"
	"recipes/internal/auth"
	"recipes/internal/cache"
	"recipes/internal/config"
	"recipes/internal/db"
	"recipes/internal/handler"
	"recipes/internal/logger"
	"recipes/internal/media"
	"recipes/internal/repository"
	"recipes/internal/router"
	"recipes/internal/serializer"
	"recipes/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Recipe API
// @version 1.0
// @description Multi-tenant recipe catalog: users keep private tags, ingredients and recipes.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Type "Token" followed by a space and the token from /users/token.
func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Level:       logger.ParseLevel(cfg.LogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("database init", "error", err)
		os.Exit(1)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unavailable, token revocation will not persist", "addr", cfg.RedisAddr, "error", err)
	}

	storage, err := media.NewStorage(cfg.MediaRoot, cfg.MaxUploadBytes)
	if err != nil {
		log.Error("media storage init", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	ingredientRepo := repository.NewIngredientRepository(gormDB)
	recipeRepo := repository.NewRecipeRepository(gormDB)

	// Initialize auth components
	hasher := auth.NewBcryptHasher()
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, hasher,
		service.WithRecipeImages(storage),
		service.WithUserLogger(log),
	)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo, storage,
		service.WithCrossTenantLabels(cfg.AllowCrossTenantLabels),
		service.WithLogger(log),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, log, authService, router.Handlers{
		Users:       handler.NewUserHandler(userService),
		Auth:        handler.NewAuthHandler(authService),
		Tags:        handler.NewLabelHandler(service.NewTagService(tagRepo)),
		Ingredients: handler.NewLabelHandler(service.NewIngredientService(ingredientRepo)),
		Recipes:     handler.NewRecipeHandler(recipeService, serializer.NewRecipeSerializer(cfg.MediaURL)),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Info("swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info("server starting", "addr", addr, "driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}

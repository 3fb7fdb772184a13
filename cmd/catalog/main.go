// Command catalog serves the product catalog the gateway prices orders from.
//
//	@title						Storefront Catalog API
//	@version					1.0
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront/gateway/internal/api"
	"github.com/storefront/gateway/internal/api/handler"
	"github.com/storefront/gateway/internal/core/service"
	mongodb "github.com/storefront/gateway/internal/infrastructure/db/mongo"
	"github.com/storefront/gateway/internal/pkg/config"
	"github.com/storefront/gateway/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "catalog",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	products := mongodb.NewProductRepository(db)
	if err := products.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes failed")
	}

	// Verification only; the catalog never issues tokens.
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, logger.Component("tokens"))

	e := api.NewCatalogRouter(api.CatalogDeps{
		Log:       log,
		Products:  service.NewProductService(products, logger.Component("products")),
		Tokens:    tokens,
		Readiness: map[string]handler.Check{"mongo": handler.MongoCheck(db)},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("catalog listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("catalog stopped")
}

// Command gateway serves authentication, orders and owned content.
//
//	@title						Storefront Gateway API
//	@version					1.0
//	@description				Authentication, role-based access control, order pricing and owned content.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT.
//	@securityDefinitions.basic	BasicAuth
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
	"github.com/storefront/gateway/internal/core/domain"
	"github.com/storefront/gateway/internal/core/ports"
	"github.com/storefront/gateway/internal/core/service"
	"github.com/storefront/gateway/internal/infrastructure/catalog"
	mongodb "github.com/storefront/gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/gateway/internal/infrastructure/db/redis"
	"github.com/storefront/gateway/internal/infrastructure/queue"
	"github.com/storefront/gateway/internal/pkg/config"
	"github.com/storefront/gateway/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type indexed interface {
	EnsureIndexes(ctx context.Context) error
}

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "gateway",
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

	users := mongodb.NewAuthRepository(db)
	orders := mongodb.NewOrderRepository(db)
	requestLogs := mongodb.NewRequestLogRepository(db)
	contentRepos := map[domain.ContentKind]*mongodb.ContentRepository{}
	repos := []indexed{users, orders, requestLogs}
	for _, kind := range domain.ContentKinds {
		r := mongodb.NewContentRepository(db, kind)
		contentRepos[kind] = r
		repos = append(repos, r)
	}
	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure indexes failed")
		}
	}

	readiness := map[string]handler.Check{"mongo": handler.MongoCheck(db)}

	tokenOpts := []service.TokenOption{}
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rdb.Close()
		tokenOpts = append(tokenOpts, service.WithDenylist(redisdb.NewDenylist(rdb)))
		readiness["redis"] = handler.RedisCheck(rdb)
	} else {
		log.Warn().Msg("redis disabled: logout will not revoke tokens")
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, logger.Component("tokens"), tokenOpts...)
	auth := service.NewAuthService(users, tokens, logger.Component("auth"))

	products := catalog.New(catalog.Config{BaseURL: cfg.Catalog.URL, Timeout: cfg.Catalog.LookupTimeout})
	orderService := service.NewOrderService(orders, products, cfg.Catalog.LookupTimeout, logger.Component("orders"))

	var content []ports.ContentService
	for _, kind := range domain.ContentKinds {
		svc := service.NewContentService(kind, contentRepos[kind], logger.Component(string(kind)))
		switch kind {
		case domain.KindComment:
			svc = svc.WithParent(contentRepos[domain.KindPost])
		case domain.KindPost:
			svc = svc.WithChildren(contentRepos[domain.KindComment])
		}
		content = append(content, svc)
	}

	queueCtx, cancelQueue := context.WithCancel(context.Background())
	requestLog := queue.NewRequestLog(cfg.RequestLog.Workers, cfg.RequestLog.Buffer, requestLogs, logger.Component("request_log"))
	requestLog.Start(queueCtx)

	// A nil interface disables basic auth; never pass a typed nil here.
	var basic ports.BasicAuthenticator
	if cfg.BasicAuthEnabled {
		basic = auth
	}

	e := api.NewRouter(api.Deps{
		Log:        log,
		Auth:       auth,
		Tokens:     tokens,
		Basic:      basic,
		Orders:     orderService,
		Content:    content,
		RequestLog: requestLog,
		Readiness:  readiness,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("catalog", cfg.Catalog.URL).Msg("gateway listening")
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

	cancelQueue()
	requestLog.Wait()
	log.Info().Msg("gateway stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/quotecraft/quoting-system/docs"
	"github.com/quotecraft/quoting-system/internal/api"
	"github.com/quotecraft/quoting-system/internal/api/handler"
	"github.com/quotecraft/quoting-system/internal/core/ports"
	"github.com/quotecraft/quoting-system/internal/core/service"
	"github.com/quotecraft/quoting-system/internal/infrastructure/ai"
	"github.com/quotecraft/quoting-system/internal/infrastructure/config"
	"github.com/quotecraft/quoting-system/internal/infrastructure/db/memory"
	mongodb "github.com/quotecraft/quoting-system/internal/infrastructure/db/mongo"
	redisdb "github.com/quotecraft/quoting-system/internal/infrastructure/db/redis"
	"github.com/quotecraft/quoting-system/internal/infrastructure/queue"
	"github.com/quotecraft/quoting-system/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "quoting-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

type promptStore interface {
	ports.PromptRepository
	ports.PromptLayerReader
}

// repositories is the persistence backend selected by STORAGE_DRIVER.
type repositories struct {
	users      ports.UserRepository
	tokens     ports.TokenRepository
	prompts    promptStore
	industries ports.IndustryRepository
	companies  ports.CompanyRepository
	clients    ports.ClientRepository
	quotes     ports.QuoteRepository
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handler.HealthCheck{}

	var repos repositories
	switch cfg.StorageDriver {
	case "memory":
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		repos = repositories{
			users:      store.Users(),
			tokens:     store.Tokens(),
			prompts:    store.Prompts(),
			industries: store.Industries(),
			companies:  store.Companies(),
			clients:    store.Clients(),
			quotes:     store.Quotes(),
		}
	case "mongo":
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

		users := mongodb.NewUserRepository(db)
		tokens := mongodb.NewTokenRepository(db)
		prompts := mongodb.NewPromptRepository(db)
		clients := mongodb.NewClientRepository(db)
		quotes := mongodb.NewQuoteRepository(db)
		if err := mongodb.EnsureIndexes(ctx, users, tokens, prompts, clients, quotes); err != nil {
			return err
		}
		repos = repositories{
			users:      users,
			tokens:     tokens,
			prompts:    prompts,
			industries: mongodb.NewIndustryRepository(db),
			companies:  mongodb.NewCompanyRepository(db),
			clients:    clients,
			quotes:     quotes,
		}
		checks["mongo"] = handler.MongoCheck(db)
	default:
		return errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
	}

	// Redis backs the rate limiter and the prompt cache. Both degrade to
	// passthrough without it.
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, rate limiting and prompt cache disabled")
		} else {
			rdb = client
			defer rdb.Close()
			checks["redis"] = handler.RedisCheck(rdb)
		}
	}

	var (
		layers      ports.PromptLayerReader = repos.prompts
		invalidator ports.PromptCacheInvalidator
	)
	if rdb != nil {
		cache := redisdb.NewPromptCache(rdb, repos.prompts, cfg.PromptCacheTTL, log)
		layers, invalidator = cache, cache
	}

	var publisher ports.AuthEventPublisher = queue.NewLogPublisher(log)
	if cfg.RabbitMQ.URL != "" {
		rabbit := queue.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		defer rabbit.Close()
		publisher = rabbit
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.EventWorkers, publisher, log)
	dispatcher.Start(workerCtx)
	defer func() {
		cancelWorkers()
		dispatcher.Wait()
	}()

	var provider ports.CompletionProvider = ai.Disabled{}
	if cfg.AI.APIKey != "" {
		provider = ai.NewOpenAIClient(ai.Config{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, nil)
	} else {
		log.Warn().Msg("AI_API_KEY not set, generation is disabled")
	}

	issuer := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, nil)
	authService := service.NewAuthService(repos.users, repos.tokens, repos.companies, repos.industries, issuer, dispatcher, log, service.AuthOptions{
		RefreshTTL:          cfg.Auth.RefreshTokenTTL,
		RevokeFamilyOnReuse: cfg.Auth.RevokeFamilyOnReuse,
	})
	composer := service.NewPromptComposer(layers, repos.companies, repos.industries, repos.clients, repos.quotes, log)

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Verifier:   issuer,
		Prompts:    service.NewPromptService(repos.prompts, invalidator, log),
		Composer:   composer,
		Generator:  service.NewGenerationService(composer, provider, log),
		Quotes:     service.NewQuoteService(repos.quotes, repos.clients, log),
		Industries: service.NewIndustryService(repos.industries),
		AuthOptions: handler.AuthOptions{
			AccessTTL:    issuer.TTL(),
			RefreshTTL:   cfg.Auth.RefreshTokenTTL,
			CookieSecure: cfg.Auth.CookieSecure || cfg.IsProduction(),
		},
		RateLimit:    cfg.RateLimit,
		Redis:        rdb,
		HealthChecks: checks,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Str("storage", cfg.StorageDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

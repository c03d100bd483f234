package container

import (
	"context"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/gatelink/gatelink/internal/analytics"
	analyticsstore "github.com/gatelink/gatelink/internal/analytics/store"
	"github.com/gatelink/gatelink/internal/botgate"
	"github.com/gatelink/gatelink/internal/handlers"
	"github.com/gatelink/gatelink/internal/health"
	"github.com/gatelink/gatelink/internal/issuer"
	"github.com/gatelink/gatelink/internal/messaging"
	"github.com/gatelink/gatelink/internal/middleware"
	"github.com/gatelink/gatelink/internal/ratelimit"
	"github.com/gatelink/gatelink/internal/redirect"
	"github.com/gatelink/gatelink/internal/resolver"
	"github.com/gatelink/gatelink/internal/store"
	"github.com/gatelink/gatelink/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Options is the process configuration, parsed once at startup and injected
// everywhere by reference. Components never read ambient configuration.
type Options struct {
	Port            int    `default:"8888"           help:"Port to listen on"                                            short:"p"`
	Secret          string `help:"Shared secret for signing link tokens (required)"`
	DatabaseURL     string `help:"Postgres connection string; empty selects the in-memory store"`
	RedisAddr       string `default:"localhost:6379" help:"Redis server address"                                         short:"r"`
	CacheTTL        int    `default:"300"            help:"Redirect read-cache TTL in seconds; 0 disables the cache"`
	Challenge       bool   `default:"false"          help:"Serve the challenge interstitial instead of redirecting directly"`
	HoneypotParam   string `default:"probe_id"       help:"Honeypot query parameter name"`
	RateLimitMax    int    `default:"10"             help:"Admission control: max requests per window per client"`
	RateLimitWindow int    `default:"60"             help:"Admission control: window length in seconds"`
	PersistStats    bool   `default:"true"           help:"Persist analytics events to Redis; false only logs them"`
	LogFormat       string `default:"console"        help:"Log format (console or json)"`
}

// RegisterServerPackages wires everything the HTTP server process needs.
func RegisterServerPackages(injector *do.Injector, options *Options) {
	do.ProvideValue(injector, options)
	LoggerPackage(injector)
	RedisPackage(injector)
	PostgresPackage(injector)
	RepositoryPackage(injector)
	RateLimitPackage(injector)
	PublisherGroupPackage(injector)
	HTTPPackage(injector)
}

// RegisterConsumerPackages wires the analytics consumer process.
func RegisterConsumerPackages(injector *do.Injector, options *Options) {
	do.ProvideValue(injector, options)
	LoggerPackage(injector)
	RedisPackage(injector)
	ConsumerGroupPackage(injector)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the shared Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{Addr: options.RedisAddr}), nil
	})
}

// PostgresPackage provides the pgx connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.DatabaseURL)
	})
}

// RepositoryPackage provides the redirect.Repository: Postgres when a
// database URL is configured, in-memory otherwise, optionally wrapped with
// the Redis read cache.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (redirect.Repository, error) {
		options := do.MustInvoke[*Options](i)

		var repo redirect.Repository
		if options.DatabaseURL != "" {
			repo = store.NewPostgresStore(do.MustInvoke[*pgxpool.Pool](i))
		} else {
			repo = store.NewMemoryStore()
		}

		if options.CacheTTL > 0 {
			client := do.MustInvoke[*redis.Client](i)
			ttl := time.Duration(options.CacheTTL) * time.Second
			repo = store.NewRedisCacheRepository(repo, client, ttl)
		}

		return repo, nil
	})
}

// RateLimitPackage provides the fixed-window admission-control limiter backed
// by Redis so limits hold across instances.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)

		window := time.Duration(options.RateLimitWindow) * time.Second

		return ratelimit.NewFixedWindowLimiter(
			store.NewRateLimitRedisStore(client),
			int64(options.RateLimitMax),
			window,
		), nil
	})
}

// PublisherGroupPackage provides the Redis-stream publisher and the typed
// publish functions for the link lifecycle topics.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkIssuedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkIssuedEvent](group.Publisher(), analytics.TopicLinkIssued), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkResolvedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkResolvedEvent](group.Publisher(), analytics.TopicLinkResolved), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.LinkDeniedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.LinkDeniedEvent](group.Publisher(), analytics.TopicLinkDenied), nil
	})
}

// ConsumerGroupPackage provides the consumer group persisting link lifecycle
// events into the Redis analytics store. With persistence disabled the events
// are still consumed and acked, only logged.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		options := do.MustInvoke[*Options](i)

		if !options.PersistStats {
			return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
		}

		return analyticsstore.NewRedis(do.MustInvoke[*redis.Client](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(
			redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: "gatelink-analytics",
			},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, err
		}

		analyticsStore := do.MustInvoke[analytics.Store](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkIssued, analytics.IssuedHandler(analyticsStore), logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkResolved, analytics.ResolvedHandler(analyticsStore), logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicLinkDenied, analytics.DeniedHandler(analyticsStore), logger))

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with all middleware and
// routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("Error: Invalid request."))
		})

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		repo := do.MustInvoke[redirect.Repository](i)
		limiter := do.MustInvoke[ratelimit.Limiter](i)

		codec, err := token.NewCodec(options.Secret)
		if err != nil {
			return nil, err
		}

		generateKey, err := nanoid.CustomASCII(issuer.KeyAlphabet, issuer.KeyLength)
		if err != nil {
			return nil, err
		}

		gate := botgate.New(options.HoneypotParam)
		engine := resolver.NewEngine(gate, codec, repo, options.Challenge, logger)
		issuance := issuer.NewService(repo, codec, generateKey, logger)

		linkHandler := handlers.NewLinkHandler(
			issuance,
			engine,
			do.MustInvoke[messaging.Publish[analytics.LinkIssuedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.LinkResolvedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.LinkDeniedEvent]](i),
			logger,
		)
		adminHandler := handlers.NewAdminHandler(repo, logger)

		healthHandler := health.NewHandler(
			health.NewRedisChecker(do.MustInvoke[*redis.Client](i)),
			postgresChecker(i, options),
		)

		api := humachi.New(router, huma.DefaultConfig("Gatelink", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.RateLimiter(api, limiter, logger))

		handlers.RegisterRoutes(api, linkHandler, adminHandler)
		health.RegisterRoutes(api, healthHandler)

		return api, nil
	})
}

func postgresChecker(i *do.Injector, options *Options) health.Checker {
	if options.DatabaseURL == "" {
		return nil
	}

	return health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i))
}

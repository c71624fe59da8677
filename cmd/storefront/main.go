package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"

	"github.com/joao-fontenele/hotwheels-storefront/internal/auth"
	"github.com/joao-fontenele/hotwheels-storefront/internal/cart"
	"github.com/joao-fontenele/hotwheels-storefront/internal/catalog"
	"github.com/joao-fontenele/hotwheels-storefront/internal/checkout"
	"github.com/joao-fontenele/hotwheels-storefront/internal/config"
	"github.com/joao-fontenele/hotwheels-storefront/internal/contact"
	"github.com/joao-fontenele/hotwheels-storefront/internal/docstore"
	"github.com/joao-fontenele/hotwheels-storefront/internal/messaging"
	"github.com/joao-fontenele/hotwheels-storefront/internal/orders"
	"github.com/joao-fontenele/hotwheels-storefront/internal/server"
	"github.com/joao-fontenele/hotwheels-storefront/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := otelruntime.Start(); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	metrics, err := telemetry.NewMetrics(otel.Meter("storefront"))
	if err != nil {
		logger.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var records docstore.Records
	if cfg.MongoURI != "" {
		mongoDB, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Error("failed to connect to document store", "error", err)
			os.Exit(1)
		}
		defer func() { _ = mongoDB.Client().Disconnect(context.Background()) }()

		store := docstore.NewMongoStore(mongoDB)
		if err := store.CreateIndexes(ctx); err != nil {
			logger.Error("failed to create indexes", "error", err)
			os.Exit(1)
		}
		records = store
	} else {
		logger.Warn("MONGO_URI not set, documents are kept in memory")
		records = docstore.NewMemoryStore()
	}

	var (
		sessionStore cart.SessionStore = cart.NewMemorySessionStore(cfg.SessionTTL)
		revocations  auth.Revocations  = auth.NewMemoryRevocations()
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessionStore = cart.NewRedisSessionStore(rdb, cfg.SessionTTL)
		revocations = auth.NewRedisRevocations(rdb)
	}

	var publisher checkout.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewOrderPublisher(cfg.KafkaBrokers, cfg.OrdersTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	products := catalog.NewRepository(records)
	if cfg.SeedCatalog {
		if err := products.Seed(ctx, logger); err != nil {
			logger.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
	}
	orderRepo := orders.NewOrderRepository(records)
	messages := contact.NewRepository(records)

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}
	provider := auth.NewProvider(auth.NewUserRepository(db), tokens, revocations, cfg.AdminEmail, logger)
	unsubscribe := provider.Subscribe(func(change auth.IdentityChange) {
		logger.Info("identity changed", "kind", change.Kind, "user_id", change.Identity.UserID)
	})
	defer unsubscribe()

	sessions := cart.NewSessions(sessionStore)
	service := checkout.NewService(sessions, checkout.NewCalculator(), orderRepo, publisher, metrics, logger)

	router := server.NewRouter(server.Handlers{
		Catalog:       catalog.NewHandler(products, sessions, logger),
		Cart:          cart.NewHandler(sessions, products, metrics, logger),
		Checkout:      checkout.NewHandler(service, logger),
		Auth:          auth.NewHandler(provider, sessions, metrics, logger),
		Orders:        orders.NewHandler(orderRepo, logger),
		Contact:       contact.NewHandler(messages, logger),
		Authenticator: provider,
		Metrics:       metricsHandler,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(router, cfg.ServiceName,
			otelhttp.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

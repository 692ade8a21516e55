package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/mongostore"
	"storefront-service/internal/reconcile"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "storefront-service"

// backend is the catalog and order store selected by STORE_DRIVER
type backend interface {
	reconcile.Catalog
	service.ProductReader
	service.OrderRepository
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, serviceName); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service",
		zap.String("env", cfg.Server.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("cart_store", cfg.Cart.Store))

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(serviceName, cfg.Server.Env, cfg.Observ.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	db, err := openBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Store connected", zap.String("driver", cfg.Store.Driver))

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	var carts cart.Store
	switch cfg.Cart.Store {
	case config.CartStoreMemory:
		carts = cart.NewMemoryStore()
	default:
		carts = cart.NewRedisStore(redisClient, cfg.Cart.TTL)
	}

	var publisher service.EventPublisher = broker.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	breaker := util.NewCircuitBreaker("catalog", util.BreakerSettings{
		MaxRequests:  cfg.Catalog.BreakerMaxRequests,
		Interval:     cfg.Catalog.BreakerInterval,
		Timeout:      cfg.Catalog.BreakerTimeout,
		MinRequests:  cfg.Catalog.BreakerMinRequests,
		FailureRatio: cfg.Catalog.BreakerFailureRatio,
	})
	reconciler := reconcile.New(reconcile.NewBreakerCatalog(db, breaker))

	catalogService := service.NewCatalogService(db)
	cartService := service.NewCartService(carts)
	orderService := service.NewOrderService(db, reconciler, publisher, redisClient, cfg.Orders.IdempotencyTTL)

	var provider auth.Provider
	switch cfg.Auth.Mode {
	case config.AuthModeHeader:
		logger.Warn("Trusting identity headers from the gateway",
			zap.String("user_header", auth.HeaderUserID),
			zap.String("role_header", auth.HeaderUserRole))
		provider = auth.NewHeaderProvider()
	default:
		provider = auth.NewRemoteProvider(cfg.Auth.ServiceURL, cfg.Auth.Timeout)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var cartWorker *worker.CartWorker
	if cfg.Kafka.Enabled && cfg.Cart.ClearOnOrder {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		cartWorker = worker.NewCartWorker(consumer, carts)
		go func() {
			if err := cartWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Cart worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(catalogService, cartService, orderService, provider, cfg.Server.CORSOrigins,
		api.ReadinessCheck{Name: cfg.Store.Driver, Ping: db.Ping},
		api.ReadinessCheck{Name: "redis", Ping: redisClient.Ping},
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if cartWorker != nil {
		if err := cartWorker.Stop(); err != nil {
			logger.Error("Error stopping cart worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

func openBackend(cfg *config.Config) (backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Database.RunMigrations {
			if err := store.RunMigrations(cfg.Database.URL); err != nil {
				return nil, err
			}
		}
		return store.NewStore(cfg.Database.URL)
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongostore.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/database"
	"github.com/fjod/storefront/internal/health"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/internal/slips"
	"github.com/fjod/storefront/internal/storage"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// app collects what main opens so it can be closed in reverse order.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	closers []func() error
	checks  []health.Check

	mongo *mongo.Database
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to close resource", zap.Error(err))
		}
	}
}

func main() {
	dotenvErr := config.LoadDotEnv()

	log, err := logger.New(config.Environment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if dotenvErr != nil {
		log.Warn("could not read .env file", zap.Error(dotenvErr))
	}

	cfg := config.Load(log)
	if cfg.IsProduction() && (cfg.SessionSecret == "dev-session-secret-change-me" || cfg.JWTSecret == "dev-jwt-secret-change-me") {
		log.Fatal("SESSION_SECRET and JWT_SECRET must be set in production")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &app{cfg: cfg, log: log}
	defer a.close()

	cartStorage, err := a.cartStorage(ctx)
	if err != nil {
		log.Fatal("failed to set up cart storage", zap.Error(err))
	}
	products, err := a.catalog(ctx)
	if err != nil {
		log.Fatal("failed to set up catalog", zap.Error(err))
	}
	orderService, err := a.orders(ctx)
	if err != nil {
		log.Fatal("failed to set up orders", zap.Error(err))
	}
	users, err := a.identity(ctx)
	if err != nil {
		log.Fatal("failed to set up identity", zap.Error(err))
	}
	slipStore, err := a.slips(ctx)
	if err != nil {
		log.Fatal("failed to set up slip storage", zap.Error(err))
	}
	events := a.events()

	opts := checkout.DefaultOptions()
	opts.OrderTimeout = cfg.OrderTimeout

	manager := session.NewManager(session.Config{
		Storage:  cartStorage,
		Orders:   orderService,
		Events:   events,
		Checkout: opts,
		IdleTTL:  cfg.SessionIdleTTL,
		Logger:   log,
	})
	a.onClose(manager.Close)

	router := h.NewRouter(h.Deps{
		Logger:         log,
		Catalog:        products,
		Orders:         orderService,
		Tracker:        orders.NewTracker(orderService, log),
		Auth:           identity.NewService(users, identity.NewTokens(cfg.JWTSecret, identity.DefaultTokenTTL)),
		Sessions:       manager,
		Slips:          slipStore,
		Pricing:        opts.Pricing,
		Cookies:        h.NewCookieStore(cfg.SessionSecret, cfg.IsProduction()),
		PublicBaseURL:  cfg.PublicBaseURL,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	healthServer := health.NewServer(log, a.checks...)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}

	runCtx, stopChecks := context.WithCancel(context.Background())
	defer stopChecks()
	go healthServer.Run(runCtx, health.DefaultInterval)

	go func() {
		log.Info("health service listening", zap.String("port", cfg.GRPCPort))
		if err := healthServer.Serve(lis); err != nil {
			log.Error("health service stopped", zap.Error(err))
		}
	}()

	go func() {
		log.Info("storefront listening",
			zap.String("port", cfg.HTTPPort),
			zap.String("backend", cfg.Backend),
			zap.String("catalog", cfg.CatalogBackend),
			zap.String("cart_storage", cfg.CartStorage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stopChecks()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	healthServer.Stop()

	log.Info("server exited")
}

func (a *app) cartStorage(ctx context.Context) (storage.CartStorage, error) {
	if a.cfg.CartStorage != "redis" {
		return storage.NewMemoryStorage(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       0,
	})
	a.onClose(client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	a.log.Info("connected to redis", zap.String("addr", a.cfg.RedisAddr))

	a.checks = append(a.checks, health.Check{Name: "redis", Ping: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}})
	return storage.NewRedisStorage(client, a.cfg.CartTTL), nil
}

func (a *app) mongoDB(ctx context.Context) (*mongo.Database, error) {
	if a.mongo != nil {
		return a.mongo, nil
	}
	db, err := database.ConnectMongoDB(ctx, a.cfg.MongoURI, a.cfg.MongoDBName)
	if err != nil {
		return nil, err
	}
	a.log.Info("connected to mongodb", zap.String("database", a.cfg.MongoDBName))

	a.onClose(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.Client().Disconnect(ctx)
	})
	a.checks = append(a.checks, health.Check{Name: "mongodb", Ping: func(ctx context.Context) error {
		return db.Client().Ping(ctx, nil)
	}})
	a.mongo = db
	return db, nil
}

func (a *app) catalog(ctx context.Context) (catalog.Provider, error) {
	switch a.cfg.CatalogBackend {
	case "mongo":
		db, err := a.mongoDB(ctx)
		if err != nil {
			return nil, err
		}
		products := catalog.NewMongo(db)
		if err := products.CreateIndexes(ctx); err != nil {
			return nil, err
		}
		if err := products.Seed(ctx, catalog.DefaultProducts()); err != nil {
			return nil, err
		}
		return products, nil
	case "sqlite":
		products, err := catalog.NewSQLite(a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.onClose(products.Close)
		if err := products.RunMigrations(); err != nil {
			return nil, err
		}
		a.log.Info("catalog migrations applied", zap.String("path", a.cfg.SQLitePath))
		return products, nil
	default:
		return catalog.NewMemory(catalog.DefaultProducts()), nil
	}
}

func (a *app) orders(ctx context.Context) (orders.Service, error) {
	if a.cfg.Backend != config.BackendRemote {
		return orders.NewMemory(orders.SampleOrders(identity.DemoUserID, catalog.DefaultProducts())), nil
	}

	db, err := database.OpenPostgres(ctx, database.Credentials{
		Host:     a.cfg.DBHost,
		Port:     a.cfg.DBPort,
		User:     a.cfg.DBUser,
		Password: a.cfg.DBPassword,
		DBName:   a.cfg.DBName,
	})
	if err != nil {
		return nil, err
	}
	repo := orders.NewPostgres(db)
	a.onClose(repo.Close)
	if err := repo.RunMigrations(); err != nil {
		return nil, err
	}
	a.log.Info("connected to postgres", zap.String("host", a.cfg.DBHost), zap.String("database", a.cfg.DBName))

	a.checks = append(a.checks, health.Check{Name: "postgres", Ping: db.PingContext})

	opts := orders.DefaultGuardOptions()
	opts.Timeout = a.cfg.OrderTimeout
	opts.Logger = a.log
	return orders.NewGuarded(repo, opts), nil
}

func (a *app) identity(ctx context.Context) (identity.Provider, error) {
	if a.cfg.Backend != config.BackendRemote {
		return identity.NewMock()
	}
	db, err := a.mongoDB(ctx)
	if err != nil {
		return nil, err
	}
	users := identity.NewMongo(db)
	if err := users.CreateIndexes(ctx); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *app) slips(ctx context.Context) (slips.Store, error) {
	if a.cfg.MinIOEndpoint == "" {
		return slips.NewMemory(), nil
	}
	store, err := slips.NewMinIO(ctx, slips.MinIOConfig{
		Endpoint:  a.cfg.MinIOEndpoint,
		AccessKey: a.cfg.MinIOAccessKey,
		SecretKey: a.cfg.MinIOSecretKey,
		Bucket:    a.cfg.MinIOBucket,
		UseSSL:    a.cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}
	a.log.Info("connected to minio", zap.String("endpoint", a.cfg.MinIOEndpoint), zap.String("bucket", a.cfg.MinIOBucket))
	return store, nil
}

type eventPublisher interface {
	checkout.EventPublisher
	io.Closer
}

func (a *app) events() eventPublisher {
	if len(a.cfg.KafkaBrokers) == 0 {
		return publisher.Nop{}
	}
	events := publisher.NewOrderEvents(a.cfg.KafkaBrokers...)
	a.onClose(events.Close)
	a.log.Info("publishing order events", zap.Strings("brokers", a.cfg.KafkaBrokers))
	return events
}

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/catalog/internal/catalog"
	"github.com/MrSnakeDoc/catalog/internal/config"
	"github.com/MrSnakeDoc/catalog/internal/httpserver"
	"github.com/MrSnakeDoc/catalog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/catalog/internal/logger"
	"github.com/MrSnakeDoc/catalog/internal/postal"
	"github.com/MrSnakeDoc/catalog/internal/redis"
	"github.com/MrSnakeDoc/catalog/internal/scheduler"
	"github.com/MrSnakeDoc/catalog/internal/sources/reference"
	"github.com/MrSnakeDoc/catalog/internal/store/memstore"
	redisstore "github.com/MrSnakeDoc/catalog/internal/store/redis"
	"github.com/MrSnakeDoc/catalog/internal/typecache"
	"github.com/MrSnakeDoc/catalog/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.ReferenceReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Reference data is required - fail fast if it does not load
	data, err := loadReference(cfg.ReferenceFile)
	if err != nil {
		loggerClient.Errorf("Failed to load reference data: %v", err)
		os.Exit(1)
	}

	types, err := typecache.New(data.Taxonomy)
	if err != nil {
		loggerClient.Errorf("Failed to build type cache: %v", err)
		os.Exit(1)
	}

	store, err := memstore.New()
	if err != nil {
		loggerClient.Errorf("Failed to create store: %v", err)
		os.Exit(1)
	}

	// Redis is the optional shared tier of the postal lookups.
	var (
		redisClient *goredis.Client
		remote      postal.RemoteCache
		publisher   scheduler.ReferencePublisher
		shared      deps.SharedTier
	)
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		rs := redisstore.NewStore(redisClient, cfg.PostalCacheTTL)
		remote = rs
		publisher = rs
		shared = rs
		loggerClient.Info("Redis initialized successfully")
	} else {
		loggerClient.Info("redis not configured, postal lookups use the in-process cache only")
	}

	lookup := postal.New(data.PostalCodes, data.Municipalities, remote, loggerClient)

	reloader := scheduler.NewReferenceReloader(
		cfg.ReferenceFile,
		types,
		lookup,
		publisher,
		loggerClient,
		cfg.ReloadInterval,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Build:           version.Current(),
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateBurst:       cfg.RateBurst,
		RatePerMin:      cfg.RatePerMin,
		DefaultPageSize: cfg.PageSize,
		Catalog:         catalog.New(store, types, lookup, loggerClient),
		SharedTier:      shared,
		ReferenceCounts: map[string]int{
			"types":          types.Count(),
			"postal_codes":   len(data.PostalCodes),
			"municipalities": len(data.Municipalities),
		},
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
	}
}

func loadReference(path string) (*reference.Data, error) {
	raw, err := reference.NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return reference.NewMapper().Map(raw)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting catalog %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("catalog %s", version.Current())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Push reference data to redis and schedule reloads
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reference reloader: %w", err)
	}
	a.logger.Info("reference reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ catalog stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

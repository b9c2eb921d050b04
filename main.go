package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/patrick-ksn/dms/handlers"
	"github.com/patrick-ksn/dms/internal/author"
	"github.com/patrick-ksn/dms/internal/cache"
	"github.com/patrick-ksn/dms/internal/config"
	"github.com/patrick-ksn/dms/internal/document"
	"github.com/patrick-ksn/dms/internal/messaging"
	"github.com/patrick-ksn/dms/internal/store"
	"github.com/patrick-ksn/dms/pkg/logger"
	"github.com/patrick-ksn/dms/pkg/metrics"
	"github.com/patrick-ksn/dms/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v nats=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.NATS.URL != "")

	ctx := context.Background()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	// Storage: MongoDB when configured, in-memory otherwise (dev/test).
	var st store.Store
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = store.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = mongoClient.Disconnect(ctx) }()
		st = store.NewMongoStore(mongoClient, cfg.MongoDB.Database)
		logger.Infof("using MongoDB store: %s", cfg.MongoDB.Database)
	} else {
		st = store.NewMemoryStore()
		logger.Warnf("MONGODB_URI not set, using in-memory store")
	}

	// Caches: Redis when configured, in-memory otherwise.
	var redisClient *redis.Client
	var authorsCache, documentsCache cache.Cache
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		}
		defer func() { _ = redisClient.Close() }()
		authorsCache = cache.NewRedisCache(redisClient, "authors", cfg.Cache.RedisTTL)
		documentsCache = cache.NewRedisCache(redisClient, "documents", cfg.Cache.RedisTTL)
		logger.Infof("using Redis caches: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	} else {
		authorsCache = cache.NewMemoryCache("authors")
		documentsCache = cache.NewMemoryCache("documents")
		logger.Warnf("REDIS_HOST not set, using in-memory caches")
	}

	sweeper := cache.NewSweeper(cfg.Cache.EvictInterval, authorsCache, documentsCache)
	sweeper.Start()
	defer sweeper.Stop()

	authorSvc := author.NewService(st, authorsCache, documentsCache)
	documentSvc := document.NewService(st, documentsCache)

	// Author-delete queue: optional, routes still work without it except the
	// enqueue endpoint.
	var sender handlers.DeleteCommandSender
	natsReady := false
	if cfg.NATS.URL != "" {
		queueCfg := messaging.QueueConfig{
			Stream:     cfg.NATS.Stream,
			Subject:    cfg.NATS.Subject,
			Durable:    cfg.NATS.Durable,
			MaxDeliver: cfg.NATS.MaxDeliver,
			RetryDelay: cfg.NATS.RetryDelay,
		}
		nc, js, err := messaging.Connect(cfg.NATS.URL, "dms-api")
		if err != nil {
			logger.Fatalf("failed to connect to NATS (%s): %v", cfg.NATS.URL, err)
		}
		defer nc.Close()
		stream, err := messaging.EnsureStream(ctx, js, queueCfg)
		if err != nil {
			logger.Fatalf("failed to ensure stream %s: %v", queueCfg.Stream, err)
		}
		sender = messaging.NewPublisher(js, queueCfg.Subject)
		if cfg.NATS.ConsumeQueue {
			consumer := messaging.NewConsumer(authorSvc, queueCfg)
			if err := consumer.Start(ctx, stream); err != nil {
				logger.Fatalf("failed to start queue consumer: %v", err)
			}
			defer consumer.Stop()
		}
		natsReady = true
		logger.Infof("author delete queue ready on %s (stream=%s)", cfg.NATS.URL, queueCfg.Stream)
	} else {
		logger.Warnf("NATS_URL not set, author delete queue disabled")
	}

	handlers.NewAuthorHandler(authorSvc, sender).Register(r)
	handlers.NewDocumentHandler(documentSvc).Register(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the configured dependencies answered at startup
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{
			"store": true,
			"cache": true,
			"queue": cfg.NATS.URL == "" || natsReady,
		}
		if mongoClient != nil {
			deps["store"] = mongoClient.Ping(c.Request.Context(), nil) == nil
		}
		if redisClient != nil {
			deps["cache"] = redisClient.Ping(c.Request.Context()).Err() == nil
		}
		for _, ok := range deps {
			if !ok {
				ready = false
			}
		}
		status := http.StatusOK
		body := gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status = http.StatusServiceUnavailable
			body["status"] = "not_ready"
		}
		c.JSON(status, body)
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting document service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}

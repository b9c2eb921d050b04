// Standalone author-delete queue worker. Runs the same consumer the API
// embeds, for deployments that scale delete processing separately; point it
// at the same MongoDB and Redis as the API so deletes and cache evictions
// land in shared state.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/patrick-ksn/dms/internal/author"
	"github.com/patrick-ksn/dms/internal/cache"
	"github.com/patrick-ksn/dms/internal/config"
	"github.com/patrick-ksn/dms/internal/messaging"
	"github.com/patrick-ksn/dms/internal/store"
	"github.com/patrick-ksn/dms/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.NATS.URL == "" {
		logger.Fatalf("NATS_URL is required for the queue worker")
	}

	ctx := context.Background()

	var st store.Store
	if cfg.MongoDB.URI != "" {
		client, err := store.Connect(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			logger.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		st = store.NewMongoStore(client, cfg.MongoDB.Database)
	} else {
		// a memory store is only useful for local smoke tests: deletes won't
		// be visible to a separately-run API process
		st = store.NewMemoryStore()
		logger.Warnf("MONGODB_URI not set, using in-memory store")
	}

	var authorsCache, documentsCache cache.Cache
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		}
		defer func() { _ = client.Close() }()
		authorsCache = cache.NewRedisCache(client, "authors", cfg.Cache.RedisTTL)
		documentsCache = cache.NewRedisCache(client, "documents", cfg.Cache.RedisTTL)
	} else {
		authorsCache = cache.NewMemoryCache("authors")
		documentsCache = cache.NewMemoryCache("documents")
		logger.Warnf("REDIS_HOST not set, using in-memory caches")
	}

	svc := author.NewService(st, authorsCache, documentsCache)

	queueCfg := messaging.QueueConfig{
		Stream:     cfg.NATS.Stream,
		Subject:    cfg.NATS.Subject,
		Durable:    cfg.NATS.Durable,
		MaxDeliver: cfg.NATS.MaxDeliver,
		RetryDelay: cfg.NATS.RetryDelay,
	}
	nc, js, err := messaging.Connect(cfg.NATS.URL, "dms-consumer")
	if err != nil {
		logger.Fatalf("failed to connect to NATS (%s): %v", cfg.NATS.URL, err)
	}
	defer nc.Close()

	streamCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	stream, err := messaging.EnsureStream(streamCtx, js, queueCfg)
	cancel()
	if err != nil {
		logger.Fatalf("failed to ensure stream %s: %v", queueCfg.Stream, err)
	}

	consumer := messaging.NewConsumer(svc, queueCfg)
	if err := consumer.Start(ctx, stream); err != nil {
		logger.Fatalf("failed to start queue consumer: %v", err)
	}
	defer consumer.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")
}

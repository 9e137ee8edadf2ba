// Package main 用户画像索引执行器入口（profile-indexer）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"book-ai-api/internal/application/profile"
	"book-ai-api/internal/config"
	"book-ai-api/internal/infrastructure/embedding"
	"book-ai-api/internal/infrastructure/messaging"
	"book-ai-api/internal/infrastructure/persistence/milvus"
	"book-ai-api/internal/infrastructure/persistence/postgres"
	"book-ai-api/internal/infrastructure/persistence/redis"
	"book-ai-api/pkg/logger"
	"book-ai-api/pkg/tracer"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "profile-indexer",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to init milvus", err)
	}
	defer func() { _ = milvusClient.Close() }()

	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to init embedder", err)
	}

	userRepo := postgres.NewUserRepository(pgClient)
	vectorRepo := milvus.NewRepository(milvusClient)
	cache := redis.NewCache(redisClient)

	indexer := profile.NewIndexer(userRepo, embedder, vectorRepo, cache)

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamProfileIndex,
		Group:        messaging.ConsumerGroupProfileIndexer,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.MsgTypeProfileReindex, func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.ProfileReindexMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return indexer.Reindex(msgCtx, payload.UserID)
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(ctx, 100)

	log := logger.FromContext(ctx)
	log.Info("profile-indexer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("profile-indexer shutting down")
	consumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "indexer"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

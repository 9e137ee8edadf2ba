//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"book-ai-api/internal/application/assistant"
	"book-ai-api/internal/config"
	"book-ai-api/internal/domain/repository"
	"book-ai-api/internal/infrastructure/llm"
	"book-ai-api/internal/infrastructure/messaging"
	"book-ai-api/internal/infrastructure/persistence/milvus"
	"book-ai-api/internal/infrastructure/persistence/postgres"
	"book-ai-api/internal/infrastructure/persistence/redis"
	"book-ai-api/internal/interfaces/http/handler"
	"book-ai-api/internal/interfaces/http/middleware"
	"book-ai-api/internal/interfaces/http/router"
)

// DataLayer 数据层依赖容器（bootstrap 等离线任务使用）
type DataLayer struct {
	// PostgreSQL
	PgClient  *postgres.Client
	TxManager *postgres.TxManager
	UserRepo  *postgres.UserRepository
	GenreRepo *postgres.GenreRepository

	// Redis
	RedisClient *redis.Client
	Cache       *redis.Cache
	RateLimiter *redis.RateLimiter

	// Milvus
	MilvusClient *milvus.Client
	VectorRepo   *milvus.Repository
}

// InitializeDataLayer 初始化数据层
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		MilvusSet,
		wire.Struct(new(DataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		MilvusSet,
		LLMSet,
		AssistantSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewGenreRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.GenreRepository), new(*postgres.GenreRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// MilvusSet Milvus 提供者集合
var MilvusSet = wire.NewSet(
	ProvideMilvusClient,
	milvus.NewRepository,
)

// LLMSet 大模型接入层提供者集合
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	llm.NewCompleter,
	wire.Bind(new(assistant.CompletionStreamer), new(*llm.Completer)),
)

// AssistantSet 问答引擎提供者集合
var AssistantSet = wire.NewSet(
	ProvideEngineOptions,
	assistant.NewEngine,
	wire.Bind(new(assistant.EmbeddingStore), new(*milvus.Repository)),
	wire.Bind(new(assistant.BookSearcher), new(*milvus.Repository)),
	wire.Bind(new(handler.QueryAnswerer), new(*assistant.Engine)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideAuthConfig,
	handler.NewHealthHandler,
	handler.NewAuthHandler,
	handler.NewUserHandler,
	handler.NewAssistantHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	return messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))
}

// ProvideMilvusClient 提供 Milvus 客户端
func ProvideMilvusClient(ctx context.Context, cfg *config.Config) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideEngineOptions 提供问答引擎参数
func ProvideEngineOptions(cfg *config.Config) assistant.Options {
	return assistant.Options{
		ContentTopK:        cfg.Assistant.ContentTopK,
		DescriptionTopK:    cfg.Assistant.DescriptionTopK,
		MaxRecommendations: cfg.Assistant.MaxRecommendations,
		MaxAnswerTokens:    cfg.Assistant.MaxAnswerTokens,
	}
}

// ProvideAuthConfig 提供认证配置
func ProvideAuthConfig(cfg *config.Config) middleware.AuthConfig {
	return middleware.AuthConfig{
		Secret:    cfg.Security.JWT.Secret,
		Issuer:    cfg.Security.JWT.Issuer,
		SkipPaths: middleware.DefaultSkipPaths,
		Enabled:   cfg.Security.JWT.Enabled,
	}
}

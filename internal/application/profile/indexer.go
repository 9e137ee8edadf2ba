// Package profile 提供用户画像向量的离线构建
package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"book-ai-api/internal/domain/entity"
	"book-ai-api/internal/domain/repository"
	"book-ai-api/pkg/logger"
)

var tracer = otel.Tracer("application.profile")

// ProfileStore 画像向量写入端口
type ProfileStore interface {
	UpsertUserEmbedding(ctx context.Context, profileID int64, vector []float32) error
}

// StatusInvalidator 推荐就绪状态缓存失效端口
type StatusInvalidator interface {
	InvalidateRecommendationStatus(ctx context.Context, userID string) error
}

// Indexer 用户画像索引器
//
// 消费 profile_reindex 任务：根据用户的题材偏好构建画像文本，
// 嵌入为向量后写入向量库，最后将用户标记为推荐就绪。
type Indexer struct {
	users    repository.UserRepository
	embedder embedding.Embedder
	store    ProfileStore
	cache    StatusInvalidator
}

// NewIndexer 创建画像索引器
func NewIndexer(users repository.UserRepository, embedder embedding.Embedder, store ProfileStore, cache StatusInvalidator) *Indexer {
	return &Indexer{
		users:    users,
		embedder: embedder,
		store:    store,
		cache:    cache,
	}
}

// Enabled 依赖是否齐备
func (i *Indexer) Enabled() bool {
	return i != nil && i.users != nil && i.embedder != nil && i.store != nil
}

// Reindex 重建单个用户的画像向量
//
// 用户不存在时静默返回 nil：注册事务回滚后残留的消息不值得重试。
func (i *Indexer) Reindex(ctx context.Context, userID string) error {
	if !i.Enabled() {
		return fmt.Errorf("profile indexer is not fully configured")
	}

	ctx, span := tracer.Start(ctx, "profile.Indexer.Reindex",
		trace.WithAttributes(attribute.String("user_id", userID)))
	defer span.End()

	user, err := i.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		logger.Warn(ctx, "skipping reindex for unknown user", "user_id", userID)
		return nil
	}

	text := buildProfileText(user)
	vectors, err := i.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to embed profile text: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("embedder returned no vector for user %s", userID)
	}

	vector := make([]float32, len(vectors[0]))
	for idx, v := range vectors[0] {
		vector[idx] = float32(v)
	}

	if err := i.store.UpsertUserEmbedding(ctx, user.ProfileID, vector); err != nil {
		span.RecordError(err)
		return err
	}

	if err := i.users.SetRecommendationsReady(ctx, user.ID, true); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark recommendations ready: %w", err)
	}

	if i.cache != nil {
		if err := i.cache.InvalidateRecommendationStatus(ctx, user.ID); err != nil {
			logger.Warn(ctx, "failed to invalidate recommendation status cache", "user_id", user.ID, "error", err.Error())
		}
	}

	logger.Info(ctx, "user profile reindexed", "user_id", user.ID, "profile_id", user.ProfileID)
	return nil
}

// buildProfileText 将用户偏好拼成嵌入文本
func buildProfileText(user *entity.User) string {
	var sb strings.Builder
	sb.WriteString("Reader profile")
	if user.Name != "" {
		sb.WriteString(" for ")
		sb.WriteString(user.Name)
	}
	sb.WriteString(".")

	genres := user.GenreNames()
	if len(genres) > 0 {
		sb.WriteString(" Favorite genres: ")
		sb.WriteString(strings.Join(genres, ", "))
		sb.WriteString(".")
	}
	return sb.String()
}

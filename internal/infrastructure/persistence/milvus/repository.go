// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"sort"
	"time"

	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"book-ai-api/internal/application/assistant"
	"book-ai-api/internal/domain/entity"
	"book-ai-api/pkg/metrics"
)

// Repository 向量检索仓储
//
// 同时充当 assistant.EmbeddingStore 与 assistant.BookSearcher。
type Repository struct {
	client *Client
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *milvusentity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, milvusentity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 在指定向量字段上创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection, field string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.String("field", field),
		))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := milvusentity.NewIndexHNSW(
		milvusentity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, field, idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// GetUserEmbedding 按用户画像 ID 查询画像向量
// 画像不存在时返回 (nil, nil)，由调用方决定如何处理
func (r *Repository) GetUserEmbedding(ctx context.Context, profileID int64) ([]float32, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.GetUserEmbedding",
		trace.WithAttributes(attribute.Int64("profile_id", profileID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionUserProfiles)

	rs, err := r.client.milvus.Query(ctx,
		collName,
		nil,
		fmt.Sprintf("user_id == %d", profileID),
		[]string{"vector"},
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query user profile: %w", err)
	}

	vecCol, ok := rs.GetColumn("vector").(*milvusentity.ColumnFloatVector)
	if !ok || vecCol.Len() == 0 {
		return nil, nil
	}
	return vecCol.Data()[0], nil
}

// SearchBooks 对两个向量字段分别执行近邻检索并合并结果
//
// 同一查询向量在内容向量与描述向量字段上各召回一批，
// 按图书 ID 去重（保留较高得分）后按得分降序返回。
func (r *Repository) SearchBooks(ctx context.Context, params *assistant.BookSearchParams) ([]*entity.BookHit, int64, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, 0, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchBooks",
		trace.WithAttributes(
			attribute.Int("content_top_k", params.ContentTopK),
			attribute.Int("description_top_k", params.DescriptionTopK),
		))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.VectorSearchDuration.WithLabelValues(CollectionBookDocuments).Observe(time.Since(start).Seconds())
	}()

	contentHits, err := r.searchField(ctx, FieldContentVector, params.Vector, params.ContentTopK)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	descriptionHits, err := r.searchField(ctx, FieldDescriptionVector, params.Vector, params.DescriptionTopK)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	merged := mergeHits(contentHits, descriptionHits)
	span.SetAttributes(attribute.Int("result_count", len(merged)))
	return merged, int64(len(merged)), nil
}

// searchField 在单个向量字段上执行一次 ANN 检索
func (r *Repository) searchField(ctx context.Context, field string, vector []float32, topK int) ([]*entity.BookHit, error) {
	if topK <= 0 {
		return nil, nil
	}

	collName := r.client.CollectionName(CollectionBookDocuments)

	sp, err := milvusentity.NewIndexHNSWSearchParam(128)
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"id", "title", "author", "description"},
		[]milvusentity.Vector{milvusentity.FloatVector(vector)},
		field,
		milvusentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", field, err)
	}

	var hits []*entity.BookHit
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			hit := &entity.BookHit{
				Score: result.Scores[i],
			}
			if idCol, ok := result.Fields.GetColumn("id").(*milvusentity.ColumnInt64); ok {
				hit.ID = idCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*milvusentity.ColumnVarChar); ok {
				hit.Title = titleCol.Data()[i]
			}
			if authorCol, ok := result.Fields.GetColumn("author").(*milvusentity.ColumnVarChar); ok {
				hit.Author = authorCol.Data()[i]
			}
			if descCol, ok := result.Fields.GetColumn("description").(*milvusentity.ColumnVarChar); ok {
				hit.Description = descCol.Data()[i]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// mergeHits 合并两个字段的召回结果
// 按 ID 去重，重复命中保留较高得分；结果按得分降序，得分相同按 ID 升序保证稳定
func mergeHits(lists ...[]*entity.BookHit) []*entity.BookHit {
	byID := make(map[int64]*entity.BookHit)
	for _, list := range lists {
		for _, h := range list {
			if h == nil {
				continue
			}
			if prev, ok := byID[h.ID]; !ok || h.Score > prev.Score {
				byID[h.ID] = h
			}
		}
	}

	merged := make([]*entity.BookHit, 0, len(byID))
	for _, h := range byID {
		merged = append(merged, h)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// UpsertUserEmbedding 写入或覆盖用户画像向量
//
// 由 profile-indexer 在注册或偏好变更后调用，user_id 为画像主键。
func (r *Repository) UpsertUserEmbedding(ctx context.Context, profileID int64, vector []float32) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertUserEmbedding",
		trace.WithAttributes(attribute.Int64("profile_id", profileID)))
	defer span.End()

	if len(vector) != VectorDimension {
		return fmt.Errorf("unexpected embedding dimension: got %d, want %d", len(vector), VectorDimension)
	}

	collName := r.client.CollectionName(CollectionUserProfiles)

	idCol := milvusentity.NewColumnInt64("user_id", []int64{profileID})
	vectorCol := milvusentity.NewColumnFloatVector("vector", VectorDimension, [][]float32{vector})

	if _, err := r.client.milvus.Upsert(ctx, collName, "", idCol, vectorCol); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert user embedding: %w", err)
	}
	return nil
}

// EnsureCollections 确保图书与画像集合及索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureCollections(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionBookDocuments)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, BookDocumentsSchema()); err != nil {
			return err
		}
		if err := r.CreateIndex(ctx, CollectionBookDocuments, FieldContentVector); err != nil {
			return err
		}
		if err := r.CreateIndex(ctx, CollectionBookDocuments, FieldDescriptionVector); err != nil {
			return err
		}
	}
	if err := r.client.LoadCollection(ctx, CollectionBookDocuments); err != nil {
		return err
	}

	exists, err = r.client.HasCollection(ctx, CollectionUserProfiles)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, UserProfilesSchema()); err != nil {
			return err
		}
	}
	return r.client.LoadCollection(ctx, CollectionUserProfiles)
}

// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"book-ai-api/internal/domain/entity"
)

// GenreRepository 题材标签仓储实现
type GenreRepository struct {
	client *Client
}

// NewGenreRepository 创建题材标签仓储
func NewGenreRepository(client *Client) *GenreRepository {
	return &GenreRepository{client: client}
}

// FindOrCreate 按名称查找题材，不存在则创建
func (r *GenreRepository) FindOrCreate(ctx context.Context, name string) (*entity.Genre, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.FindOrCreate")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var genre entity.Genre
	err := db.Where("name = ?", name).First(&genre).Error
	if err == nil {
		return &genre, nil
	}
	if err != gorm.ErrRecordNotFound {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find genre: %w", err)
	}

	genre = entity.Genre{ID: uuid.NewString(), Name: name}
	// 并发注册同名题材时以唯一索引兜底
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&genre)
	if res.Error != nil {
		span.RecordError(res.Error)
		return nil, fmt.Errorf("failed to create genre: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := db.Where("name = ?", name).First(&genre).Error; err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to reload genre: %w", err)
		}
	}
	return &genre, nil
}

// ListByUser 获取用户偏好的题材列表
func (r *GenreRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Genre, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var genres []*entity.Genre
	if err := db.
		Joins("JOIN users_genres ON users_genres.genre_id = genres.id").
		Where("users_genres.user_id = ?", userID).
		Order("genres.name").
		Find(&genres).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// ReplaceForUser 替换用户的题材偏好
func (r *GenreRepository) ReplaceForUser(ctx context.Context, userID string, genres []*entity.Genre) error {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.ReplaceForUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	user := entity.User{ID: userID}
	if err := db.Model(&user).Association("Genres").Replace(genres); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to replace genres: %w", err)
	}
	return nil
}

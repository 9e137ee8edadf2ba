// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"book-ai-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户
	Create(ctx context.Context, user *entity.User) error

	// GetByID 根据 ID 获取用户
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByProfileID 根据画像 ID 获取用户
	GetByProfileID(ctx context.Context, profileID int64) (*entity.User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update 更新用户
	Update(ctx context.Context, user *entity.User) error

	// UpdateLastLogin 更新最后登录时间
	UpdateLastLogin(ctx context.Context, id string) error

	// SetRecommendationsReady 更新推荐就绪标记
	SetRecommendationsReady(ctx context.Context, id string, ready bool) error

	// ExistsByEmail 检查邮箱是否存在
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// GenreRepository 题材标签仓储接口
type GenreRepository interface {
	// FindOrCreate 按名称查找题材，不存在则创建
	FindOrCreate(ctx context.Context, name string) (*entity.Genre, error)

	// ListByUser 获取用户偏好的题材列表
	ListByUser(ctx context.Context, userID string) ([]*entity.Genre, error)

	// ReplaceForUser 替换用户的题材偏好
	ReplaceForUser(ctx context.Context, userID string, genres []*entity.Genre) error
}

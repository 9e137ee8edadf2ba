// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"book-ai-api/internal/domain/entity"
)

// UserDTO 用户信息
type UserDTO struct {
	ID                   string     `json:"id"`
	ProfileID            int64      `json:"profile_id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	Genres               []string   `json:"genres"`
	RecommendationsReady bool       `json:"recommendations_ready"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ToUserDTO 将领域实体转换为 DTO
func ToUserDTO(u *entity.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                   u.ID,
		ProfileID:            u.ProfileID,
		Email:                u.Email,
		Name:                 u.Name,
		Genres:               u.GenreNames(),
		RecommendationsReady: u.RecommendationsReady,
		LastLoginAt:          u.LastLoginAt,
		CreatedAt:            u.CreatedAt,
	}
}

// RecommendationStatusResponse 推荐就绪状态响应
type RecommendationStatusResponse struct {
	Ready     bool      `json:"ready"`
	CheckedAt time.Time `json:"checked_at"`
}

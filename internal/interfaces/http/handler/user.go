// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"book-ai-api/internal/domain/repository"
	"book-ai-api/internal/infrastructure/persistence/redis"
	"book-ai-api/internal/interfaces/http/dto"
	"book-ai-api/internal/interfaces/http/middleware"
	"book-ai-api/pkg/logger"
)

// recommendationStatusTTL 推荐就绪状态缓存时长
const recommendationStatusTTL = 30 * time.Second

// UserHandler 用户处理器
type UserHandler struct {
	userRepo repository.UserRepository
	cache    *redis.Cache
}

// NewUserHandler 创建用户处理器
func NewUserHandler(userRepo repository.UserRepository, cache *redis.Cache) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		cache:    cache,
	}
}

// GetMe 获取当前用户信息
// @Summary 获取当前用户信息
// @Description 获取登录用户的详细资料
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} dto.Response[dto.UserDTO]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to get user", err)
		dto.InternalError(c, "failed to get user info")
		return
	}

	if user == nil {
		dto.NotFound(c, "user not found")
		return
	}

	dto.Success(c, dto.ToUserDTO(user))
}

// GetRecommendationStatus 查询当前用户的推荐是否就绪
// 状态短暂缓存，画像摄取完成后最多延迟一个 TTL 可见
// @Summary 查询推荐就绪状态
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.RecommendationStatusResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/me/recommendations-status [get]
func (h *UserHandler) GetRecommendationStatus(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)

	key := redis.BuildRecommendationStatusKey(userID)
	raw, err := h.cache.GetOrLoadSafe(ctx, key, recommendationStatusTTL, func() (interface{}, error) {
		user, err := h.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		ready := user != nil && user.RecommendationsReady
		return &dto.RecommendationStatusResponse{
			Ready:     ready,
			CheckedAt: time.Now().UTC(),
		}, nil
	})
	if err != nil {
		logger.Error(ctx, "failed to load recommendation status", err)
		dto.InternalError(c, "failed to check recommendation status")
		return
	}

	var resp dto.RecommendationStatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		logger.Error(ctx, "failed to decode cached status", err)
		dto.InternalError(c, "failed to check recommendation status")
		return
	}
	dto.Success(c, &resp)
}

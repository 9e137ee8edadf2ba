// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"book-ai-api/internal/domain/entity"
	"book-ai-api/internal/domain/repository"
	"book-ai-api/internal/interfaces/http/dto"
	"book-ai-api/internal/interfaces/http/middleware"
	"book-ai-api/pkg/logger"
)

// QueryAnswerer 问答引擎依赖
type QueryAnswerer interface {
	AnswerQuery(ctx context.Context, profileID int64, query string) (*entity.ChatTurn, error)
}

// AssistantHandler 问答处理器
type AssistantHandler struct {
	engine   QueryAnswerer
	userRepo repository.UserRepository
}

// NewAssistantHandler 创建问答处理器
func NewAssistantHandler(engine QueryAnswerer, userRepo repository.UserRepository) *AssistantHandler {
	return &AssistantHandler{
		engine:   engine,
		userRepo: userRepo,
	}
}

// Ask 处理一次问答
// @Summary 图书问答
// @Description 推荐类查询走个性化检索，其余查询走模型问答
// @Tags Assistant
// @Accept json
// @Produce json
// @Param body body dto.AskRequest true "查询"
// @Success 200 {object} dto.Response[dto.AskResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/assistant/ask [post]
func (h *AssistantHandler) Ask(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	profileID, ok := h.resolveProfileID(c, req.UserID)
	if !ok {
		return
	}

	turn, err := h.engine.AnswerQuery(ctx, profileID, req.Query)
	if err != nil {
		logger.Error(ctx, "assistant query failed", err, "profile_id", profileID)
		dto.AppError(c, err)
		return
	}

	dto.Success(c, dto.ToAskResponse(turn))
}

// resolveProfileID 确定本次问答的画像 ID
// 请求体显式给出时使用之，否则回落到登录用户自己的画像
func (h *AssistantHandler) resolveProfileID(c *gin.Context, override *int64) (int64, bool) {
	if override != nil {
		return *override, true
	}

	ctx := c.Request.Context()
	userID := middleware.GetUserIDFromGin(c)
	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to resolve current user", err)
		dto.InternalError(c, "failed to resolve user")
		return 0, false
	}
	if user == nil {
		dto.NotFound(c, "user not found")
		return 0, false
	}
	return user.ProfileID, true
}

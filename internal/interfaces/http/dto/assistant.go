// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"book-ai-api/internal/domain/entity"
)

// AskRequest 问答请求
// UserID 可覆盖当前登录用户的画像 ID，省略时使用登录用户自身的画像
type AskRequest struct {
	Query  string `json:"query" binding:"required,max=2000"`
	UserID *int64 `json:"user_id" binding:"omitempty,gt=0"`
}

// AskResponse 问答响应
//
// Recommendations 使用指针以区分"无该字段"（通用问答）与
// "字段存在但为空数组"（推荐检索无命中）。
type AskResponse struct {
	Response        string                          `json:"response"`
	Recommendations *[]entity.RecommendationResult `json:"recommendations,omitempty"`
}

// ToAskResponse 将问答结果转换为响应
func ToAskResponse(turn *entity.ChatTurn) *AskResponse {
	if turn == nil {
		return nil
	}
	return &AskResponse{
		Response:        turn.Response,
		Recommendations: turn.Recommendations,
	}
}

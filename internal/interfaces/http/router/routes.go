// Package router 提供 HTTP 路由配置
package router

import (
	"book-ai-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	assistantHandler *handler.AssistantHandler,
) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.POST("/logout", authHandler.Logout)
	}

	// 用户管理
	users := v1.Group("/users")
	{
		users.GET("/me", userHandler.GetMe)
		users.GET("/me/recommendations-status", userHandler.GetRecommendationStatus)
	}

	// 图书问答
	assistant := v1.Group("/assistant")
	{
		assistant.POST("/ask", assistantHandler.Ask)
	}
}

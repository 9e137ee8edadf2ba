// Package middleware 提供 HTTP 中间件
package middleware

import "github.com/gin-gonic/gin"

// GetUserIDFromGin 从 Gin 上下文获取当前用户 ID
// 认证中间件放行后保证非空；匿名路径返回空字符串
func GetUserIDFromGin(c *gin.Context) string {
	return c.GetString("user_id")
}

package assistant

import (
	"strings"

	"book-ai-api/internal/domain/entity"
)

// routeKeyword 命中该关键字的查询走推荐检索路由
const routeKeyword = "recommendation"

// Classify 对查询文本做路由判定
// 大小写不敏感的子串匹配，关键字出现在任意位置都算命中
func Classify(query string) entity.Route {
	if strings.Contains(strings.ToLower(query), routeKeyword) {
		return entity.RouteRecommendation
	}
	return entity.RouteGeneral
}

package entity

// Route 查询路由类型
type Route string

const (
	// RouteRecommendation 推荐检索路由
	RouteRecommendation Route = "recommendation"
	// RouteGeneral 通用问答路由
	RouteGeneral Route = "general"
)

// RecommendationResult 单条图书推荐
type RecommendationResult struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// BookHit 向量检索命中，含相似度得分，供排序与截断使用
type BookHit struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Score       float32 `json:"score"`
}

// Result 转换为面向用户的推荐条目
func (h BookHit) Result() RecommendationResult {
	return RecommendationResult{
		Title:       h.Title,
		Author:      h.Author,
		Description: h.Description,
	}
}

// ChatTurn 一次问答的结果
//
// Recommendations 仅在推荐路由下非 nil；空切片表示检索成功但无命中。
type ChatTurn struct {
	Route           Route                   `json:"route"`
	Response        string                  `json:"response"`
	Recommendations *[]RecommendationResult `json:"recommendations,omitempty"`
}

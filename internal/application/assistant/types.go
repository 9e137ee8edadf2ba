package assistant

import (
	"context"

	"book-ai-api/internal/domain/entity"
)

// EmbeddingStore 定义应用层对“用户画像向量存储”的最小依赖（port）
// 由基础设施层提供具体实现（例如 Milvus）
type EmbeddingStore interface {
	// GetUserEmbedding 返回用户画像向量；画像不存在时返回 (nil, nil)
	GetUserEmbedding(ctx context.Context, profileID int64) ([]float32, error)
}

// BookSearchParams 图书向量检索参数
type BookSearchParams struct {
	// Vector 查询向量，同时用于内容与描述两个向量字段
	Vector []float32
	// ContentTopK 内容向量字段的近邻数
	ContentTopK int
	// DescriptionTopK 描述向量字段的近邻数
	DescriptionTopK int
}

// BookSearcher 定义应用层对“图书向量检索”的最小依赖（port）
type BookSearcher interface {
	// SearchBooks 执行双字段近邻检索，返回按得分排序去重后的命中及总命中数
	SearchBooks(ctx context.Context, params *BookSearchParams) ([]*entity.BookHit, int64, error)
}

// CompletionRequest 通用问答生成请求
type CompletionRequest struct {
	System    string
	Query     string
	MaxTokens int
}

// DeltaStream 有限有序的增量文本流，Recv 以 io.EOF 表示正常结束
type DeltaStream interface {
	Recv() (string, error)
	Close()
}

// CompletionStreamer 定义应用层对“生成式补全”的最小依赖（port）
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, req *CompletionRequest) (DeltaStream, error)
}

// Package assistant 实现问答引擎：路由判定、混合检索编排与流式补全
package assistant

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	apperrors "book-ai-api/pkg/errors"
	"book-ai-api/pkg/logger"
	"book-ai-api/pkg/metrics"

	"book-ai-api/internal/domain/entity"
	"book-ai-api/internal/domain/repository"
)

var tracer = otel.Tracer("application.assistant")

// recommendationLeadIn 推荐路由的固定回复文案
const recommendationLeadIn = "Here are some personalized recommendations for you:"

// generalSystemPrompt 通用问答路由的系统提示词
const generalSystemPrompt = "You are a helpful assistant that answers questions about books and provides 5 personalized recommendations."

// Options 引擎参数
type Options struct {
	ContentTopK        int
	DescriptionTopK    int
	MaxRecommendations int
	MaxAnswerTokens    int
}

func (o Options) withDefaults() Options {
	if o.ContentTopK <= 0 {
		o.ContentTopK = 3
	}
	if o.DescriptionTopK <= 0 {
		o.DescriptionTopK = 2
	}
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = 5
	}
	if o.MaxAnswerTokens <= 0 {
		o.MaxAnswerTokens = 550
	}
	return o
}

// Engine 问答引擎
//
// 每次 AnswerQuery 调用都是无状态的：按路由编排一次检索或一次补全，
// 不重试、不缓存，首个失败即终止。
type Engine struct {
	users      repository.UserRepository
	genres     repository.GenreRepository
	embeddings EmbeddingStore
	searcher   BookSearcher
	completer  CompletionStreamer
	opts       Options
}

// NewEngine 创建问答引擎
func NewEngine(
	users repository.UserRepository,
	genres repository.GenreRepository,
	embeddings EmbeddingStore,
	searcher BookSearcher,
	completer CompletionStreamer,
	opts Options,
) *Engine {
	return &Engine{
		users:      users,
		genres:     genres,
		embeddings: embeddings,
		searcher:   searcher,
		completer:  completer,
		opts:       opts.withDefaults(),
	}
}

// AnswerQuery 处理一次用户查询
//
// 查询文本包含推荐关键字时走检索路由，否则走流式补全路由。
// 返回的 ChatTurn.Recommendations 仅在检索路由下非 nil。
func (e *Engine) AnswerQuery(ctx context.Context, profileID int64, query string) (*entity.ChatTurn, error) {
	ctx, span := tracer.Start(ctx, "assistant.Engine.AnswerQuery")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "query is required")
	}
	if profileID <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "user id is required")
	}

	route := Classify(query)
	start := time.Now()

	var (
		turn *entity.ChatTurn
		err  error
	)
	switch route {
	case entity.RouteRecommendation:
		turn, err = e.recommend(ctx, profileID)
	default:
		turn, err = e.answer(ctx, query)
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AssistantQueriesTotal.WithLabelValues(string(route), status).Inc()
	metrics.AssistantQueryDuration.WithLabelValues(string(route)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return turn, nil
}

// recommend 推荐检索路由
func (e *Engine) recommend(ctx context.Context, profileID int64) (*entity.ChatTurn, error) {
	ctx, span := tracer.Start(ctx, "assistant.Engine.recommend")
	defer span.End()

	user, err := e.users.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user profile")
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	// 题材偏好目前只作为上下文信号记录，不参与检索
	genres, err := e.genres.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user genres")
	}
	logger.Debug(ctx, "loaded genre preferences",
		"user_id", user.ID,
		"genres", genreNames(genres),
	)

	vector, err := e.embeddings.GetUserEmbedding(ctx, profileID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to load user embedding")
	}
	if len(vector) == 0 {
		return nil, apperrors.ErrEmbeddingMissing
	}

	hits, total, err := e.searcher.SearchBooks(ctx, &BookSearchParams{
		Vector:          vector,
		ContentTopK:     e.opts.ContentTopK,
		DescriptionTopK: e.opts.DescriptionTopK,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSearchFailed, "book search failed")
	}

	if len(hits) > e.opts.MaxRecommendations {
		hits = hits[:e.opts.MaxRecommendations]
	}
	recommendations := make([]entity.RecommendationResult, 0, len(hits))
	for _, h := range hits {
		if h == nil {
			continue
		}
		recommendations = append(recommendations, h.Result())
	}
	metrics.RecommendationHits.Observe(float64(len(recommendations)))
	logger.Info(ctx, "recommendation search completed",
		"user_id", user.ID,
		"total_hits", total,
		"returned", len(recommendations),
	)

	return &entity.ChatTurn{
		Route:           entity.RouteRecommendation,
		Response:        recommendationLeadIn,
		Recommendations: &recommendations,
	}, nil
}

// answer 通用问答路由：流式补全并按序拼接增量
func (e *Engine) answer(ctx context.Context, query string) (*entity.ChatTurn, error) {
	ctx, span := tracer.Start(ctx, "assistant.Engine.answer")
	defer span.End()

	stream, err := e.completer.StreamCompletion(ctx, &CompletionRequest{
		System:    generalSystemPrompt,
		Query:     query,
		MaxTokens: e.opts.MaxAnswerTokens,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCompletionFailed, "failed to start completion")
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeCompletionFailed, "completion stream failed")
		}
		sb.WriteString(delta)
	}

	return &entity.ChatTurn{
		Route:    entity.RouteGeneral,
		Response: sb.String(),
	}, nil
}

func genreNames(genres []*entity.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g != nil {
			names = append(names, g.Name)
		}
	}
	return names
}

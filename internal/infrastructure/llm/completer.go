// Package llm 提供基于 Eino 的大模型接入层
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"book-ai-api/internal/application/assistant"
	"book-ai-api/internal/config"
	einoobs "book-ai-api/internal/observability/eino"
	"book-ai-api/pkg/metrics"
)

// Completer 将 Eino ChatModel 适配为问答引擎的流式补全依赖
type Completer struct {
	factory  *EinoFactory
	provider string
	model    string
}

// NewCompleter 创建流式补全适配器
// provider 为空时使用 LLM 配置的默认提供商
func NewCompleter(factory *EinoFactory, cfg *config.Config) *Completer {
	provider := cfg.Assistant.Provider
	if provider == "" {
		provider = cfg.LLM.DefaultProvider
	}
	modelName := ""
	if pc, ok := cfg.LLM.Providers[provider]; ok {
		modelName = pc.Model
	}
	return &Completer{
		factory:  factory,
		provider: provider,
		model:    modelName,
	}
}

// StreamCompletion 发起一次流式补全
// 返回的流以 io.EOF 表示正常结束，调用方负责 Close
func (c *Completer) StreamCompletion(ctx context.Context, req *assistant.CompletionRequest) (assistant.DeltaStream, error) {
	ctx = einoobs.WithProvider(ctx, c.provider)

	chatModel, err := c.factory.Get(ctx, c.provider)
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return nil, fmt.Errorf("failed to get chat model: %w", err)
	}

	msgs := []*schema.Message{
		schema.SystemMessage(req.System),
		schema.UserMessage(req.Query),
	}

	var opts []model.Option
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	start := time.Now()
	reader, err := chatModel.Stream(ctx, msgs, opts...)
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	metrics.LLMCallTotal.WithLabelValues(c.provider, c.model, "ok").Inc()
	return &deltaStream{
		reader:   reader,
		provider: c.provider,
		model:    c.model,
		start:    start,
	}, nil
}

// deltaStream 包装 Eino StreamReader，逐条吐出增量文本
//
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
type deltaStream struct {
	reader   *schema.StreamReader[*schema.Message]
	provider string
	model    string
	start    time.Time
}

func (s *deltaStream) Recv() (string, error) {
	msg, err := s.reader.Recv()
	if err != nil {
		// io.EOF 属于正常结束，在此记录整段流的耗时
		metrics.LLMCallDuration.WithLabelValues(s.provider, s.model).Observe(time.Since(s.start).Seconds())
		return "", err
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(s.provider, s.model, "prompt").
			Add(float64(msg.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(s.provider, s.model, "completion").
			Add(float64(msg.ResponseMeta.Usage.CompletionTokens))
	}
	return msg.Content, nil
}

func (s *deltaStream) Close() {
	s.reader.Close()
}

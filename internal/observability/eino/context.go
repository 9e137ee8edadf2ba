package eino

import "context"

type providerKey struct{}

// WithProvider 将当前调用使用的 LLM 提供商写入 Context，供回调标注 Span
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey{}, provider)
}

// ProviderFromContext 读取 Context 中的 LLM 提供商，未设置时返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

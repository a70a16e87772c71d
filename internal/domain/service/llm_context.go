// Package service 定义跨层共享的 LLM 调用上下文约定
package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyPhase    llmCtxKey = "llm_phase"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// WithPhase 标记本次调用所属的生成阶段（用于指标与追踪标签）
func WithPhase(ctx context.Context, phase string) context.Context {
	if ctx == nil {
		return nil
	}
	p := strings.TrimSpace(phase)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyPhase, p)
}

func WithProvider(ctx context.Context, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	p := strings.TrimSpace(provider)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

func WithPhaseProvider(ctx context.Context, phase, provider string) context.Context {
	return WithProvider(WithPhase(ctx, phase), provider)
}

func PhaseFromContext(ctx context.Context) string {
	return valueOrUnknown(ctx, llmCtxKeyPhase)
}

func ProviderFromContext(ctx context.Context) string {
	return valueOrUnknown(ctx, llmCtxKeyProvider)
}

func valueOrUnknown(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}

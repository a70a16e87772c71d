package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-studio-api/internal/domain/service"
	"novel-studio-api/pkg/metrics"
	"novel-studio-api/pkg/tracer"
)

// startTimeKey 用于在 Context 中存储调用开始时间
type startTimeKey struct{}

// modelKey 记录 OnStart 时解析出的模型名，OnError 拿不到输出配置
type modelKey struct{}

// newChatModelCallbackHandler 创建模型调用回调：计数、耗时、token 与 span。
// 所有文本提供商（eino openai 以及手动触发回调的 gemini/replicate 适配器）共用这一套。
func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			modelName := modelNameFromInput(input)
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())
			ctx = context.WithValue(ctx, modelKey{}, modelName)

			attrs := []attribute.KeyValue{
				attribute.String("generation.phase", service.PhaseFromContext(ctx)),
				attribute.String("llm.provider", service.ProviderFromContext(ctx)),
				attribute.String("llm.model", modelName),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = tracer.Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			phase := service.PhaseFromContext(ctx)
			provider := service.ProviderFromContext(ctx)
			modelName := modelNameFromOutput(output)
			if modelName == "" {
				modelName = modelFromContext(ctx)
			}

			metrics.LLMCallTotal.WithLabelValues(phase, provider, modelName, "success").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.LLMCallDuration.WithLabelValues(phase, provider, modelName).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			if output != nil && output.TokenUsage != nil {
				usage := output.TokenUsage
				metrics.LLMTokensUsed.WithLabelValues(phase, provider, modelName, "prompt").Add(float64(usage.PromptTokens))
				metrics.LLMTokensUsed.WithLabelValues(phase, provider, modelName, "completion").Add(float64(usage.CompletionTokens))
				metrics.LLMTokensUsed.WithLabelValues(phase, provider, modelName, "total").Add(float64(usage.TotalTokens))
				span.SetAttributes(
					attribute.Int("llm.prompt_tokens", usage.PromptTokens),
					attribute.Int("llm.completion_tokens", usage.CompletionTokens),
				)
			}
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			phase := service.PhaseFromContext(ctx)
			provider := service.ProviderFromContext(ctx)
			modelName := modelFromContext(ctx)

			metrics.LLMCallTotal.WithLabelValues(phase, provider, modelName, "error").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.LLMCallDuration.WithLabelValues(phase, provider, modelName).Observe(d)
			}

			span := trace.SpanFromContext(ctx)
			tracer.Fail(span, err)
			span.End()
			return ctx
		},
	}
}

// elapsedSeconds 计算从 OnStart 到当前的耗时（秒），取不到开始时间时返回 0
func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelFromContext(ctx context.Context) string {
	s, _ := ctx.Value(modelKey{}).(string)
	return s
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}

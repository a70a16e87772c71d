package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"novel-studio-api/internal/application/generation"
)

// startModelCallbacks 为不走 eino ChatModel 的适配器手动触发模型回调，
// 使 gemini/replicate 的调用同样进入全局指标与追踪。
func startModelCallbacks(ctx context.Context, typ string, req generation.TextRequest, modelID string) context.Context {
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      typ,
		Type:      typ,
		Component: components.ComponentOfChatModel,
	})
	return callbacks.OnStart(ctx, &model.CallbackInput{
		Messages: textMessages(req),
		Config:   callbackConfig(req, modelID),
	})
}

func endModelCallbacks(ctx context.Context, req generation.TextRequest, modelID, text string, u tokenUsage) {
	callbacks.OnEnd(ctx, &model.CallbackOutput{
		Message: schema.AssistantMessage(text, nil),
		Config:  callbackConfig(req, modelID),
		TokenUsage: &model.TokenUsage{
			PromptTokens:     u.Prompt,
			CompletionTokens: u.Completion,
			TotalTokens:      u.Total,
		},
	})
}

func failModelCallbacks(ctx context.Context, err error) {
	callbacks.OnError(ctx, err)
}

func callbackConfig(req generation.TextRequest, modelID string) *model.Config {
	return &model.Config{
		Model:       modelID,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
}

// textMessages 将统一请求转换为对话消息；系统提示词为空时只发送用户消息
func textMessages(req generation.TextRequest) []*schema.Message {
	msgs := make([]*schema.Message, 0, 2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, schema.SystemMessage(req.SystemPrompt))
	}
	return append(msgs, schema.UserMessage(req.Prompt))
}

func providerError(id, modelID string, err error) error {
	return &generation.ProviderError{ProviderID: id, ModelID: modelID, Cause: err}
}

// withTimeout 非正数表示不额外限制
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

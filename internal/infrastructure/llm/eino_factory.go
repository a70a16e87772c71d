package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"novel-studio-api/internal/config"
)

// ChatModelFactory 按提供商 ID 取得 ChatModel
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// EinoFactory 管理多个 Eino ChatModel 客户端实例（OpenAI 及兼容端点）
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.LLMConfig) *EinoFactory {
	return &EinoFactory{
		config: cfg,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认文本提供商
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultTextProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	if providerCfg.Type != config.ProviderTypeOpenAI {
		return nil, fmt.Errorf("provider %s has type %q, eino factory only serves openai-compatible endpoints", name, providerCfg.Type)
	}

	mc := &openai.ChatModelConfig{
		APIKey:  providerCfg.APIKey,
		BaseURL: providerCfg.BaseURL,
		Model:   providerCfg.Model,
		Timeout: providerCfg.Timeout,
	}
	if providerCfg.MaxTokens > 0 {
		mc.MaxTokens = &providerCfg.MaxTokens
	}
	if providerCfg.Temperature > 0 {
		mc.Temperature = ptrFloat32(float32(providerCfg.Temperature))
	}

	chatModel, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

func ptrFloat32(f float32) *float32 {
	return &f
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/config"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider 通过 genai SDK 调用 Gemini 文本模型
type GeminiProvider struct {
	id      string
	cfg     config.ProviderConfig
	timeout time.Duration

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiProvider(id string, cfg config.ProviderConfig) *GeminiProvider {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTextTimeout
	}
	return &GeminiProvider{id: id, cfg: cfg, timeout: timeout}
}

func (p *GeminiProvider) Name() string         { return p.id }
func (p *GeminiProvider) DefaultModel() string { return p.cfg.Model }

// getClient 首次调用时创建客户端，缺少密钥不影响进程启动
func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	cc := &genai.ClientConfig{APIKey: p.cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if p.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req generation.TextRequest) (*generation.TextResponse, error) {
	modelID := firstNonBlank(req.Model, p.cfg.Model)
	req.Model = modelID

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, providerError(p.id, modelID, err)
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.Schema != nil {
		gc.ResponseMIMEType = "application/json"
	}

	ctx = startModelCallbacks(ctx, "Gemini", req, modelID)
	result, err := client.Models.GenerateContent(ctx, modelID, genai.Text(req.Prompt), gc)
	if err != nil {
		failModelCallbacks(ctx, err)
		return nil, providerError(p.id, modelID, fmt.Errorf("failed to generate content: %w", err))
	}

	text := result.Text()
	if text == "" {
		err = errors.New("empty gemini response")
		failModelCallbacks(ctx, err)
		return nil, providerError(p.id, modelID, err)
	}

	var u tokenUsage
	if md := result.UsageMetadata; md != nil {
		u = tokenUsage{
			Prompt:     int(md.PromptTokenCount),
			Completion: int(md.CandidatesTokenCount),
			Total:      int(md.TotalTokenCount),
		}
	}
	u = u.fill(req.Prompt, text)
	endModelCallbacks(ctx, req, modelID, text, u)

	return &generation.TextResponse{
		Text:             text,
		Model:            modelID,
		TokensUsed:       u.Total,
		PromptTokens:     u.Prompt,
		CompletionTokens: u.Completion,
	}, nil
}

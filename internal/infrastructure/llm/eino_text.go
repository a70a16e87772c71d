package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/pkg/logger"
)

const defaultTextTimeout = 90 * time.Second

// EinoTextProvider 通过 eino ChatModel 调用 OpenAI 兼容端点
type EinoTextProvider struct {
	id           string
	defaultModel string
	timeout      time.Duration
	factory      ChatModelFactory
}

func NewEinoTextProvider(id, defaultModel string, timeout time.Duration, factory ChatModelFactory) *EinoTextProvider {
	if timeout <= 0 {
		timeout = defaultTextTimeout
	}
	return &EinoTextProvider{id: id, defaultModel: defaultModel, timeout: timeout, factory: factory}
}

func (p *EinoTextProvider) Name() string         { return p.id }
func (p *EinoTextProvider) DefaultModel() string { return p.defaultModel }

func (p *EinoTextProvider) Generate(ctx context.Context, req generation.TextRequest) (*generation.TextResponse, error) {
	modelID := firstNonBlank(req.Model, p.defaultModel)
	req.Model = modelID

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	chatModel, err := p.factory.Get(ctx, p.id)
	if err != nil {
		return nil, providerError(p.id, modelID, err)
	}

	msgs := textMessages(req)
	out, err := chatModel.Generate(ctx, msgs, modelOptions(req, true)...)
	if err != nil && req.Schema != nil && isResponseFormatUnsupported(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"provider", p.id,
			"model", modelID,
			"error", err.Error(),
		)
		out, err = chatModel.Generate(ctx, msgs, modelOptions(req, false)...)
	}
	if err != nil {
		return nil, providerError(p.id, modelID, err)
	}
	if out == nil {
		return nil, providerError(p.id, modelID, errors.New("empty llm response"))
	}

	var u tokenUsage
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		u = tokenUsage{
			Prompt:     out.ResponseMeta.Usage.PromptTokens,
			Completion: out.ResponseMeta.Usage.CompletionTokens,
			Total:      out.ResponseMeta.Usage.TotalTokens,
		}
	}
	u = u.fill(req.Prompt, out.Content)

	return &generation.TextResponse{
		Text:             out.Content,
		Model:            modelID,
		TokensUsed:       u.Total,
		PromptTokens:     u.Prompt,
		CompletionTokens: u.Completion,
	}, nil
}

func modelOptions(req generation.TextRequest, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 4)
	opts = append(opts, model.WithTemperature(float32(req.Temperature)))
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if m := strings.TrimSpace(req.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}

	if enableSchema && req.Schema != nil {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   strings.ReplaceAll(req.SchemaName, "-", "_"),
					"strict": false,
					"schema": req.Schema,
				},
			},
		}))
	}
	return opts
}

// isResponseFormatUnsupported 判断端点是否拒绝了 response_format 参数
func isResponseFormatUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "response_format"):
		return true
	case strings.Contains(msg, "json_schema"):
		return true
	default:
		return false
	}
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/config"
)

const defaultOpenAIImageModel = "dall-e-3"

// OpenAIImageProvider 通过 openai-go 的 Images 接口生成封面
type OpenAIImageProvider struct {
	id      string
	model   string
	timeout time.Duration
	client  *openai.Client
}

func NewOpenAIImageProvider(id string, cfg config.ProviderConfig) *OpenAIImageProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	timeout := cfg.ImageTimeout
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return &OpenAIImageProvider{
		id:      id,
		model:   firstNonBlank(cfg.ImageModel, defaultOpenAIImageModel),
		timeout: timeout,
		client:  &client,
	}
}

func (p *OpenAIImageProvider) Name() string         { return p.id }
func (p *OpenAIImageProvider) DefaultModel() string { return p.model }

func (p *OpenAIImageProvider) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResponse, error) {
	modelID := firstNonBlank(req.Model, p.model)

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ImageGenerateParams{
		Prompt: strings.TrimSpace(req.Prompt),
		Model:  openai.ImageModel(modelID),
		N:      openai.Int(int64(max(req.Count, 1))),
	}
	if req.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(req.Size)
	}
	if req.Quality != "" {
		params.Quality = openai.ImageGenerateParamsQuality(req.Quality)
	}
	if req.Style != "" {
		params.Style = openai.ImageGenerateParamsStyle(req.Style)
	}

	resp, err := p.client.Images.Generate(ctx, params)
	if err != nil {
		return nil, providerError(p.id, modelID, fmt.Errorf("openai image generation error: %w", err))
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, providerError(p.id, modelID, errors.New("no images returned"))
	}

	out := &generation.ImageResponse{Model: modelID}
	for _, img := range resp.Data {
		if img.URL != "" {
			out.URLs = append(out.URLs, img.URL)
		}
		if out.RevisedPrompt == "" {
			out.RevisedPrompt = img.RevisedPrompt
		}
	}
	if len(out.URLs) == 0 {
		return nil, providerError(p.id, modelID, errors.New("image response carried no urls"))
	}
	return out, nil
}

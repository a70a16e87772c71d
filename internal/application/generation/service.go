package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"novel-studio-api/internal/domain/quality"
	"novel-studio-api/internal/domain/service"
	"novel-studio-api/pkg/logger"
	"novel-studio-api/pkg/metrics"
	"novel-studio-api/pkg/tracer"
)

// Service 生成编排器：每次调用都是独立的请求/响应，内部不持有可变状态
type Service struct {
	providers Providers
	defaults  Defaults
}

func NewService(providers Providers, defaults Defaults) *Service {
	if defaults.Stages == nil {
		defaults = DefaultSettings()
	}
	return &Service{providers: providers, defaults: defaults}
}

// Defaults 返回注入的默认配置
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// Describe 列出已注册的提供商
func (s *Service) Describe() []ProviderInfo {
	return s.providers.Describe()
}

// ResolveProviderConfig 计算某阶段在给定覆盖项下的最终参数
func (s *Service) ResolveProviderConfig(phase Phase, c Customization) ProviderConfig {
	return resolveProviderConfig(s.defaults, phase, c, s.defaultModel(phase))
}

func (s *Service) defaultModel(phase Phase) func(string) string {
	return func(id string) string {
		if phase.IsText() {
			if p, ok := s.providers.Text(id); ok {
				return p.DefaultModel()
			}
			return ""
		}
		if p, ok := s.providers.Image(id); ok {
			return p.DefaultModel()
		}
		return ""
	}
}

// Generate 执行一次生成。所有失败都以 *GenerationError 返回，其中包含失败前的耗时
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	phase := req.Phase

	ctx = logger.WithContext(ctx, logger.PhaseKey, string(phase))
	ctx, span := tracer.Start(ctx, "generation.Generate",
		trace.WithAttributes(attribute.String("generation.phase", string(phase))))
	defer span.End()

	res, err := s.generate(ctx, req)
	elapsed := time.Since(start)
	metrics.GenerationDuration.WithLabelValues(string(phase)).Observe(elapsed.Seconds())

	if err != nil {
		metrics.GenerationTotal.WithLabelValues(string(phase), "error").Inc()
		tracer.Fail(span, err)
		logger.Error(ctx, "generation failed", err, "generation_time_ms", elapsed.Milliseconds())
		return nil, &GenerationError{Phase: phase, GenerationTimeMs: elapsed.Milliseconds(), Cause: err}
	}

	res.Metadata.GenerationTimeMs = elapsed.Milliseconds()
	metrics.GenerationTotal.WithLabelValues(string(phase), "success").Inc()
	span.SetAttributes(
		attribute.String("llm.provider", res.Metadata.ProviderID),
		attribute.String("llm.model", res.Metadata.ModelID),
		attribute.Int("llm.tokens_used", res.Metadata.TokensUsed),
	)
	logger.Info(ctx, "generation completed",
		"provider", res.Metadata.ProviderID,
		"model", res.Metadata.ModelID,
		"tokens_used", res.Metadata.TokensUsed,
		"generation_time_ms", res.Metadata.GenerationTimeMs,
	)
	return res, nil
}

func (s *Service) generate(ctx context.Context, req Request) (*Result, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	cfg := s.ResolveProviderConfig(req.Phase, req.Customization)
	ctx = service.WithPhaseProvider(ctx, string(req.Phase), cfg.ProviderID)

	var res *Result
	if req.Phase == PhaseCoverImage {
		res, err = s.generateImage(ctx, req.Payload.(CoverInput), cfg)
	} else {
		res, err = s.generateText(ctx, req, prompt, cfg)
	}
	if err != nil {
		return nil, err
	}

	if req.Customization.EchoPrompt || s.defaults.EchoPrompt {
		res.Metadata.PromptEcho = prompt
	}
	if req.Phase == PhaseLongChapter {
		res.Metadata.TargetWords = req.Customization.TargetWords
		if res.Metadata.TargetWords <= 0 {
			res.Metadata.TargetWords = DefaultTargetWords
		}
	}
	return res, nil
}

func (s *Service) generateText(ctx context.Context, req Request, prompt string, cfg ProviderConfig) (*Result, error) {
	provider, ok := s.providers.Text(cfg.ProviderID)
	if !ok {
		return nil, invalid(req.Phase, "customization.provider_id", fmt.Sprintf("unknown text provider %q", cfg.ProviderID))
	}

	textReq := TextRequest{
		Prompt:      prompt,
		Model:       cfg.ModelID,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	if raw, ok := req.Payload.(RawTextInput); ok {
		textReq.SystemPrompt = raw.SystemPrompt
	}
	if req.Phase.StructuredOutput() {
		textReq.SchemaName = string(req.Phase)
		textReq.Schema, _ = ResultSchema(req.Phase)
	}

	resp, err := provider.Generate(ctx, textReq)
	if err != nil {
		return nil, asProviderError(err, cfg)
	}
	if resp == nil {
		return nil, &ProviderError{ProviderID: cfg.ProviderID, ModelID: cfg.ModelID, Cause: errors.New("empty response")}
	}

	content, err := Parse(req.Phase, resp.Text)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Phase:   req.Phase,
		Content: content,
		Metadata: Metadata{
			ProviderID:       cfg.ProviderID,
			ModelID:          firstNonEmpty(resp.Model, cfg.ModelID),
			TokensUsed:       resp.TokensUsed,
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
			Temperature:      cfg.Temperature,
			MaxTokens:        cfg.MaxTokens,
			GeneratedAt:      time.Now().UTC(),
		},
	}

	if draft, ok := content.(*ChapterDraft); ok {
		report := quality.Analyze(draft.Text)
		res.Analysis = &report
		metrics.ChapterWordCount.WithLabelValues(string(req.Phase)).Observe(float64(report.Statistics.WordCount))
		metrics.QualityScore.WithLabelValues("repetition").Observe(float64(report.Score.RepetitionScore))
		metrics.QualityScore.WithLabelValues("diversity").Observe(float64(report.Score.DiversityScore))
		metrics.QualityScore.WithLabelValues("punctuation").Observe(float64(report.Score.PunctuationComplianceScore))
	}
	return res, nil
}

func (s *Service) generateImage(ctx context.Context, in CoverInput, cfg ProviderConfig) (*Result, error) {
	provider, ok := s.providers.Image(cfg.ProviderID)
	if !ok {
		return nil, invalid(PhaseCoverImage, "customization.provider_id", fmt.Sprintf("unknown image provider %q", cfg.ProviderID))
	}

	d := s.defaults.Image
	imgReq := ImageRequest{
		Prompt:   strings.TrimSpace(in.Prompt),
		Model:    cfg.ModelID,
		Width:    orInt(in.Width, d.Width),
		Height:   orInt(in.Height, d.Height),
		Count:    orInt(in.Count, d.Count),
		Guidance: orFloat(in.Guidance, d.Guidance),
		Steps:    orInt(in.Steps, d.Steps),
		Size:     firstNonEmpty(in.Size, d.Size),
		Style:    firstNonEmpty(in.Style, d.Style),
		Quality:  firstNonEmpty(in.Quality, d.Quality),
	}

	resp, err := provider.GenerateImage(ctx, imgReq)
	if err != nil {
		return nil, asProviderError(err, cfg)
	}
	if resp == nil || len(resp.URLs) == 0 {
		return nil, &ProviderError{ProviderID: cfg.ProviderID, ModelID: cfg.ModelID, Cause: errors.New("no images returned")}
	}

	return &Result{
		Phase: PhaseCoverImage,
		Content: &CoverImage{
			ImageURL:      resp.URLs[0],
			URLs:          resp.URLs,
			RevisedPrompt: resp.RevisedPrompt,
		},
		Metadata: Metadata{
			ProviderID:  cfg.ProviderID,
			ModelID:     firstNonEmpty(resp.Model, cfg.ModelID),
			GeneratedAt: time.Now().UTC(),
		},
	}, nil
}

// asProviderError 保证提供商失败总是 *ProviderError
func asProviderError(err error, cfg ProviderConfig) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{ProviderID: cfg.ProviderID, ModelID: cfg.ModelID, Cause: err}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

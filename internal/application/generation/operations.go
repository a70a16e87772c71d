package generation

import (
	"context"
	"strings"

	"novel-studio-api/pkg/logger"
)

func (s *Service) GeneratePremise(ctx context.Context, genre GenreContext, in PremiseInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhasePremise, Genre: genre, Payload: in, Customization: c})
}

func (s *Service) GenerateOutline(ctx context.Context, genre GenreContext, in OutlineInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseOutline, Genre: genre, Payload: in, Customization: c})
}

func (s *Service) GenerateCharacters(ctx context.Context, genre GenreContext, in CharactersInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseCharacters, Genre: genre, Payload: in, Customization: c})
}

func (s *Service) GenerateChapter(ctx context.Context, genre GenreContext, in ChapterInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseChapter, Genre: genre, Payload: in, Customization: c})
}

// GenerateLongChapter 长章节：token 预算按目标字数计算，除非调用方显式覆盖
func (s *Service) GenerateLongChapter(ctx context.Context, genre GenreContext, in ChapterInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseLongChapter, Genre: genre, Payload: LongChapterInput{ChapterInput: in}, Customization: c})
}

func (s *Service) ReviewChapter(ctx context.Context, genre GenreContext, in ReviewInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseReview, Genre: genre, Payload: in, Customization: c})
}

func (s *Service) GenerateCoverImage(ctx context.Context, in CoverInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseCoverImage, Payload: in, Customization: c})
}

// GenerateTextWithProvider 不套用任何模板，直接把提示词发给指定提供商
func (s *Service) GenerateTextWithProvider(ctx context.Context, in RawTextInput, c Customization) (*Result, error) {
	return s.Generate(ctx, Request{Phase: PhaseRawText, Payload: in, Customization: c})
}

// VariationTarget 多提供商对比的一个目标
type VariationTarget struct {
	ProviderID string `json:"provider_id"`
	ModelID    string `json:"model_id,omitempty"`
}

// Variation 一个目标的结果；失败时 Error 非空，不会被丢弃
type Variation struct {
	ProviderID string  `json:"provider_id"`
	ModelID    string  `json:"model_id,omitempty"`
	Result     *Result `json:"result,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// GenerateTextVariations 依次对每个目标生成同一提示词，逐个记录结果或错误
func (s *Service) GenerateTextVariations(ctx context.Context, in RawTextInput, targets []VariationTarget, c Customization) []Variation {
	out := make([]Variation, 0, len(targets))
	for _, t := range targets {
		custom := c
		custom.ProviderID = strings.TrimSpace(t.ProviderID)
		custom.ModelID = strings.TrimSpace(t.ModelID)

		v := Variation{ProviderID: custom.ProviderID, ModelID: custom.ModelID}
		res, err := s.GenerateTextWithProvider(ctx, in, custom)
		if err != nil {
			logger.Warn(ctx, "text variation failed", "provider", custom.ProviderID, "model", custom.ModelID, "error", err.Error())
			v.Error = err.Error()
		} else {
			v.Result = res
			v.ModelID = res.Metadata.ModelID
		}
		out = append(out, v)
	}
	return out
}

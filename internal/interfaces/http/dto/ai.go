package dto

import (
	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/quality"
)

// GeneratePremiseRequest 构思生成请求
type GeneratePremiseRequest struct {
	GenreRef
	AdditionalInputs string                   `json:"additional_inputs,omitempty"`
	Customization    generation.Customization `json:"customization"`
}

// GenerateOutlineRequest 大纲生成请求
type GenerateOutlineRequest struct {
	GenreRef
	Premise         string                   `json:"premise"`
	Characters      []generation.Character   `json:"characters"`
	WordCountTarget int                      `json:"word_count_target,omitempty"`
	Customization   generation.Customization `json:"customization"`
}

// ToInput 转换为大纲阶段输入
func (r *GenerateOutlineRequest) ToInput() generation.OutlineInput {
	return generation.OutlineInput{
		Premise:         r.Premise,
		Characters:      r.Characters,
		WordCountTarget: r.WordCountTarget,
	}
}

// GenerateCharactersRequest 角色生成请求；outline 可以是文本或大纲 JSON
type GenerateCharactersRequest struct {
	GenreRef
	Premise       string                   `json:"premise"`
	Outline       TextOrJSON               `json:"outline"`
	Customization generation.Customization `json:"customization"`
}

// ToInput 转换为角色阶段输入
func (r *GenerateCharactersRequest) ToInput() generation.CharactersInput {
	return generation.CharactersInput{Premise: r.Premise, Outline: r.Outline.String()}
}

// GenerateChapterRequest 单章生成请求；long 为 true 时使用长章节模式
type GenerateChapterRequest struct {
	GenreRef
	Outline       generation.ChapterOutline `json:"outline"`
	Context       generation.ChapterContext `json:"context"`
	Long          bool                      `json:"long,omitempty"`
	Customization generation.Customization  `json:"customization"`
}

// ToInput 转换为章节阶段输入
func (r *GenerateChapterRequest) ToInput() generation.ChapterInput {
	return generation.ChapterInput{Outline: r.Outline, Context: r.Context}
}

// ReviewChapterRequest 章节审阅请求
type ReviewChapterRequest struct {
	GenreRef
	ChapterText   string                   `json:"chapter_text"`
	ChapterNumber int                      `json:"chapter_number"`
	Premise       string                   `json:"premise,omitempty"`
	Customization generation.Customization `json:"customization"`
}

// ToInput 转换为审阅阶段输入
func (r *ReviewChapterRequest) ToInput() generation.ReviewInput {
	return generation.ReviewInput{
		ChapterText:   r.ChapterText,
		ChapterNumber: r.ChapterNumber,
		Premise:       r.Premise,
	}
}

// GenerateCoverRequest 封面生成请求；小说封面接口允许 prompt 为空
type GenerateCoverRequest struct {
	generation.CoverInput
	Customization generation.Customization `json:"customization"`
}

// AnalyzeTextRequest 文本分析请求
type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnalyzeTextResponse 文本分析结果
type AnalyzeTextResponse struct {
	Statistics quality.Statistics `json:"statistics"`
	Quality    quality.Score      `json:"quality"`
}

// GenerateTextRequest 透传文本生成请求
type GenerateTextRequest struct {
	Prompt        string                   `json:"prompt"`
	SystemPrompt  string                   `json:"system_prompt,omitempty"`
	Customization generation.Customization `json:"customization"`
}

// ToInput 转换为透传文本输入
func (r *GenerateTextRequest) ToInput() generation.RawTextInput {
	return generation.RawTextInput{Prompt: r.Prompt, SystemPrompt: r.SystemPrompt}
}

// TextVariationsRequest 多提供商对比请求
type TextVariationsRequest struct {
	GenerateTextRequest
	Targets []generation.VariationTarget `json:"targets" binding:"required,min=1,max=8,dive"`
}

// TextVariationsResponse 多提供商对比结果
type TextVariationsResponse struct {
	Variations []generation.Variation `json:"variations"`
	Succeeded  int                    `json:"succeeded"`
	Failed     int                    `json:"failed"`
}

// NewTextVariationsResponse 统计成功与失败数量
func NewTextVariationsResponse(vs []generation.Variation) *TextVariationsResponse {
	resp := &TextVariationsResponse{Variations: vs}
	for _, v := range vs {
		if v.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return resp
}

// ProvidersResponse 可用提供商列表与各阶段默认参数
type ProvidersResponse struct {
	Providers []generation.ProviderInfo                      `json:"providers"`
	Defaults  map[generation.Stage]generation.ProviderConfig `json:"defaults"`
}

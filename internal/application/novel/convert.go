package novel

import (
	"time"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/entity"
)

// Characters 小说角色转换为提示词角色列表
func Characters(novel *entity.Novel) []generation.Character {
	out := make([]generation.Character, 0, len(novel.Characters))
	for _, c := range novel.Characters {
		out = append(out, generation.Character{Name: c.Name, Role: c.Role, Description: c.Description})
	}
	return out
}

// Customization 由小说写作偏好构造默认覆盖项
func Customization(s *entity.NovelSettings) generation.Customization {
	if s == nil {
		return generation.Customization{}
	}
	c := generation.Customization{
		ProviderID:             s.ProviderID,
		ModelID:                s.ModelID,
		PacingProfile:          s.PacingProfile,
		DialogueFrequency:      s.DialogueFrequency,
		DescriptiveDensity:     s.DescriptiveDensity,
		WritingStyle:           s.WritingStyle,
		CharacterDevelopment:   s.CharacterDevelopment,
		ThematicElements:       s.ThematicElements,
		AdditionalInstructions: s.AdditionalInstructions,
	}
	if s.ChapterWordMin > 0 && s.ChapterWordMax > 0 {
		c.ChapterWordCount = &generation.WordRange{Min: s.ChapterWordMin, Max: s.ChapterWordMax}
	}
	return c
}

// MergeCustomization 逐字段合并，override 中非零值优先
func MergeCustomization(base, override generation.Customization) generation.Customization {
	out := base
	if override.ProviderID != "" {
		out.ProviderID = override.ProviderID
		// 换了提供商但未指定模型时不沿用旧提供商的模型
		out.ModelID = override.ModelID
	} else if override.ModelID != "" {
		out.ModelID = override.ModelID
	}
	if override.Temperature != nil {
		out.Temperature = override.Temperature
	}
	if override.MaxTokens != nil {
		out.MaxTokens = override.MaxTokens
	}
	if override.TargetWords != 0 {
		out.TargetWords = override.TargetWords
	}
	if override.ChapterWordCount != nil {
		out.ChapterWordCount = override.ChapterWordCount
	}
	setIf(&out.PacingProfile, override.PacingProfile)
	setIf(&out.DialogueFrequency, override.DialogueFrequency)
	setIf(&out.DescriptiveDensity, override.DescriptiveDensity)
	setIf(&out.WritingStyle, override.WritingStyle)
	setIf(&out.CharacterDevelopment, override.CharacterDevelopment)
	setIf(&out.ThematicElements, override.ThematicElements)
	setIf(&out.AdditionalInstructions, override.AdditionalInstructions)
	out.EchoPrompt = out.EchoPrompt || override.EchoPrompt
	return out
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Metadata 生成元数据转换为持久化格式
func Metadata(res *generation.Result) *entity.GenerationMetadata {
	m := res.Metadata
	return &entity.GenerationMetadata{
		Model:            m.ModelID,
		Provider:         m.ProviderID,
		TokensUsed:       m.TokensUsed,
		PromptTokens:     m.PromptTokens,
		CompletionTokens: m.CompletionTokens,
		Temperature:      m.Temperature,
		GenerationTimeMs: m.GenerationTimeMs,
		GeneratedAt:      m.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

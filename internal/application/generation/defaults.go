package generation

import (
	"strings"

	"novel-studio-api/internal/config"
)

const (
	// ReviewTemperature 审阅阶段的固定默认温度，保证评分稳定
	ReviewTemperature = 0.3
	// DefaultLongChapterTokenCeiling 长章节 token 上限的默认值
	DefaultLongChapterTokenCeiling = 16000

	longChapterTokenBuffer = 1000
)

// StageDefaults 单个参数分组的默认值
type StageDefaults struct {
	ProviderID  string
	ModelID     string
	MaxTokens   int
	Temperature float64
}

// ImageDefaults 封面默认参数
type ImageDefaults struct {
	Size     string
	Quality  string
	Style    string
	Width    int
	Height   int
	Count    int
	Guidance float64
	Steps    int
}

// Defaults 构造 Service 时注入的全部默认配置
type Defaults struct {
	Stages                  map[Stage]StageDefaults
	LongChapterTokenCeiling int
	Image                   ImageDefaults
	EchoPrompt              bool
}

// ProviderConfig 单次调用最终使用的提供商参数
type ProviderConfig struct {
	ProviderID  string  `json:"provider_id"`
	ModelID     string  `json:"model_id"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// DefaultSettings 未提供配置文件时的内置默认值
func DefaultSettings() Defaults {
	planning := StageDefaults{ProviderID: "openai", ModelID: "gpt-4-turbo-preview", MaxTokens: 4000, Temperature: 0.7}
	drafting := planning
	drafting.MaxTokens = 8000
	reviewing := planning
	reviewing.Temperature = ReviewTemperature
	raw := planning
	raw.MaxTokens = 2000

	return Defaults{
		Stages: map[Stage]StageDefaults{
			StagePlanning:  planning,
			StageDrafting:  drafting,
			StageReviewing: reviewing,
			StageImage:     {ProviderID: "openai", ModelID: "dall-e-3"},
			StageRaw:       raw,
		},
		LongChapterTokenCeiling: DefaultLongChapterTokenCeiling,
		Image: ImageDefaults{
			Size: "1024x1024", Quality: "standard", Style: "natural",
			Width: 512, Height: 768, Count: 1, Guidance: 7.5, Steps: 20,
		},
	}
}

// DefaultsFromConfig 将配置文件中的 generation 段转换为 Defaults，缺失项沿用内置默认值
func DefaultsFromConfig(cfg config.GenerationConfig) Defaults {
	d := DefaultSettings()
	for name, sc := range cfg.Stages {
		stage, err := ParseStage(strings.ToLower(name))
		if err != nil {
			continue
		}
		cur := d.Stages[stage]
		if sc.Provider != "" {
			if sc.Provider != cur.ProviderID && sc.Model == "" {
				cur.ModelID = ""
			}
			cur.ProviderID = sc.Provider
		}
		if sc.Model != "" {
			cur.ModelID = sc.Model
		}
		if sc.MaxTokens > 0 {
			cur.MaxTokens = sc.MaxTokens
		}
		if sc.Temperature != nil {
			cur.Temperature = *sc.Temperature
		}
		d.Stages[stage] = cur
	}
	if cfg.LongChapterTokenCeiling > 0 {
		d.LongChapterTokenCeiling = cfg.LongChapterTokenCeiling
	}

	img := cfg.Image
	if img.Size != "" {
		d.Image.Size = img.Size
	}
	if img.Quality != "" {
		d.Image.Quality = img.Quality
	}
	if img.Style != "" {
		d.Image.Style = img.Style
	}
	if img.Width > 0 {
		d.Image.Width = img.Width
	}
	if img.Height > 0 {
		d.Image.Height = img.Height
	}
	if img.Count > 0 {
		d.Image.Count = img.Count
	}
	if img.Guidance > 0 {
		d.Image.Guidance = img.Guidance
	}
	if img.Steps > 0 {
		d.Image.Steps = img.Steps
	}
	d.EchoPrompt = cfg.EchoPrompt
	return d
}

// ComputeMaxTokens 长章节 token 预算：min(ceil(targetWords*1.33)+1000, ceiling)
func ComputeMaxTokens(targetWords, ceiling int) int {
	if targetWords <= 0 {
		targetWords = DefaultTargetWords
	}
	if ceiling <= 0 {
		ceiling = DefaultLongChapterTokenCeiling
	}
	// 整数运算避免 1.33 的浮点误差
	estimated := (targetWords*133 + 99) / 100
	return min(estimated+longChapterTokenBuffer, ceiling)
}

// resolveProviderConfig 合并阶段默认值与覆盖项，覆盖项逐字段优先。
// defaultModel 用于覆盖了提供商但未指定模型时取该提供商自己的默认模型。
func resolveProviderConfig(d Defaults, phase Phase, c Customization, defaultModel func(providerID string) string) ProviderConfig {
	base := d.Stages[phase.Stage()]
	cfg := ProviderConfig{
		ProviderID:  base.ProviderID,
		ModelID:     base.ModelID,
		MaxTokens:   base.MaxTokens,
		Temperature: base.Temperature,
	}

	if phase == PhaseReview {
		cfg.Temperature = ReviewTemperature
	}
	if phase == PhaseLongChapter {
		cfg.MaxTokens = ComputeMaxTokens(c.TargetWords, d.LongChapterTokenCeiling)
	}

	if id := strings.TrimSpace(c.ProviderID); id != "" && id != cfg.ProviderID {
		cfg.ProviderID = id
		cfg.ModelID = ""
	}
	if m := strings.TrimSpace(c.ModelID); m != "" {
		cfg.ModelID = m
	}
	if cfg.ModelID == "" && defaultModel != nil {
		cfg.ModelID = defaultModel(cfg.ProviderID)
	}
	if c.Temperature != nil {
		cfg.Temperature = *c.Temperature
	}
	if c.MaxTokens != nil {
		cfg.MaxTokens = *c.MaxTokens
	}
	return cfg
}

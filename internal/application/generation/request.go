package generation

import (
	"strconv"
	"strings"
)

// GenreContext 题材规则，调用方提供，核心流程只读
type GenreContext struct {
	Name               string                   `json:"name"`
	Description        string                   `json:"description"`
	KeyCharacteristics []string                 `json:"key_characteristics"`
	StyleGuidance      map[string]any           `json:"style_guidance,omitempty"`
	ContentGuidance    map[string]any           `json:"content_guidance,omitempty"`
	StructureGuidance  map[string]any           `json:"structure_guidance,omitempty"`
	PhaseGuidance      map[Stage]map[string]any `json:"phase_guidance,omitempty"`
	ChristianSpecific  map[string]any           `json:"christian_specific,omitempty"`
}

// HasChristianElements 是否带有信仰类附加要求
func (g GenreContext) HasChristianElements() bool {
	return len(g.ChristianSpecific) > 0
}

// PromptingContext 嵌入提示词的题材上下文；字段顺序即 JSON 输出顺序
type PromptingContext struct {
	Genre              string         `json:"genre"`
	Definition         string         `json:"definition"`
	KeyCharacteristics []string       `json:"keyCharacteristics"`
	Style              map[string]any `json:"style,omitempty"`
	Content            map[string]any `json:"content,omitempty"`
	Structure          map[string]any `json:"structure,omitempty"`
	SpecificGuidance   map[string]any `json:"specificGuidance,omitempty"`
	ChristianElements  map[string]any `json:"christianElements,omitempty"`
}

// PromptingContext 按参数分组生成提示词上下文
func (g GenreContext) PromptingContext(stage Stage) PromptingContext {
	pc := PromptingContext{
		Genre:              g.Name,
		Definition:         g.Description,
		KeyCharacteristics: g.KeyCharacteristics,
		Style:              g.StyleGuidance,
		Content:            g.ContentGuidance,
		Structure:          g.StructureGuidance,
		SpecificGuidance:   g.PhaseGuidance[stage],
	}
	if pc.KeyCharacteristics == nil {
		pc.KeyCharacteristics = []string{}
	}
	if g.HasChristianElements() {
		pc.ChristianElements = g.ChristianSpecific
	}
	return pc
}

// Payload 各阶段的领域输入；只有本包内的类型可以实现
type Payload interface {
	Phase() Phase
	validate() error
}

// Character 提示词中使用的角色摘要
type Character struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

// PremiseInput 构思阶段输入
type PremiseInput struct {
	AdditionalInputs string `json:"additional_inputs,omitempty"`
}

func (PremiseInput) Phase() Phase    { return PhasePremise }
func (PremiseInput) validate() error { return nil }

// DefaultWordCountTarget 未指定全书字数时的目标
const DefaultWordCountTarget = 60000

// OutlineInput 大纲阶段输入
type OutlineInput struct {
	Premise         string      `json:"premise"`
	Characters      []Character `json:"characters"`
	WordCountTarget int         `json:"word_count_target,omitempty"`
}

func (OutlineInput) Phase() Phase { return PhaseOutline }

func (in OutlineInput) validate() error {
	if blank(in.Premise) {
		return invalid(PhaseOutline, "premise", "is required")
	}
	if len(in.Characters) == 0 {
		return invalid(PhaseOutline, "characters", "at least one character is required")
	}
	for i, c := range in.Characters {
		if blank(c.Name) {
			return invalid(PhaseOutline, fieldIndex("characters", i, "name"), "is required")
		}
	}
	if in.WordCountTarget < 0 {
		return invalid(PhaseOutline, "word_count_target", "must not be negative")
	}
	return nil
}

// CharactersInput 角色阶段输入；Outline 为大纲文本（通常是已保存的大纲 JSON）
type CharactersInput struct {
	Premise string `json:"premise"`
	Outline string `json:"outline"`
}

func (CharactersInput) Phase() Phase { return PhaseCharacters }

func (in CharactersInput) validate() error {
	if blank(in.Premise) {
		return invalid(PhaseCharacters, "premise", "is required")
	}
	if blank(in.Outline) {
		return invalid(PhaseCharacters, "outline", "is required")
	}
	return nil
}

// ChapterOutline 单章大纲
type ChapterOutline struct {
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Objectives []string `json:"objectives,omitempty"`
}

// PreviousChapter 上一章摘要
type PreviousChapter struct {
	Number  int    `json:"number"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary"`
}

// ChapterContext 章节写作上下文
type ChapterContext struct {
	Premise         string           `json:"premise"`
	Characters      []Character      `json:"characters,omitempty"`
	PreviousChapter *PreviousChapter `json:"previous_chapter,omitempty"`
}

// ChapterInput 章节阶段输入
type ChapterInput struct {
	Outline ChapterOutline `json:"outline"`
	Context ChapterContext `json:"context"`
}

func (ChapterInput) Phase() Phase { return PhaseChapter }

func (in ChapterInput) validate() error { return in.validateAs(PhaseChapter) }

func (in ChapterInput) validateAs(phase Phase) error {
	if in.Outline.Number < 1 {
		return invalid(phase, "outline.number", "must be >= 1")
	}
	if blank(in.Outline.Title) {
		return invalid(phase, "outline.title", "is required")
	}
	if blank(in.Outline.Summary) {
		return invalid(phase, "outline.summary", "is required")
	}
	if blank(in.Context.Premise) {
		return invalid(phase, "context.premise", "is required")
	}
	return nil
}

// LongChapterInput 长章节输入，字段与普通章节相同
type LongChapterInput struct {
	ChapterInput
}

func (LongChapterInput) Phase() Phase { return PhaseLongChapter }

func (in LongChapterInput) validate() error { return in.validateAs(PhaseLongChapter) }

// ReviewInput 审阅阶段输入
type ReviewInput struct {
	ChapterText   string `json:"chapter_text"`
	ChapterNumber int    `json:"chapter_number"`
	Premise       string `json:"premise,omitempty"`
}

func (ReviewInput) Phase() Phase { return PhaseReview }

func (in ReviewInput) validate() error {
	if blank(in.ChapterText) {
		return invalid(PhaseReview, "chapter_text", "is required")
	}
	if in.ChapterNumber < 1 {
		return invalid(PhaseReview, "chapter_number", "must be >= 1")
	}
	return nil
}

// CoverInput 封面阶段输入；零值字段使用默认参数
type CoverInput struct {
	Prompt   string  `json:"prompt"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Count    int     `json:"count,omitempty"`
	Guidance float64 `json:"guidance,omitempty"`
	Steps    int     `json:"steps,omitempty"`
	Size     string  `json:"size,omitempty"`
	Style    string  `json:"style,omitempty"`
	Quality  string  `json:"quality,omitempty"`
}

func (CoverInput) Phase() Phase { return PhaseCoverImage }

func (in CoverInput) validate() error {
	if blank(in.Prompt) {
		return invalid(PhaseCoverImage, "prompt", "is required")
	}
	if in.Width < 0 || in.Height < 0 || in.Count < 0 || in.Steps < 0 || in.Guidance < 0 {
		return invalid(PhaseCoverImage, "", "image dimensions and settings must not be negative")
	}
	return nil
}

// RawTextInput 直接透传的文本请求
type RawTextInput struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

func (RawTextInput) Phase() Phase { return PhaseRawText }

func (in RawTextInput) validate() error {
	if blank(in.Prompt) {
		return invalid(PhaseRawText, "prompt", "is required")
	}
	return nil
}

// WordRange 章节字数区间
type WordRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Customization 调用方覆盖项；非零字段优先于阶段默认值
type Customization struct {
	ProviderID             string     `json:"provider_id,omitempty"`
	ModelID                string     `json:"model_id,omitempty"`
	Temperature            *float64   `json:"temperature,omitempty"`
	MaxTokens              *int       `json:"max_tokens,omitempty"`
	TargetWords            int        `json:"target_words,omitempty"`
	ChapterWordCount       *WordRange `json:"chapter_word_count,omitempty"`
	PacingProfile          string     `json:"pacing_profile,omitempty"`
	DialogueFrequency      string     `json:"dialogue_frequency,omitempty"`
	DescriptiveDensity     string     `json:"descriptive_density,omitempty"`
	WritingStyle           string     `json:"writing_style,omitempty"`
	CharacterDevelopment   string     `json:"character_development,omitempty"`
	ThematicElements       string     `json:"thematic_elements,omitempty"`
	AdditionalInstructions string     `json:"additional_instructions,omitempty"`
	EchoPrompt             bool       `json:"echo_prompt,omitempty"`
}

func (c Customization) validate(phase Phase) error {
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return invalid(phase, "customization.temperature", "must be between 0 and 2")
	}
	if c.MaxTokens != nil && *c.MaxTokens <= 0 {
		return invalid(phase, "customization.max_tokens", "must be positive")
	}
	if c.TargetWords < 0 {
		return invalid(phase, "customization.target_words", "must not be negative")
	}
	if r := c.ChapterWordCount; r != nil {
		if r.Min <= 0 || r.Max <= 0 {
			return invalid(phase, "customization.chapter_word_count", "min and max must be positive")
		}
		if r.Min > r.Max {
			return invalid(phase, "customization.chapter_word_count", "min must not exceed max")
		}
	}
	return nil
}

// Request 一次生成调用
type Request struct {
	Phase         Phase         `json:"phase"`
	Genre         GenreContext  `json:"genre"`
	Payload       Payload       `json:"-"`
	Customization Customization `json:"customization"`
}

// Validate 在构建提示词前检查请求，失败时返回 *ValidationError
func (r Request) Validate() error {
	if !r.Phase.Valid() {
		return invalid(r.Phase, "phase", "unknown phase")
	}
	if r.Payload == nil {
		return invalid(r.Phase, "payload", "is required")
	}
	if r.Payload.Phase() != r.Phase {
		return invalid(r.Phase, "payload", "payload for phase "+string(r.Payload.Phase())+" does not match")
	}
	if needsGenre(r.Phase) && blank(r.Genre.Name) {
		return invalid(r.Phase, "genre.name", "is required")
	}
	if err := r.Payload.validate(); err != nil {
		return err
	}
	return r.Customization.validate(r.Phase)
}

func needsGenre(p Phase) bool {
	return p != PhaseRawText && p != PhaseCoverImage
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func fieldIndex(name string, i int, sub string) string {
	return name + "[" + strconv.Itoa(i) + "]." + sub
}

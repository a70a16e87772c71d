package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"novel-studio-api/internal/domain/quality"
)

// Content 各阶段的结果变体
type Content interface {
	isContent()
}

// PremiseSet 构思结果
type PremiseSet struct {
	Premises []Premise       `json:"premises"`
	Raw      json.RawMessage `json:"-"`
}

// Premise 单个构思
type Premise struct {
	Title              string   `json:"title"`
	Summary            string   `json:"summary"`
	CentralConflict    string   `json:"centralConflict"`
	UniqueElements     []string `json:"uniqueElements"`
	CharacterPotential string   `json:"characterPotential"`
	Themes             []string `json:"themes"`
}

// Outline 三幕结构大纲
type Outline struct {
	Title             string            `json:"title,omitempty"`
	ThreeActStructure ThreeActStructure `json:"threeActStructure"`
	CharacterArcs     []CharacterArc    `json:"characterArcs,omitempty"`
	PlotPoints        []string          `json:"plotPoints,omitempty"`
	Themes            []string          `json:"themes,omitempty"`
	PacingNotes       string            `json:"pacingNotes,omitempty"`
	Raw               json.RawMessage   `json:"-"`
}

type ThreeActStructure struct {
	Act1 *Act `json:"act1"`
	Act2 *Act `json:"act2"`
	Act3 *Act `json:"act3"`
}

type Act struct {
	Summary  string           `json:"summary,omitempty"`
	Chapters []OutlineChapter `json:"chapters"`
}

type OutlineChapter struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Objectives    []string `json:"objectives,omitempty"`
	CharacterArcs []string `json:"characterArcs,omitempty"`
	PlotPoints    []string `json:"plotPoints,omitempty"`
}

type CharacterArc struct {
	Character string `json:"character"`
	Arc       string `json:"arc"`
}

// Chapters 按幕顺序展开全部章节
func (o *Outline) Chapters() []OutlineChapter {
	if o == nil {
		return nil
	}
	var out []OutlineChapter
	for _, act := range []*Act{o.ThreeActStructure.Act1, o.ThreeActStructure.Act2, o.ThreeActStructure.Act3} {
		if act != nil {
			out = append(out, act.Chapters...)
		}
	}
	return out
}

// CharacterRoster 角色结果
type CharacterRoster struct {
	Characters []CharacterProfile `json:"characters"`
	Raw        json.RawMessage    `json:"-"`
}

type CharacterProfile struct {
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	Description      string     `json:"description"`
	Age              FlexString `json:"age,omitempty"`
	Background       string     `json:"background,omitempty"`
	Motivation       string     `json:"motivation,omitempty"`
	Arc              string     `json:"arc,omitempty"`
	Traits           []string   `json:"traits,omitempty"`
	Relationships    []string   `json:"relationships,omitempty"`
	SpiritualJourney string     `json:"spiritualJourney,omitempty"`
}

// FlexString 接受 JSON 字符串或数字（模型常把年龄写成数字）
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

// ChapterDraft 章节正文，保持模型输出原样
type ChapterDraft struct {
	Text string `json:"text"`
}

// Review 审阅结果
type Review struct {
	Scores          ReviewScores    `json:"scores"`
	Issues          []ReviewIssue   `json:"issues"`
	Strengths       []string        `json:"strengths"`
	Recommendations []string        `json:"recommendations"`
	Raw             json.RawMessage `json:"-"`
}

type ReviewScores struct {
	Repetition           float64 `json:"repetition"`
	Punctuation          float64 `json:"punctuation"`
	NaturalLanguage      float64 `json:"naturalLanguage"`
	CharacterConsistency float64 `json:"characterConsistency"`
	PlotAdherence        float64 `json:"plotAdherence"`
	GenreCompliance      float64 `json:"genreCompliance"`
	Overall              float64 `json:"overall"`
}

type ReviewIssue struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// CoverImage 封面结果
type CoverImage struct {
	ImageURL      string   `json:"image_url"`
	URLs          []string `json:"images"`
	RevisedPrompt string   `json:"revised_prompt,omitempty"`
}

// RawText 透传文本结果
type RawText struct {
	Text string `json:"text"`
}

func (*PremiseSet) isContent()      {}
func (*Outline) isContent()         {}
func (*CharacterRoster) isContent() {}
func (*ChapterDraft) isContent()    {}
func (*Review) isContent()          {}
func (*CoverImage) isContent()      {}
func (*RawText) isContent()         {}

// Metadata 每次调用的可审计信息
type Metadata struct {
	ProviderID       string    `json:"provider_id"`
	ModelID          string    `json:"model_id"`
	TokensUsed       int       `json:"tokens_used"`
	PromptTokens     int       `json:"prompt_tokens,omitempty"`
	CompletionTokens int       `json:"completion_tokens,omitempty"`
	GenerationTimeMs int64     `json:"generation_time_ms"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	TargetWords      int       `json:"target_words,omitempty"`
	PromptEcho       string    `json:"prompt_echo,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// Result 一次成功生成的输出
type Result struct {
	Phase    Phase           `json:"phase"`
	Content  Content         `json:"content"`
	Metadata Metadata        `json:"metadata"`
	Analysis *quality.Report `json:"analysis,omitempty"`
}

// Text 返回正文类结果的文本
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	switch c := r.Content.(type) {
	case *ChapterDraft:
		return c.Text
	case *RawText:
		return c.Text
	default:
		return ""
	}
}

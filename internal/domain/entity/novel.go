package entity

import (
	"encoding/json"
	"time"
)

// NovelStatus 小说状态
type NovelStatus string

const (
	NovelStatusPlanning  NovelStatus = "planning"
	NovelStatusOutlining NovelStatus = "outlining"
	NovelStatusDrafting  NovelStatus = "drafting"
	NovelStatusReviewing NovelStatus = "reviewing"
	NovelStatusCompleted NovelStatus = "completed"
	NovelStatusPaused    NovelStatus = "paused"
)

// ValidNovelStatus 检查状态取值
func ValidNovelStatus(s NovelStatus) bool {
	switch s {
	case NovelStatusPlanning, NovelStatusOutlining, NovelStatusDrafting,
		NovelStatusReviewing, NovelStatusCompleted, NovelStatusPaused:
		return true
	default:
		return false
	}
}

// NovelCharacter 小说角色摘要
type NovelCharacter struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description,omitempty"`
}

// NovelSettings 写作偏好，生成章节时作为默认覆盖项
type NovelSettings struct {
	ChapterWordMin         int    `json:"chapter_word_min,omitempty"`
	ChapterWordMax         int    `json:"chapter_word_max,omitempty"`
	PacingProfile          string `json:"pacing_profile,omitempty"`
	DialogueFrequency      string `json:"dialogue_frequency,omitempty"`
	DescriptiveDensity     string `json:"descriptive_density,omitempty"`
	WritingStyle           string `json:"writing_style,omitempty"`
	CharacterDevelopment   string `json:"character_development,omitempty"`
	ThematicElements       string `json:"thematic_elements,omitempty"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
	ProviderID             string `json:"provider_id,omitempty"`
	ModelID                string `json:"model_id,omitempty"`
}

// Novel 小说实体；Outline 保存大纲阶段返回的原始 JSON
type Novel struct {
	ID              string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title           string           `json:"title" gorm:"type:varchar(200);not null"`
	Premise         string           `json:"premise" gorm:"type:text;not null"`
	GenreID         string           `json:"genre_id" gorm:"type:uuid;index;not null"`
	SubGenres       []string         `json:"sub_genres,omitempty" gorm:"type:jsonb;serializer:json"`
	Characters      []NovelCharacter `json:"characters,omitempty" gorm:"type:jsonb;serializer:json"`
	Outline         json.RawMessage  `json:"outline,omitempty" gorm:"type:jsonb;serializer:json"`
	Settings        *NovelSettings   `json:"settings,omitempty" gorm:"type:jsonb;serializer:json"`
	WordCountTarget int              `json:"word_count_target" gorm:"default:60000"`
	Status          NovelStatus      `json:"status" gorm:"type:varchar(50);default:'planning';index"`
	CreatedAt       time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Novel) TableName() string {
	return "novels"
}

// NewNovel 创建新小说
func NewNovel(title, premise, genreID string) *Novel {
	now := time.Now()
	return &Novel{
		Title:           title,
		Premise:         premise,
		GenreID:         genreID,
		WordCountTarget: 60000,
		Status:          NovelStatusPlanning,
		Settings:        &NovelSettings{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CanStartBatch 只有规划中或暂停的小说可以启动整本生成
func (n *Novel) CanStartBatch() bool {
	return n.Status == NovelStatusPlanning || n.Status == NovelStatusPaused
}

// HasOutline 是否已保存大纲
func (n *Novel) HasOutline() bool {
	return len(n.Outline) > 0 && string(n.Outline) != "null"
}

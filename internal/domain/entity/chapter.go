// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"novel-studio-api/internal/domain/quality"
)

// ChapterStatus 章节状态
type ChapterStatus string

const (
	ChapterStatusDraft      ChapterStatus = "draft"
	ChapterStatusGenerating ChapterStatus = "generating"
	ChapterStatusReview     ChapterStatus = "review"
	ChapterStatusCompleted  ChapterStatus = "completed"
	ChapterStatusFailed     ChapterStatus = "failed"
)

// GenerationMetadata 生成元数据
type GenerationMetadata struct {
	Model            string  `json:"model,omitempty"`
	Provider         string  `json:"provider,omitempty"`
	TokensUsed       int     `json:"tokens_used,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	GenerationTimeMs int64   `json:"generation_time_ms,omitempty"`
	GeneratedAt      string  `json:"generated_at,omitempty"`
}

// Revision 一次内容变更的记录
type Revision struct {
	Version   int       `json:"version"`
	Source    string    `json:"source"` // edit / regenerate
	Added     int       `json:"added"`
	Removed   int       `json:"removed"`
	Unchanged int       `json:"unchanged"`
	CreatedAt time.Time `json:"created_at"`
}

// Chapter 章节实体
type Chapter struct {
	ID                 string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID            string              `json:"novel_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_chapter_novel_number"`
	Number             int                 `json:"number" gorm:"not null;uniqueIndex:idx_chapter_novel_number"`
	Title              string              `json:"title,omitempty" gorm:"type:varchar(255)"`
	Summary            string              `json:"summary,omitempty" gorm:"type:text"`
	Objectives         pq.StringArray      `json:"objectives,omitempty" gorm:"type:text[]"`
	Content            string              `json:"content,omitempty" gorm:"type:text"`
	WordCount          int                 `json:"word_count" gorm:"default:0"`
	Status             ChapterStatus       `json:"status" gorm:"type:varchar(50);default:'draft'"`
	Statistics         *quality.Statistics `json:"statistics,omitempty" gorm:"type:jsonb;serializer:json"`
	Quality            *quality.Score      `json:"quality,omitempty" gorm:"type:jsonb;serializer:json"`
	Review             json.RawMessage     `json:"review,omitempty" gorm:"type:jsonb;serializer:json"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	Revisions          []Revision          `json:"revisions,omitempty" gorm:"type:jsonb;serializer:json"`
	Version            int                 `json:"version" gorm:"default:1"`
	CreatedAt          time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节
func NewChapter(novelID string, number int) *Chapter {
	now := time.Now()
	return &Chapter{
		NovelID:   novelID,
		Number:    number,
		Status:    ChapterStatusDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BeforeSave 每次保存前重新计算统计与质量评分
func (c *Chapter) BeforeSave(*gorm.DB) error {
	c.Analyze()
	return nil
}

// Analyze 根据当前正文刷新统计字段；正文为空时清空
func (c *Chapter) Analyze() {
	if strings.TrimSpace(c.Content) == "" {
		c.WordCount = 0
		c.Statistics = nil
		c.Quality = nil
		return
	}
	report := quality.Analyze(c.Content)
	c.WordCount = report.Statistics.WordCount
	c.Statistics = &report.Statistics
	c.Quality = &report.Score
}

// SetContent 设置章节内容
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.UpdatedAt = time.Now()
}

// IsEditable 检查章节是否可编辑
func (c *Chapter) IsEditable() bool {
	return c.Status != ChapterStatusGenerating
}

// AddRevision 记录一次变更并递增版本号
func (c *Chapter) AddRevision(source string, added, removed, unchanged int) {
	c.Version++
	c.Revisions = append(c.Revisions, Revision{
		Version:   c.Version,
		Source:    source,
		Added:     added,
		Removed:   removed,
		Unchanged: unchanged,
		CreatedAt: time.Now().UTC(),
	})
	c.UpdatedAt = time.Now()
}

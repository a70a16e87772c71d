package entity

import (
	"time"

	"github.com/lib/pq"
)

// Cover 封面
type Cover struct {
	ID                 string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID            string              `json:"novel_id" gorm:"type:uuid;index;not null"`
	Prompt             string              `json:"prompt" gorm:"type:text;not null"`
	RevisedPrompt      string              `json:"revised_prompt,omitempty" gorm:"type:text"`
	ImageURL           string              `json:"image_url" gorm:"type:text"`
	Images             pq.StringArray      `json:"images,omitempty" gorm:"type:text[]"`
	Provider           string              `json:"provider" gorm:"type:varchar(50)"`
	Model              string              `json:"model" gorm:"type:varchar(200)"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt          time.Time           `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Cover) TableName() string {
	return "covers"
}

package entity

import (
	"time"

	"github.com/lib/pq"
)

// Genre 题材规则
type Genre struct {
	ID                 string                    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string                    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description        string                    `json:"description" gorm:"type:text"`
	KeyCharacteristics pq.StringArray            `json:"key_characteristics" gorm:"type:text[]"`
	StyleGuidance      map[string]any            `json:"style_guidance,omitempty" gorm:"type:jsonb;serializer:json"`
	ContentGuidance    map[string]any            `json:"content_guidance,omitempty" gorm:"type:jsonb;serializer:json"`
	StructureGuidance  map[string]any            `json:"structure_guidance,omitempty" gorm:"type:jsonb;serializer:json"`
	PhaseGuidance      map[string]map[string]any `json:"phase_guidance,omitempty" gorm:"type:jsonb;serializer:json"`
	ChristianSpecific  map[string]any            `json:"christian_specific,omitempty" gorm:"type:jsonb;serializer:json"`
	IsActive           bool                      `json:"is_active" gorm:"default:true;index"`
	CreatedAt          time.Time                 `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time                 `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Genre) TableName() string {
	return "genres"
}

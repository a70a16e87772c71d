package dto

import (
	"time"

	"novel-studio-api/internal/domain/entity"
)

// CoverResponse 封面响应
type CoverResponse struct {
	ID                 string                     `json:"id"`
	NovelID            string                     `json:"novel_id"`
	Prompt             string                     `json:"prompt"`
	RevisedPrompt      string                     `json:"revised_prompt,omitempty"`
	ImageURL           string                     `json:"image_url"`
	Images             []string                   `json:"images,omitempty"`
	Provider           string                     `json:"provider"`
	Model              string                     `json:"model"`
	GenerationMetadata *entity.GenerationMetadata `json:"generation_metadata,omitempty"`
	CreatedAt          string                     `json:"created_at"`
}

// ToCoverResponse 转换为封面响应
func ToCoverResponse(c *entity.Cover) *CoverResponse {
	return &CoverResponse{
		ID:                 c.ID,
		NovelID:            c.NovelID,
		Prompt:             c.Prompt,
		RevisedPrompt:      c.RevisedPrompt,
		ImageURL:           c.ImageURL,
		Images:             c.Images,
		Provider:           c.Provider,
		Model:              c.Model,
		GenerationMetadata: c.GenerationMetadata,
		CreatedAt:          c.CreatedAt.Format(time.RFC3339),
	}
}

// CoverListResponse 封面列表响应
type CoverListResponse struct {
	Covers []*CoverResponse `json:"covers"`
}

// ToCoverListResponse 转换为封面列表响应
func ToCoverListResponse(covers []*entity.Cover) *CoverListResponse {
	out := make([]*CoverResponse, 0, len(covers))
	for _, c := range covers {
		out = append(out, ToCoverResponse(c))
	}
	return &CoverListResponse{Covers: out}
}

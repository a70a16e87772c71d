package dto

import (
	"novel-studio-api/internal/domain/entity"
)

// GenreResponse 题材响应
type GenreResponse struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	Description        string                    `json:"description"`
	KeyCharacteristics []string                  `json:"key_characteristics"`
	StyleGuidance      map[string]any            `json:"style_guidance,omitempty"`
	ContentGuidance    map[string]any            `json:"content_guidance,omitempty"`
	StructureGuidance  map[string]any            `json:"structure_guidance,omitempty"`
	PhaseGuidance      map[string]map[string]any `json:"phase_guidance,omitempty"`
	ChristianSpecific  map[string]any            `json:"christian_specific,omitempty"`
}

// ToGenreResponse 转换为题材响应
func ToGenreResponse(g *entity.Genre) *GenreResponse {
	chars := []string(g.KeyCharacteristics)
	if chars == nil {
		chars = []string{}
	}
	return &GenreResponse{
		ID:                 g.ID,
		Name:               g.Name,
		Description:        g.Description,
		KeyCharacteristics: chars,
		StyleGuidance:      g.StyleGuidance,
		ContentGuidance:    g.ContentGuidance,
		StructureGuidance:  g.StructureGuidance,
		PhaseGuidance:      g.PhaseGuidance,
		ChristianSpecific:  g.ChristianSpecific,
	}
}

// GenreListResponse 题材列表（列表中不含阶段指导）
type GenreListResponse struct {
	Genres []*GenreSummaryResponse `json:"genres"`
}

// GenreSummaryResponse 题材摘要
type GenreSummaryResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	KeyCharacteristics []string `json:"key_characteristics"`
	HasFaithElements   bool     `json:"has_faith_elements"`
}

// ToGenreListResponse 转换为题材列表
func ToGenreListResponse(genres []*entity.Genre) *GenreListResponse {
	out := make([]*GenreSummaryResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, &GenreSummaryResponse{
			ID:                 g.ID,
			Name:               g.Name,
			Description:        g.Description,
			KeyCharacteristics: g.KeyCharacteristics,
			HasFaithElements:   len(g.ChristianSpecific) > 0,
		})
	}
	return &GenreListResponse{Genres: out}
}

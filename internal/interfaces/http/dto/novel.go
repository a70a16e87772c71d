package dto

import (
	"encoding/json"
	"strings"
	"time"

	"novel-studio-api/internal/domain/entity"
)

// CreateNovelRequest 创建小说请求
type CreateNovelRequest struct {
	Title           string                  `json:"title" binding:"required,max=200"`
	Premise         string                  `json:"premise" binding:"required"`
	GenreID         string                  `json:"genre_id" binding:"required"`
	SubGenres       []string                `json:"sub_genres,omitempty"`
	Characters      []entity.NovelCharacter `json:"characters,omitempty"`
	Outline         json.RawMessage         `json:"outline,omitempty"`
	Settings        *entity.NovelSettings   `json:"settings,omitempty"`
	WordCountTarget int                     `json:"word_count_target,omitempty" binding:"omitempty,gte=1000,lte=500000"`
}

// ToNovelEntity 转换为小说实体
func (r *CreateNovelRequest) ToNovelEntity() *entity.Novel {
	n := entity.NewNovel(strings.TrimSpace(r.Title), strings.TrimSpace(r.Premise), r.GenreID)
	n.SubGenres = r.SubGenres
	n.Characters = r.Characters
	n.Outline = r.Outline
	if r.Settings != nil {
		n.Settings = r.Settings
	}
	if r.WordCountTarget > 0 {
		n.WordCountTarget = r.WordCountTarget
	}
	return n
}

// UpdateNovelRequest 更新小说请求；只更新非空字段
type UpdateNovelRequest struct {
	Title           *string                 `json:"title,omitempty" binding:"omitempty,max=200"`
	Premise         *string                 `json:"premise,omitempty"`
	GenreID         *string                 `json:"genre_id,omitempty"`
	SubGenres       []string                `json:"sub_genres,omitempty"`
	Characters      []entity.NovelCharacter `json:"characters,omitempty"`
	Outline         json.RawMessage         `json:"outline,omitempty"`
	Settings        *entity.NovelSettings   `json:"settings,omitempty"`
	WordCountTarget *int                    `json:"word_count_target,omitempty" binding:"omitempty,gte=1000,lte=500000"`
	Status          *string                 `json:"status,omitempty"`
}

// ApplyToNovel 应用更新到小说实体
func (r *UpdateNovelRequest) ApplyToNovel(n *entity.Novel) {
	if r.Title != nil {
		n.Title = strings.TrimSpace(*r.Title)
	}
	if r.Premise != nil {
		n.Premise = strings.TrimSpace(*r.Premise)
	}
	if r.GenreID != nil {
		n.GenreID = *r.GenreID
	}
	if r.SubGenres != nil {
		n.SubGenres = r.SubGenres
	}
	if r.Characters != nil {
		n.Characters = r.Characters
	}
	if len(r.Outline) > 0 {
		n.Outline = r.Outline
	}
	if r.Settings != nil {
		n.Settings = r.Settings
	}
	if r.WordCountTarget != nil {
		n.WordCountTarget = *r.WordCountTarget
	}
	if r.Status != nil {
		n.Status = entity.NovelStatus(*r.Status)
	}
}

// NovelResponse 小说响应
type NovelResponse struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Premise         string                  `json:"premise"`
	GenreID         string                  `json:"genre_id"`
	SubGenres       []string                `json:"sub_genres,omitempty"`
	Characters      []entity.NovelCharacter `json:"characters,omitempty"`
	Outline         json.RawMessage         `json:"outline,omitempty"`
	Settings        *entity.NovelSettings   `json:"settings,omitempty"`
	WordCountTarget int                     `json:"word_count_target"`
	Status          string                  `json:"status"`
	CreatedAt       string                  `json:"created_at"`
	UpdatedAt       string                  `json:"updated_at"`
}

// ToNovelResponse 转换为小说响应
func ToNovelResponse(n *entity.Novel) *NovelResponse {
	if n == nil {
		return nil
	}
	return &NovelResponse{
		ID:              n.ID,
		Title:           n.Title,
		Premise:         n.Premise,
		GenreID:         n.GenreID,
		SubGenres:       n.SubGenres,
		Characters:      n.Characters,
		Outline:         n.Outline,
		Settings:        n.Settings,
		WordCountTarget: n.WordCountTarget,
		Status:          string(n.Status),
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       n.UpdatedAt.Format(time.RFC3339),
	}
}

// NovelListResponse 小说列表响应
type NovelListResponse struct {
	Novels []*NovelResponse `json:"novels"`
}

// ToNovelListResponse 转换为小说列表响应
func ToNovelListResponse(novels []*entity.Novel) *NovelListResponse {
	out := make([]*NovelResponse, 0, len(novels))
	for _, n := range novels {
		out = append(out, ToNovelResponse(n))
	}
	return &NovelListResponse{Novels: out}
}

// ProgressResponse 整本生成进度
type ProgressResponse struct {
	NovelID           string                 `json:"novel_id"`
	Status            string                 `json:"status"`
	TotalChapters     int                    `json:"total_chapters"`
	CompletedChapters int                    `json:"completed_chapters"`
	CurrentChapter    int                    `json:"current_chapter,omitempty"`
	PercentComplete   int                    `json:"percent_complete"`
	FailedChapters    []entity.FailedChapter `json:"failed_chapters"`
	LastError         string                 `json:"last_error,omitempty"`
	StartedAt         string                 `json:"started_at"`
	UpdatedAt         string                 `json:"updated_at"`
}

// ToProgressResponse 转换为进度响应
func ToProgressResponse(p *entity.BatchProgress) *ProgressResponse {
	failed := p.FailedChapters
	if failed == nil {
		failed = []entity.FailedChapter{}
	}
	return &ProgressResponse{
		NovelID:           p.NovelID,
		Status:            string(p.Status),
		TotalChapters:     p.TotalChapters,
		CompletedChapters: p.CompletedChapters,
		CurrentChapter:    p.CurrentChapter,
		PercentComplete:   p.PercentComplete(),
		FailedChapters:    failed,
		LastError:         p.LastError,
		StartedAt:         p.StartedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

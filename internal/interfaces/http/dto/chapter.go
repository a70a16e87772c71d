package dto

import (
	"encoding/json"
	"time"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/application/manuscript"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/quality"
)

// GenerateNovelChapterRequest 为小说生成指定章节；outline 为空时取小说大纲
type GenerateNovelChapterRequest struct {
	Number        int                        `json:"number" binding:"required,gte=1"`
	Long          bool                       `json:"long,omitempty"`
	Outline       *generation.ChapterOutline `json:"outline,omitempty"`
	Customization *generation.Customization  `json:"customization,omitempty"`
}

// RegenerateChapterRequest 重新生成章节请求
type RegenerateChapterRequest struct {
	Long          bool                       `json:"long,omitempty"`
	Outline       *generation.ChapterOutline `json:"outline,omitempty"`
	Customization *generation.Customization  `json:"customization,omitempty"`
}

// UpdateChapterRequest 手工编辑章节；approved 为 true 时标记完成
type UpdateChapterRequest struct {
	Title    *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Content  *string `json:"content,omitempty"`
	Approved *bool   `json:"approved,omitempty"`
}

// ReviewRequest 审阅已保存章节
type ReviewRequest struct {
	Customization *generation.Customization `json:"customization,omitempty"`
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID                 string                     `json:"id"`
	NovelID            string                     `json:"novel_id"`
	Number             int                        `json:"number"`
	Title              string                     `json:"title,omitempty"`
	Summary            string                     `json:"summary,omitempty"`
	Objectives         []string                   `json:"objectives,omitempty"`
	Content            string                     `json:"content,omitempty"`
	WordCount          int                        `json:"word_count"`
	Status             string                     `json:"status"`
	Statistics         *quality.Statistics        `json:"statistics,omitempty"`
	Quality            *quality.Score             `json:"quality,omitempty"`
	Review             json.RawMessage            `json:"review,omitempty"`
	GenerationMetadata *entity.GenerationMetadata `json:"generation_metadata,omitempty"`
	Revisions          []entity.Revision          `json:"revisions,omitempty"`
	Version            int                        `json:"version"`
	CreatedAt          string                     `json:"created_at"`
	UpdatedAt          string                     `json:"updated_at"`
}

// ToChapterResponse 转换为章节响应
func ToChapterResponse(ch *entity.Chapter) *ChapterResponse {
	if ch == nil {
		return nil
	}
	return &ChapterResponse{
		ID:                 ch.ID,
		NovelID:            ch.NovelID,
		Number:             ch.Number,
		Title:              ch.Title,
		Summary:            ch.Summary,
		Objectives:         ch.Objectives,
		Content:            ch.Content,
		WordCount:          ch.WordCount,
		Status:             string(ch.Status),
		Statistics:         ch.Statistics,
		Quality:            ch.Quality,
		Review:             ch.Review,
		GenerationMetadata: ch.GenerationMetadata,
		Revisions:          ch.Revisions,
		Version:            ch.Version,
		CreatedAt:          ch.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          ch.UpdatedAt.Format(time.RFC3339),
	}
}

// ChapterSummaryResponse 列表中的章节摘要（不含正文）
type ChapterSummaryResponse struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary,omitempty"`
	WordCount int    `json:"word_count"`
	Status    string `json:"status"`
	Version   int    `json:"version"`
	UpdatedAt string `json:"updated_at"`
}

// ChapterListResponse 章节列表响应
type ChapterListResponse struct {
	Chapters   []*ChapterSummaryResponse `json:"chapters"`
	TotalWords int                       `json:"total_words"`
}

// ToChapterListResponse 转换为章节列表响应
func ToChapterListResponse(chapters []*entity.Chapter) *ChapterListResponse {
	resp := &ChapterListResponse{Chapters: make([]*ChapterSummaryResponse, 0, len(chapters))}
	for _, ch := range chapters {
		resp.TotalWords += ch.WordCount
		resp.Chapters = append(resp.Chapters, &ChapterSummaryResponse{
			ID:        ch.ID,
			Number:    ch.Number,
			Title:     ch.Title,
			Summary:   ch.Summary,
			WordCount: ch.WordCount,
			Status:    string(ch.Status),
			Version:   ch.Version,
			UpdatedAt: ch.UpdatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

// ChapterWriteResponse 生成或编辑后的章节，附带差异与生成元数据
type ChapterWriteResponse struct {
	Chapter  *ChapterResponse         `json:"chapter"`
	Diff     *manuscript.RevisionDiff `json:"diff,omitempty"`
	Metadata *generation.Metadata     `json:"metadata,omitempty"`
}

// ChapterReviewResponse 审阅结果
type ChapterReviewResponse struct {
	Chapter *ChapterResponse   `json:"chapter"`
	Review  *generation.Result `json:"review"`
}

// ChapterStatisticsResponse 章节统计
type ChapterStatisticsResponse struct {
	ChapterID  string             `json:"chapter_id"`
	Number     int                `json:"number"`
	Statistics quality.Statistics `json:"statistics"`
	Quality    quality.Score      `json:"quality"`
}

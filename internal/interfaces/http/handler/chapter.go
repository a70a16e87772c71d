package handler

import (
	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/application/novel"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/quality"
	"novel-studio-api/internal/domain/repository"
	"novel-studio-api/internal/interfaces/http/dto"
	"novel-studio-api/pkg/errors"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	chapterRepo repository.ChapterRepository
	studio      *novel.Studio
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(chapterRepo repository.ChapterRepository, studio *novel.Studio) *ChapterHandler {
	return &ChapterHandler{
		chapterRepo: chapterRepo,
		studio:      studio,
	}
}

// ListChapters 获取小说章节列表
// @Summary 章节列表
// @Tags Chapters
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[dto.ChapterListResponse]
// @Router /v1/novels/{id}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	chapters, err := h.chapterRepo.ListByNovel(c.Request.Context(), dto.BindNovelID(c))
	if err != nil {
		respondError(c, err, "failed to list chapters")
		return
	}
	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// GenerateChapter 按大纲生成章节并保存
// @Summary 生成章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param id path string true "小说 ID"
// @Param body body dto.GenerateNovelChapterRequest true "章节号与选项"
// @Success 201 {object} dto.Response[dto.ChapterWriteResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/novels/{id}/chapters [post]
func (h *ChapterHandler) GenerateChapter(c *gin.Context) {
	var req dto.GenerateNovelChapterRequest
	if !bindJSON(c, &req) {
		return
	}

	out, err := h.studio.GenerateChapter(c.Request.Context(), dto.BindNovelID(c), req.Number, novel.ChapterOptions{
		Long:          req.Long,
		Outline:       req.Outline,
		Customization: req.Customization,
	})
	if err != nil {
		respondError(c, err, "failed to generate chapter")
		return
	}
	dto.Created(c, toWriteResponse(out))
}

// GetChapter 获取章节详情
// @Summary 章节详情
// @Tags Chapters
// @Produce json
// @Param cid path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/chapters/{cid} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	ch, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get chapter")
		return
	}
	dto.Success(c, dto.ToChapterResponse(ch))
}

// UpdateChapter 手工编辑章节
// @Summary 编辑章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.UpdateChapterRequest true "修改内容"
// @Success 200 {object} dto.Response[dto.ChapterWriteResponse]
// @Router /v1/chapters/{cid} [put]
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	var req dto.UpdateChapterRequest
	if !bindJSON(c, &req) {
		return
	}

	ch, diff, err := h.studio.EditChapter(c.Request.Context(), dto.BindChapterID(c), req.Content, req.Title, req.Approved)
	if err != nil {
		respondError(c, err, "failed to update chapter")
		return
	}
	dto.Success(c, &dto.ChapterWriteResponse{Chapter: dto.ToChapterResponse(ch), Diff: diff})
}

// DeleteChapter 删除章节
// @Summary 删除章节
// @Tags Chapters
// @Param cid path string true "章节 ID"
// @Success 204 "No Content"
// @Router /v1/chapters/{cid} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	ch, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get chapter")
		return
	}
	if !ch.IsEditable() {
		respondError(c, errors.ErrGenerationInProgress.WithDetail("chapter is being generated"), "failed to delete chapter")
		return
	}
	if err := h.chapterRepo.Delete(c.Request.Context(), ch.ID); err != nil {
		respondError(c, err, "failed to delete chapter")
		return
	}
	dto.NoContent(c)
}

// ReviewChapter 审阅已保存章节
// @Summary 审阅章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.ReviewRequest false "覆盖项"
// @Success 200 {object} dto.Response[dto.ChapterReviewResponse]
// @Router /v1/chapters/{cid}/review [post]
func (h *ChapterHandler) ReviewChapter(c *gin.Context) {
	var req dto.ReviewRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	ch, res, err := h.studio.ReviewChapter(c.Request.Context(), dto.BindChapterID(c), req.Customization)
	if err != nil {
		respondError(c, err, "failed to review chapter")
		return
	}
	dto.Success(c, &dto.ChapterReviewResponse{Chapter: dto.ToChapterResponse(ch), Review: res})
}

// RegenerateChapter 重新生成章节，旧正文记为修订
// @Summary 重新生成章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param cid path string true "章节 ID"
// @Param body body dto.RegenerateChapterRequest false "选项"
// @Success 200 {object} dto.Response[dto.ChapterWriteResponse]
// @Router /v1/chapters/{cid}/regenerate [post]
func (h *ChapterHandler) RegenerateChapter(c *gin.Context) {
	var req dto.RegenerateChapterRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	out, err := h.studio.RegenerateChapter(c.Request.Context(), dto.BindChapterID(c), novel.ChapterOptions{
		Long:          req.Long,
		Outline:       req.Outline,
		Customization: req.Customization,
	})
	if err != nil {
		respondError(c, err, "failed to regenerate chapter")
		return
	}
	dto.Success(c, toWriteResponse(out))
}

// GetStatistics 章节文本统计与质量评分
// @Summary 章节统计
// @Tags Chapters
// @Produce json
// @Param cid path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterStatisticsResponse]
// @Router /v1/chapters/{cid}/statistics [get]
func (h *ChapterHandler) GetStatistics(c *gin.Context) {
	ch, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get chapter")
		return
	}
	report := quality.Analyze(ch.Content)
	dto.Success(c, &dto.ChapterStatisticsResponse{
		ChapterID:  ch.ID,
		Number:     ch.Number,
		Statistics: report.Statistics,
		Quality:    report.Score,
	})
}

func (h *ChapterHandler) load(c *gin.Context) (*entity.Chapter, error) {
	id := dto.BindChapterID(c)
	ch, err := h.chapterRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, errors.ErrChapterNotFound.WithDetail(id)
	}
	return ch, nil
}

func toWriteResponse(out *novel.ChapterOutcome) *dto.ChapterWriteResponse {
	resp := &dto.ChapterWriteResponse{
		Chapter: dto.ToChapterResponse(out.Chapter),
		Diff:    out.Diff,
	}
	if out.Result != nil {
		resp.Metadata = &out.Result.Metadata
	}
	return resp
}

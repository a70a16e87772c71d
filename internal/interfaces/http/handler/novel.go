package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/application/catalog"
	"novel-studio-api/internal/application/manuscript"
	"novel-studio-api/internal/application/novel"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/repository"
	"novel-studio-api/internal/interfaces/http/dto"
	"novel-studio-api/pkg/errors"
	"novel-studio-api/pkg/logger"
)

// NovelHandler 小说处理器：CRUD、整本生成与导出
type NovelHandler struct {
	novelRepo   repository.NovelRepository
	chapterRepo repository.ChapterRepository
	catalog     *catalog.Service
	runner      *novel.Runner
}

// NewNovelHandler 创建小说处理器
func NewNovelHandler(
	novelRepo repository.NovelRepository,
	chapterRepo repository.ChapterRepository,
	catalog *catalog.Service,
	runner *novel.Runner,
) *NovelHandler {
	return &NovelHandler{
		novelRepo:   novelRepo,
		chapterRepo: chapterRepo,
		catalog:     catalog,
		runner:      runner,
	}
}

// ListNovels 获取小说列表
// @Summary 获取小说列表
// @Tags Novels
// @Produce json
// @Param genre_id query string false "题材 ID"
// @Param status query string false "状态"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.NovelListResponse]
// @Router /v1/novels [get]
func (h *NovelHandler) ListNovels(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	filter := &repository.NovelFilter{
		GenreID: c.Query("genre_id"),
		Status:  entity.NovelStatus(c.Query("status")),
	}
	if filter.Status != "" && !entity.ValidNovelStatus(filter.Status) {
		dto.BadRequest(c, "invalid status filter")
		return
	}

	result, err := h.novelRepo.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, err, "failed to list novels")
		return
	}

	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, dto.ToNovelListResponse(result.Items), meta)
}

// CreateNovel 创建小说
// @Summary 创建小说
// @Tags Novels
// @Accept json
// @Produce json
// @Param body body dto.CreateNovelRequest true "小说信息"
// @Success 201 {object} dto.Response[dto.NovelResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/novels [post]
func (h *NovelHandler) CreateNovel(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateNovelRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.catalog.Get(ctx, req.GenreID); err != nil {
		respondError(c, err, "failed to resolve genre")
		return
	}

	n := req.ToNovelEntity()
	if err := h.novelRepo.Create(ctx, n); err != nil {
		respondError(c, err, "failed to create novel")
		return
	}
	logger.Info(ctx, "novel created", "novel_id", n.ID, "genre_id", n.GenreID)
	dto.Created(c, dto.ToNovelResponse(n))
}

// GetNovel 获取小说详情
// @Summary 获取小说详情
// @Tags Novels
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[dto.NovelResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/novels/{id} [get]
func (h *NovelHandler) GetNovel(c *gin.Context) {
	n, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get novel")
		return
	}
	dto.Success(c, dto.ToNovelResponse(n))
}

// UpdateNovel 更新小说
// @Summary 更新小说
// @Tags Novels
// @Accept json
// @Produce json
// @Param id path string true "小说 ID"
// @Param body body dto.UpdateNovelRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.NovelResponse]
// @Router /v1/novels/{id} [put]
func (h *NovelHandler) UpdateNovel(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdateNovelRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get novel")
		return
	}
	if req.Status != nil && !entity.ValidNovelStatus(entity.NovelStatus(*req.Status)) {
		dto.BadRequest(c, "invalid status: "+*req.Status)
		return
	}
	if n.Status == entity.NovelStatusDrafting && req.Outline != nil {
		respondError(c, errors.ErrGenerationInProgress.WithDetail("outline cannot change while drafting"), "failed to update novel")
		return
	}
	if req.GenreID != nil && *req.GenreID != n.GenreID {
		if _, err := h.catalog.Get(ctx, *req.GenreID); err != nil {
			respondError(c, err, "failed to resolve genre")
			return
		}
	}

	req.ApplyToNovel(n)
	if err := h.novelRepo.Update(ctx, n); err != nil {
		respondError(c, err, "failed to update novel")
		return
	}
	dto.Success(c, dto.ToNovelResponse(n))
}

// DeleteNovel 删除小说及其章节与封面
// @Summary 删除小说
// @Tags Novels
// @Param id path string true "小说 ID"
// @Success 204 "No Content"
// @Router /v1/novels/{id} [delete]
func (h *NovelHandler) DeleteNovel(c *gin.Context) {
	n, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get novel")
		return
	}
	if n.Status == entity.NovelStatusDrafting {
		respondError(c, errors.ErrGenerationInProgress.WithDetail("cancel the complete generation first"), "failed to delete novel")
		return
	}
	if err := h.novelRepo.Delete(c.Request.Context(), n.ID); err != nil {
		respondError(c, err, "failed to delete novel")
		return
	}
	dto.NoContent(c)
}

// StartComplete 启动整本生成（后台运行）
// @Summary 整本生成
// @Tags Novels
// @Produce json
// @Param id path string true "小说 ID"
// @Success 202 {object} dto.Response[dto.ProgressResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/novels/{id}/generate-complete [post]
func (h *NovelHandler) StartComplete(c *gin.Context) {
	p, err := h.runner.Start(c.Request.Context(), dto.BindNovelID(c))
	if err != nil {
		respondError(c, err, "failed to start complete generation")
		return
	}
	dto.Accepted(c, dto.ToProgressResponse(p))
}

// CancelComplete 请求取消整本生成；当前章节完成后停止
// @Summary 取消整本生成
// @Tags Novels
// @Produce json
// @Param id path string true "小说 ID"
// @Success 202 {object} dto.Response[dto.ProgressResponse]
// @Router /v1/novels/{id}/generate-complete [delete]
func (h *NovelHandler) CancelComplete(c *gin.Context) {
	ctx := c.Request.Context()
	novelID := dto.BindNovelID(c)
	if err := h.runner.Cancel(ctx, novelID); err != nil {
		respondError(c, err, "failed to cancel complete generation")
		return
	}
	p, err := h.runner.Progress(ctx, novelID)
	if err != nil {
		respondError(c, err, "failed to get progress")
		return
	}
	dto.Accepted(c, dto.ToProgressResponse(p))
}

// GetProgress 整本生成进度
// @Summary 整本生成进度
// @Tags Novels
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[dto.ProgressResponse]
// @Router /v1/novels/{id}/progress [get]
func (h *NovelHandler) GetProgress(c *gin.Context) {
	p, err := h.runner.Progress(c.Request.Context(), dto.BindNovelID(c))
	if err != nil {
		respondError(c, err, "failed to get progress")
		return
	}
	dto.Success(c, dto.ToProgressResponse(p))
}

// Export 导出书稿（markdown 或 html）
// @Summary 导出书稿
// @Tags Novels
// @Produce text/markdown,text/html
// @Param id path string true "小说 ID"
// @Param format query string false "md/html" default(md)
// @Success 200 {string} string
// @Router /v1/novels/{id}/export [get]
func (h *NovelHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	format, err := manuscript.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, errors.ErrInvalidParam.WithDetail(err.Error()), "invalid export format")
		return
	}
	n, err := h.load(c)
	if err != nil {
		respondError(c, err, "failed to get novel")
		return
	}
	chapters, err := h.chapterRepo.ListByNovel(ctx, n.ID)
	if err != nil {
		respondError(c, err, "failed to list chapters")
		return
	}

	body, err := manuscript.Export(format, n, chapters)
	if err != nil {
		respondError(c, err, "failed to render manuscript")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, fileSlug(n.Title), format))
	c.Data(http.StatusOK, format.ContentType(), []byte(body))
}

func (h *NovelHandler) load(c *gin.Context) (*entity.Novel, error) {
	id := dto.BindNovelID(c)
	n, err := h.novelRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errors.ErrNovelNotFound.WithDetail(id)
	}
	return n, nil
}

// fileSlug 文件名只保留字母数字，其余替换为短横线
func fileSlug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "manuscript"
	}
	return slug
}

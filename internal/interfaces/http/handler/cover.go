package handler

import (
	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/application/novel"
	"novel-studio-api/internal/domain/repository"
	"novel-studio-api/internal/interfaces/http/dto"
)

// CoverHandler 封面处理器
type CoverHandler struct {
	coverRepo repository.CoverRepository
	studio    *novel.Studio
}

// NewCoverHandler 创建封面处理器
func NewCoverHandler(coverRepo repository.CoverRepository, studio *novel.Studio) *CoverHandler {
	return &CoverHandler{coverRepo: coverRepo, studio: studio}
}

// ListCovers 获取小说封面
// @Summary 封面列表
// @Tags Covers
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[dto.CoverListResponse]
// @Router /v1/novels/{id}/covers [get]
func (h *CoverHandler) ListCovers(c *gin.Context) {
	covers, err := h.coverRepo.ListByNovel(c.Request.Context(), dto.BindNovelID(c))
	if err != nil {
		respondError(c, err, "failed to list covers")
		return
	}
	dto.Success(c, dto.ToCoverListResponse(covers))
}

// GenerateCover 为小说生成封面；prompt 为空时由标题与简介拼出
// @Summary 生成小说封面
// @Tags Covers
// @Accept json
// @Produce json
// @Param id path string true "小说 ID"
// @Param body body dto.GenerateCoverRequest false "封面参数"
// @Success 201 {object} dto.Response[dto.CoverResponse]
// @Router /v1/novels/{id}/covers [post]
func (h *CoverHandler) GenerateCover(c *gin.Context) {
	var req dto.GenerateCoverRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	cover, _, err := h.studio.GenerateCover(c.Request.Context(), dto.BindNovelID(c), req.CoverInput, req.Customization)
	if err != nil {
		respondError(c, err, "failed to generate cover")
		return
	}
	dto.Created(c, dto.ToCoverResponse(cover))
}

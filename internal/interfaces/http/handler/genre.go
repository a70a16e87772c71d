package handler

import (
	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/application/catalog"
	"novel-studio-api/internal/interfaces/http/dto"
)

// GenreHandler 题材目录处理器
type GenreHandler struct {
	catalog *catalog.Service
}

// NewGenreHandler 创建题材处理器
func NewGenreHandler(catalog *catalog.Service) *GenreHandler {
	return &GenreHandler{catalog: catalog}
}

// ListGenres 获取启用的题材
// @Summary 题材列表
// @Tags Genres
// @Produce json
// @Success 200 {object} dto.Response[dto.GenreListResponse]
// @Router /v1/genres [get]
func (h *GenreHandler) ListGenres(c *gin.Context) {
	genres, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to list genres")
		return
	}
	dto.Success(c, dto.ToGenreListResponse(genres))
}

// GetGenre 获取题材详情
// @Summary 题材详情
// @Tags Genres
// @Produce json
// @Param id path string true "题材 ID"
// @Success 200 {object} dto.Response[dto.GenreResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/genres/{id} [get]
func (h *GenreHandler) GetGenre(c *gin.Context) {
	genre, err := h.catalog.Get(c.Request.Context(), dto.BindGenreID(c))
	if err != nil {
		respondError(c, err, "failed to get genre")
		return
	}
	dto.Success(c, dto.ToGenreResponse(genre))
}

// GetPromptingContext 返回某阶段嵌入提示词的题材上下文
// @Summary 题材提示词上下文
// @Tags Genres
// @Produce json
// @Param id path string true "题材 ID"
// @Param stage path string true "planning/drafting/reviewing/image/raw"
// @Success 200 {object} dto.Response[generation.PromptingContext]
// @Router /v1/genres/{id}/prompting-context/{stage} [get]
func (h *GenreHandler) GetPromptingContext(c *gin.Context) {
	pc, err := h.catalog.PromptingContext(c.Request.Context(), dto.BindGenreID(c), c.Param("stage"))
	if err != nil {
		respondError(c, err, "failed to build prompting context")
		return
	}
	dto.Success(c, pc)
}

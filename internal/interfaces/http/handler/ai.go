// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/quality"
	"novel-studio-api/internal/interfaces/http/dto"
	"novel-studio-api/pkg/errors"
)

// AIHandler 无状态生成接口：各阶段直接调用生成编排，不落库
type AIHandler struct {
	gen    *generation.Service
	genres GenreResolver
}

// NewAIHandler 创建生成接口处理器
func NewAIHandler(gen *generation.Service, genres GenreResolver) *AIHandler {
	return &AIHandler{gen: gen, genres: genres}
}

// GeneratePremise 生成故事构思
// @Summary 生成故事构思
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GeneratePremiseRequest true "构思请求"
// @Success 200 {object} dto.Response[generation.Result]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/ai/generate-premise [post]
func (h *AIHandler) GeneratePremise(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.GeneratePremiseRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := resolveGenre(ctx, h.genres, req.GenreRef)
	if err != nil {
		respondError(c, err, "failed to resolve genre")
		return
	}

	res, err := h.gen.GeneratePremise(ctx, genre, generation.PremiseInput{AdditionalInputs: req.AdditionalInputs}, req.Customization)
	if err != nil {
		respondError(c, err, "failed to generate premise")
		return
	}
	dto.Success(c, res)
}

// GenerateOutline 生成三幕大纲
// @Summary 生成三幕大纲
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateOutlineRequest true "大纲请求"
// @Success 200 {object} dto.Response[generation.Result]
// @Router /v1/ai/generate-outline [post]
func (h *AIHandler) GenerateOutline(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.GenerateOutlineRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := resolveGenre(ctx, h.genres, req.GenreRef)
	if err != nil {
		respondError(c, err, "failed to resolve genre")
		return
	}

	res, err := h.gen.GenerateOutline(ctx, genre, req.ToInput(), req.Customization)
	if err != nil {
		respondError(c, err, "failed to generate outline")
		return
	}
	dto.Success(c, res)
}

// GenerateCharacters 生成角色档案
// @Summary 生成角色档案
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateCharactersRequest true "角色请求"
// @Success 200 {object} dto.Response[generation.Result]
// @Router /v1/ai/generate-characters [post]
func (h *AIHandler) GenerateCharacters(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.GenerateCharactersRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := resolveGenre(ctx, h.genres, req.GenreRef)
	if err != nil {
		respondError(c, err, "failed to resolve genre")
		return
	}

	res, err := h.gen.GenerateCharacters(ctx, genre, req.ToInput(), req.Customization)
	if err != nil {
		respondError(c, err, "failed to generate characters")
		return
	}
	dto.Success(c, res)
}

// GenerateChapter 生成章节正文
// @Summary 生成章节正文
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateChapterRequest true "章节请求"
// @Success 200 {object} dto.Response[generation.Result]
// @Router /v1/ai/generate-chapter [post]
func (h *AIHandler) GenerateChapter(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.GenerateChapterRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := resolveGenre(ctx, h.genres, req.GenreRef)
	if err != nil {
		respondError(c, err, "failed to resolve genre")
		return
	}

	var res *generation.Result
	if req.Long {
		res, err = h.gen.GenerateLongChapter(ctx, genre, req.ToInput(), req.Customization)
	} else {
		res, err = h.gen.GenerateChapter(ctx, genre, req.ToInput(), req.Customization)
	}
	if err != nil {
		respondError(c, err, "failed to generate chapter")
		return
	}
	dto.Success(c, res)
}

// ReviewChapter 审阅章节
// @Summary 审阅章节
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.ReviewChapterRequest true "审阅请求"
// @Success 200 {object} dto.Response[generation.Result]
// @Router /v1/ai/review-chapter [post]
func (h *AIHandler) ReviewChapter(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ReviewChapterRequest
	if !bindJSON(c, &req) {
		return
	}
	genre, err := resolveGenre(ctx, h.genres, req.GenreRef)
	if err != nil {
		respondError(c, err, "failed to resolve genre")
		return
	}

	res, err := h.gen.ReviewChapter(ctx, genre, req.ToInput(), req.Customization)
	if err != nil {
		respondError(c, err, "failed to review chapter")
		return
	}
	dto.Success(c, res)
}

// GenerateCover 生成封面图
// @Summary 生成封面图
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateCoverRequest true "封面请求"
// @Success 200 {object} dto.Response[generation.Result]
// @Router /v1/ai/generate-cover [post]
func (h *AIHandler) GenerateCover(c *gin.Context) {
	var req dto.GenerateCoverRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.gen.GenerateCoverImage(c.Request.Context(), req.CoverInput, req.Customization)
	if err != nil {
		respondError(c, err, "failed to generate cover")
		return
	}
	dto.Success(c, res)
}

// AnalyzeText 计算文本统计与质量评分，不调用模型
// @Summary 文本质量分析
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.AnalyzeTextRequest true "文本"
// @Success 200 {object} dto.Response[dto.AnalyzeTextResponse]
// @Router /v1/ai/analyze-text [post]
func (h *AIHandler) AnalyzeText(c *gin.Context) {
	var req dto.AnalyzeTextRequest
	if !bindJSON(c, &req) {
		return
	}
	report := quality.Analyze(req.Text)
	dto.Success(c, &dto.AnalyzeTextResponse{Statistics: report.Statistics, Quality: report.Score})
}

// GenerateText 透传提示词到指定提供商
// @Summary 透传文本生成
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateTextRequest true "提示词"
// @Success 200 {object} dto.Response[generation.Result]
// @Router /v1/ai/generate-text [post]
func (h *AIHandler) GenerateText(c *gin.Context) {
	var req dto.GenerateTextRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.gen.GenerateTextWithProvider(c.Request.Context(), req.ToInput(), req.Customization)
	if err != nil {
		respondError(c, err, "failed to generate text")
		return
	}
	dto.Success(c, res)
}

// TextVariations 同一提示词在多个提供商上各生成一次；单个失败不影响其他结果
// @Summary 多提供商对比
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.TextVariationsRequest true "提示词与目标"
// @Success 200 {object} dto.Response[dto.TextVariationsResponse]
// @Router /v1/ai/text-variations [post]
func (h *AIHandler) TextVariations(c *gin.Context) {
	var req dto.TextVariationsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Prompt == "" {
		respondError(c, errors.ErrInvalidParam.WithDetail("prompt is required"), "invalid text variations request")
		return
	}

	vs := h.gen.GenerateTextVariations(c.Request.Context(), req.ToInput(), req.Targets, req.Customization)
	dto.Success(c, dto.NewTextVariationsResponse(vs))
}

// ListProviders 返回已注册的提供商与各参数分组的默认值
// @Summary 提供商列表
// @Tags AI
// @Produce json
// @Success 200 {object} dto.Response[dto.ProvidersResponse]
// @Router /v1/ai/providers [get]
func (h *AIHandler) ListProviders(c *gin.Context) {
	defaults := make(map[generation.Stage]generation.ProviderConfig)
	for stage, sd := range h.gen.Defaults().Stages {
		defaults[stage] = generation.ProviderConfig{
			ProviderID:  sd.ProviderID,
			ModelID:     sd.ModelID,
			MaxTokens:   sd.MaxTokens,
			Temperature: sd.Temperature,
		}
	}
	providers := h.gen.Describe()
	if providers == nil {
		providers = []generation.ProviderInfo{}
	}
	dto.Success(c, &dto.ProvidersResponse{Providers: providers, Defaults: defaults})
}

// GetSchema 返回某阶段结果内容的 JSON Schema
// @Summary 阶段结果 Schema
// @Tags AI
// @Produce json
// @Param phase path string true "阶段"
// @Success 200 {object} dto.Response[jsonschema.Schema]
// @Router /v1/ai/schemas/{phase} [get]
func (h *AIHandler) GetSchema(c *gin.Context) {
	phase, err := generation.ParsePhase(c.Param("phase"))
	if err != nil {
		respondError(c, errors.ErrInvalidParam.WithDetail(err.Error()), "unknown phase")
		return
	}
	schema, ok := generation.ResultSchema(phase)
	if !ok {
		dto.NotFound(c, "schema not found")
		return
	}
	dto.Success(c, schema)
}

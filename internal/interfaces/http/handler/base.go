package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/interfaces/http/dto"
	"novel-studio-api/pkg/errors"
	"novel-studio-api/pkg/logger"
)

// GenreResolver 按 ID 解析题材上下文
type GenreResolver interface {
	Resolve(ctx context.Context, id string) (generation.GenreContext, error)
}

// resolveGenre 内联题材优先，其次按 genre_id 查目录
func resolveGenre(ctx context.Context, genres GenreResolver, ref dto.GenreRef) (generation.GenreContext, error) {
	if ref.Inline() {
		return *ref.Genre, nil
	}
	id := strings.TrimSpace(ref.GenreID)
	if id == "" {
		return generation.GenreContext{}, errors.ErrInvalidParam.WithDetail("genre_id or genre is required")
	}
	if genres == nil {
		return generation.GenreContext{}, errors.ErrServiceUnavailable.WithDetail("genre catalog not configured")
	}
	return genres.Resolve(ctx, id)
}

// respondError 把业务错误与生成错误映射为统一错误响应
func respondError(c *gin.Context, err error, fallback string) {
	status, message, detail := mapError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), fallback, err)
	} else {
		logger.Warn(c.Request.Context(), fallback, "error", err.Error())
	}
	if message == "" {
		message = fallback
	}
	dto.ErrorWithDetail(c, status, message, detail)
}

func mapError(err error) (int, string, *dto.ErrorDetail) {
	detail := &dto.ErrorDetail{}

	var genErr *generation.GenerationError
	if stderrors.As(err, &genErr) {
		ms := genErr.GenerationTimeMs
		detail.Phase = string(genErr.Phase)
		detail.GenerationTimeMs = &ms
	}

	var (
		validationErr *generation.ValidationError
		parseErr      *generation.ParseError
		providerErr   *generation.ProviderError
	)
	switch {
	case stderrors.As(err, &validationErr):
		detail.ErrorCode = string(errors.CodeInvalidParam)
		detail.Field = validationErr.Field
		detail.Details = validationErr.Error()
		return http.StatusBadRequest, "invalid generation request", detail
	case stderrors.As(err, &parseErr):
		detail.ErrorCode = string(errors.CodeResponseParseFailed)
		detail.Field = parseErr.Field
		detail.Details = parseErr.Error()
		return errors.ErrResponseParseFailed.HTTPStatus, errors.ErrResponseParseFailed.Message, detail
	case stderrors.As(err, &providerErr):
		detail.ErrorCode = string(errors.CodeLLMProviderError)
		detail.Details = providerErr.Error()
		return errors.ErrLLMProviderError.HTTPStatus, errors.ErrLLMProviderError.Message, detail
	case errors.IsAppError(err):
		appErr := errors.AsAppError(err)
		detail.ErrorCode = string(appErr.Code)
		detail.Details = appErr.Detail
		return appErr.HTTPStatus, appErr.Message, detail
	case genErr != nil:
		detail.ErrorCode = string(errors.CodeGenerationFailed)
		detail.Details = err.Error()
		return errors.ErrGenerationFailed.HTTPStatus, errors.ErrGenerationFailed.Message, detail
	default:
		detail.ErrorCode = string(errors.CodeInternalError)
		return http.StatusInternalServerError, "", detail
	}
}

// bindJSON 绑定请求体，失败时直接返回 400
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		dto.ErrorWithDetail(c, http.StatusBadRequest, "invalid request body", &dto.ErrorDetail{
			ErrorCode: string(errors.CodeInvalidParam),
			Details:   err.Error(),
		})
		return false
	}
	return true
}

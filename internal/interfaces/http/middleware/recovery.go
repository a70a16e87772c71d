// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"novel-studio-api/internal/interfaces/http/dto"
	"novel-studio-api/pkg/errors"
	"novel-studio-api/pkg/logger"
)

// Recovery 捕获 panic 并返回统一错误响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "internal server error",
				Error:   &dto.ErrorDetail{ErrorCode: string(errors.CodeInternalError)},
				TraceID: c.GetString("trace_id"),
			})
		}()

		c.Next()
	}
}

package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 规范化分页参数
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// BindPage 从 Gin Context 绑定分页参数
func BindPage(c *gin.Context) PageRequest {
	req := PageRequest{
		Page:     parseIntWithDefault(c.Query("page"), 1),
		PageSize: parseIntWithDefault(c.Query("page_size"), 20),
	}
	req.Normalize()
	return req
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// BindNovelID 从 URI 绑定小说 ID
func BindNovelID(c *gin.Context) string {
	return c.Param("id")
}

// BindChapterID 从 URI 绑定章节 ID
func BindChapterID(c *gin.Context) string {
	return c.Param("cid")
}

// BindGenreID 从 URI 绑定题材 ID
func BindGenreID(c *gin.Context) string {
	return c.Param("id")
}

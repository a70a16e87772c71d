package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由；为 nil 的处理器对应的分组不注册
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	// 无状态生成
	if h.AI != nil {
		ai := v1.Group("/ai")
		{
			ai.POST("/generate-premise", h.AI.GeneratePremise)
			ai.POST("/generate-outline", h.AI.GenerateOutline)
			ai.POST("/generate-characters", h.AI.GenerateCharacters)
			ai.POST("/generate-chapter", h.AI.GenerateChapter)
			ai.POST("/review-chapter", h.AI.ReviewChapter)
			ai.POST("/generate-cover", h.AI.GenerateCover)
			ai.POST("/analyze-text", h.AI.AnalyzeText)
			ai.POST("/generate-text", h.AI.GenerateText)
			ai.POST("/text-variations", h.AI.TextVariations)
			ai.GET("/providers", h.AI.ListProviders)
			ai.GET("/schemas/:phase", h.AI.GetSchema)
		}
	}

	// 题材目录
	if h.Genre != nil {
		genres := v1.Group("/genres")
		{
			genres.GET("", h.Genre.ListGenres)
			genres.GET("/:id", h.Genre.GetGenre)
			genres.GET("/:id/prompting-context/:stage", h.Genre.GetPromptingContext)
		}
	}

	// 小说
	if h.Novel != nil {
		novels := v1.Group("/novels")
		{
			novels.GET("", h.Novel.ListNovels)
			novels.POST("", h.Novel.CreateNovel)
			novels.GET("/:id", h.Novel.GetNovel)
			novels.PUT("/:id", h.Novel.UpdateNovel)
			novels.DELETE("/:id", h.Novel.DeleteNovel)

			novels.POST("/:id/generate-complete", h.Novel.StartComplete)
			novels.DELETE("/:id/generate-complete", h.Novel.CancelComplete)
			novels.GET("/:id/progress", h.Novel.GetProgress)
			novels.GET("/:id/export", h.Novel.Export)

			if h.Chapter != nil {
				novels.GET("/:id/chapters", h.Chapter.ListChapters)
				novels.POST("/:id/chapters", h.Chapter.GenerateChapter)
			}
			if h.Cover != nil {
				novels.GET("/:id/covers", h.Cover.ListCovers)
				novels.POST("/:id/covers", h.Cover.GenerateCover)
			}
		}
	}

	// 章节
	if h.Chapter != nil {
		chapters := v1.Group("/chapters")
		{
			chapters.GET("/:cid", h.Chapter.GetChapter)
			chapters.PUT("/:cid", h.Chapter.UpdateChapter)
			chapters.DELETE("/:cid", h.Chapter.DeleteChapter)
			chapters.POST("/:cid/review", h.Chapter.ReviewChapter)
			chapters.POST("/:cid/regenerate", h.Chapter.RegenerateChapter)
			chapters.GET("/:cid/statistics", h.Chapter.GetStatistics)
		}
	}
}

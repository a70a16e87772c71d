// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"novel-studio-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)

	// GetByNumber 根据小说和章节号获取章节
	GetByNumber(ctx context.Context, novelID string, number int) (*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id string) error

	// ListByNovel 获取小说全部章节（按章节号排序）
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error)

	// PreviousChapters 获取指定章节号之前最近的 limit 个章节（按章节号升序）
	PreviousChapters(ctx context.Context, novelID string, before, limit int) ([]*entity.Chapter, error)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"novel-studio-api/internal/domain/entity"
)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id string) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapter entity.Chapter
	if err := db.First(&chapter, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &chapter, nil
}

// GetByNumber 根据小说和章节号获取章节
func (r *ChapterRepository) GetByNumber(ctx context.Context, novelID string, number int) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapter entity.Chapter
	if err := db.Where("novel_id = ? AND number = ?", novelID, number).First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter by number: %w", err)
	}
	return &chapter, nil
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	return nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Chapter{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return nil
}

// ListByNovel 获取小说全部章节
func (r *ChapterRepository) ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListByNovel")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapters []*entity.Chapter
	if err := db.Where("novel_id = ?", novelID).
		Order("number ASC").
		Find(&chapters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// PreviousChapters 获取 before 之前最近的 limit 个章节，结果按章节号升序
func (r *ChapterRepository) PreviousChapters(ctx context.Context, novelID string, before, limit int) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.PreviousChapters")
	defer span.End()

	if limit <= 0 {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var chapters []*entity.Chapter
	if err := db.Where("novel_id = ? AND number < ?", novelID, before).
		Order("number DESC").
		Limit(limit).
		Find(&chapters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list previous chapters: %w", err)
	}

	for i, j := 0, len(chapters)-1; i < j; i, j = i+1, j-1 {
		chapters[i], chapters[j] = chapters[j], chapters[i]
	}
	return chapters, nil
}

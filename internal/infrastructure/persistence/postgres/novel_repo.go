package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/repository"
)

// NovelRepository 小说仓储实现
type NovelRepository struct {
	client *Client
}

// NewNovelRepository 创建小说仓储
func NewNovelRepository(client *Client) *NovelRepository {
	return &NovelRepository{client: client}
}

// Create 创建小说
func (r *NovelRepository) Create(ctx context.Context, novel *entity.Novel) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(novel).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create novel: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取小说
func (r *NovelRepository) GetByID(ctx context.Context, id string) (*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var novel entity.Novel
	if err := db.First(&novel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get novel: %w", err)
	}
	return &novel, nil
}

// Update 更新小说
func (r *NovelRepository) Update(ctx context.Context, novel *entity.Novel) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(novel).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update novel: %w", err)
	}
	return nil
}

// UpdateStatus 更新小说状态
func (r *NovelRepository) UpdateStatus(ctx context.Context, id string, status entity.NovelStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Novel{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update novel status: %w", err)
	}
	return nil
}

// Delete 删除小说及其章节和封面
func (r *NovelRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Delete")
	defer span.End()

	err := getDB(ctx, r.client.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.Chapter{}, "novel_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.Cover{}, "novel_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Novel{}, "id = ?", id).Error
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete novel: %w", err)
	}
	return nil
}

// List 获取小说列表
func (r *NovelRepository) List(ctx context.Context, filter *repository.NovelFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Novel], error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Novel{})
	if filter != nil {
		if filter.GenreID != "" {
			query = query.Where("genre_id = ?", filter.GenreID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count novels: %w", err)
	}

	var novels []*entity.Novel
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&novels).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list novels: %w", err)
	}

	return repository.NewPagedResult(novels, total, pagination), nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"novel-studio-api/internal/domain/entity"
)

// CoverRepository 封面仓储实现
type CoverRepository struct {
	client *Client
}

// NewCoverRepository 创建封面仓储
func NewCoverRepository(client *Client) *CoverRepository {
	return &CoverRepository{client: client}
}

// Create 保存封面
func (r *CoverRepository) Create(ctx context.Context, cover *entity.Cover) error {
	ctx, span := tracer.Start(ctx, "postgres.CoverRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(cover).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create cover: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取封面
func (r *CoverRepository) GetByID(ctx context.Context, id string) (*entity.Cover, error) {
	ctx, span := tracer.Start(ctx, "postgres.CoverRepository.GetByID")
	defer span.End()

	var cover entity.Cover
	if err := getDB(ctx, r.client.db).First(&cover, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get cover: %w", err)
	}
	return &cover, nil
}

// ListByNovel 获取小说的封面，最新的在前
func (r *CoverRepository) ListByNovel(ctx context.Context, novelID string) ([]*entity.Cover, error) {
	ctx, span := tracer.Start(ctx, "postgres.CoverRepository.ListByNovel")
	defer span.End()

	var covers []*entity.Cover
	if err := getDB(ctx, r.client.db).Where("novel_id = ?", novelID).
		Order("created_at DESC").
		Find(&covers).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list covers: %w", err)
	}
	return covers, nil
}

// Delete 删除封面
func (r *CoverRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.CoverRepository.Delete")
	defer span.End()

	if err := getDB(ctx, r.client.db).Delete(&entity.Cover{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete cover: %w", err)
	}
	return nil
}

package repository

import (
	"context"

	"novel-studio-api/internal/domain/entity"
)

// NovelFilter 小说过滤条件
type NovelFilter struct {
	GenreID string
	Status  entity.NovelStatus
}

// NovelRepository 小说仓储接口
type NovelRepository interface {
	Create(ctx context.Context, novel *entity.Novel) error
	GetByID(ctx context.Context, id string) (*entity.Novel, error)
	Update(ctx context.Context, novel *entity.Novel) error
	// UpdateStatus 只更新状态列，供后台整本生成使用
	UpdateStatus(ctx context.Context, id string, status entity.NovelStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *NovelFilter, pagination Pagination) (*PagedResult[*entity.Novel], error)
}

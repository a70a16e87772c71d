package repository

import (
	"context"

	"novel-studio-api/internal/domain/entity"
)

// CoverRepository 封面仓储接口
type CoverRepository interface {
	Create(ctx context.Context, cover *entity.Cover) error
	GetByID(ctx context.Context, id string) (*entity.Cover, error)
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Cover, error)
	Delete(ctx context.Context, id string) error
}

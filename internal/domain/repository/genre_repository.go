package repository

import (
	"context"

	"novel-studio-api/internal/domain/entity"
)

// GenreRepository 题材仓储接口
type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	Update(ctx context.Context, genre *entity.Genre) error
	GetByID(ctx context.Context, id string) (*entity.Genre, error)
	GetByName(ctx context.Context, name string) (*entity.Genre, error)
	ListActive(ctx context.Context) ([]*entity.Genre, error)
}

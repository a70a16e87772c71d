package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"novel-studio-api/internal/domain/entity"
)

// GenreRepository 题材仓储实现
type GenreRepository struct {
	client *Client
}

// NewGenreRepository 创建题材仓储
func NewGenreRepository(client *Client) *GenreRepository {
	return &GenreRepository{client: client}
}

// Create 创建题材
func (r *GenreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.Create")
	defer span.End()

	if err := getDB(ctx, r.client.db).Create(genre).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create genre: %w", err)
	}
	return nil
}

// Update 更新题材
func (r *GenreRepository) Update(ctx context.Context, genre *entity.Genre) error {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.Update")
	defer span.End()

	if err := getDB(ctx, r.client.db).Save(genre).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update genre: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取题材
func (r *GenreRepository) GetByID(ctx context.Context, id string) (*entity.Genre, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.GetByID")
	defer span.End()

	return r.first(ctx, span, "id = ?", id)
}

// GetByName 根据名称获取题材（不区分大小写）
func (r *GenreRepository) GetByName(ctx context.Context, name string) (*entity.Genre, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.GetByName")
	defer span.End()

	return r.first(ctx, span, "LOWER(name) = LOWER(?)", name)
}

func (r *GenreRepository) first(ctx context.Context, span trace.Span, query string, arg any) (*entity.Genre, error) {
	var genre entity.Genre
	if err := getDB(ctx, r.client.db).Where(query, arg).First(&genre).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &genre, nil
}

// ListActive 获取启用的题材，按名称排序
func (r *GenreRepository) ListActive(ctx context.Context) ([]*entity.Genre, error) {
	ctx, span := tracer.Start(ctx, "postgres.GenreRepository.ListActive")
	defer span.End()

	var genres []*entity.Genre
	if err := getDB(ctx, r.client.db).Where("is_active = ?", true).
		Order("name ASC").
		Find(&genres).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

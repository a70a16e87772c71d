// Package catalog 提供题材目录：查询、缓存与内置题材初始化
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/repository"
	apperrors "novel-studio-api/pkg/errors"
	"novel-studio-api/pkg/logger"
)

const (
	cacheKeyList    = "genre:list"
	cacheKeyPrefix  = "genre:id:"
	cachePattern    = "genre:*"
	defaultCacheTTL = 10 * time.Minute
)

//go:embed seed_genres.json
var seedGenres []byte

// Cache 读穿缓存端口
type Cache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) ([]byte, error)
	InvalidatePattern(ctx context.Context, pattern string) error
}

// Service 题材目录服务
type Service struct {
	repo  repository.GenreRepository
	cache Cache
	ttl   time.Duration
	tx    repository.Transactor
}

// NewService 创建题材目录；cache 为 nil 时直接读库
func NewService(repo repository.GenreRepository, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// WithTransactor 让 Seed 在单个事务中写入全部题材
func (s *Service) WithTransactor(tx repository.Transactor) *Service {
	s.tx = tx
	return s
}

// List 返回全部启用的题材
func (s *Service) List(ctx context.Context) ([]*entity.Genre, error) {
	load := func() (any, error) { return s.repo.ListActive(ctx) }
	if s.cache == nil {
		return s.repo.ListActive(ctx)
	}

	data, err := s.cache.GetOrLoadSafe(ctx, cacheKeyList, s.ttl, load)
	if err != nil {
		return nil, err
	}
	var genres []*entity.Genre
	if err := json.Unmarshal(data, &genres); err != nil {
		return nil, fmt.Errorf("failed to decode cached genres: %w", err)
	}
	return genres, nil
}

// Get 按 ID 获取题材，不存在时返回 ErrGenreNotFound
func (s *Service) Get(ctx context.Context, id string) (*entity.Genre, error) {
	var (
		genre *entity.Genre
		err   error
	)
	if s.cache == nil {
		genre, err = s.repo.GetByID(ctx, id)
	} else {
		genre, err = s.getCached(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if genre == nil {
		return nil, apperrors.ErrGenreNotFound.WithDetail(id)
	}
	return genre, nil
}

func (s *Service) getCached(ctx context.Context, id string) (*entity.Genre, error) {
	data, err := s.cache.GetOrLoadSafe(ctx, cacheKeyPrefix+id, s.ttl, func() (any, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	// 不存在的记录会被缓存为 null
	var genre *entity.Genre
	if err := json.Unmarshal(data, &genre); err != nil {
		return nil, fmt.Errorf("failed to decode cached genre: %w", err)
	}
	return genre, nil
}

// Resolve 按 ID 取题材并转换为生成上下文
func (s *Service) Resolve(ctx context.Context, id string) (generation.GenreContext, error) {
	genre, err := s.Get(ctx, id)
	if err != nil {
		return generation.GenreContext{}, err
	}
	return ToGenerationContext(genre), nil
}

// PromptingContext 返回某个阶段嵌入提示词的题材上下文
func (s *Service) PromptingContext(ctx context.Context, id, stage string) (generation.PromptingContext, error) {
	st, err := generation.ParseStage(stage)
	if err != nil {
		return generation.PromptingContext{}, apperrors.ErrInvalidParam.WithDetail(err.Error())
	}
	gc, err := s.Resolve(ctx, id)
	if err != nil {
		return generation.PromptingContext{}, err
	}
	return gc.PromptingContext(st), nil
}

// Seed 按名称写入或更新内置题材，返回处理的题材数量
func (s *Service) Seed(ctx context.Context) (int, error) {
	var builtin []*entity.Genre
	if err := json.Unmarshal(seedGenres, &builtin); err != nil {
		return 0, fmt.Errorf("failed to decode seed genres: %w", err)
	}

	upsert := func(ctx context.Context) error {
		for _, g := range builtin {
			if err := s.upsert(ctx, g); err != nil {
				return err
			}
		}
		return nil
	}
	var err error
	if s.tx != nil {
		err = s.tx.WithTransaction(ctx, upsert)
	} else {
		err = upsert(ctx)
	}
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx)
	return len(builtin), nil
}

func (s *Service) upsert(ctx context.Context, g *entity.Genre) error {
	g.IsActive = true
	existing, err := s.repo.GetByName(ctx, g.Name)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := s.repo.Create(ctx, g); err != nil {
			return err
		}
		logger.Info(ctx, "genre seeded", "name", g.Name)
		return nil
	}
	g.ID = existing.ID
	g.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, g); err != nil {
		return err
	}
	logger.Debug(ctx, "genre updated", "name", g.Name)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePattern(ctx, cachePattern); err != nil {
		logger.Warn(ctx, "failed to invalidate genre cache", "error", err.Error())
	}
}

// ToGenerationContext 把持久化的题材转换为生成上下文；未知阶段的指导被忽略
func ToGenerationContext(g *entity.Genre) generation.GenreContext {
	gc := generation.GenreContext{
		Name:               g.Name,
		Description:        g.Description,
		KeyCharacteristics: []string(g.KeyCharacteristics),
		StyleGuidance:      g.StyleGuidance,
		ContentGuidance:    g.ContentGuidance,
		StructureGuidance:  g.StructureGuidance,
		ChristianSpecific:  g.ChristianSpecific,
	}
	if len(g.PhaseGuidance) > 0 {
		gc.PhaseGuidance = make(map[generation.Stage]map[string]any, len(g.PhaseGuidance))
		for name, guidance := range g.PhaseGuidance {
			st, err := generation.ParseStage(strings.ToLower(name))
			if err != nil {
				continue
			}
			gc.PhaseGuidance[st] = guidance
		}
	}
	return gc
}

// Package wire 组装应用依赖
package wire

import (
	"context"
	"fmt"

	"novel-studio-api/internal/application/catalog"
	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/application/novel"
	"novel-studio-api/internal/config"
	"novel-studio-api/internal/infrastructure/llm"
	"novel-studio-api/internal/infrastructure/messaging"
	"novel-studio-api/internal/infrastructure/persistence/postgres"
	"novel-studio-api/internal/infrastructure/persistence/redis"
	"novel-studio-api/internal/interfaces/http/handler"
	"novel-studio-api/internal/interfaces/http/router"
	"novel-studio-api/pkg/logger"
)

// PostgresOnlyDataLayer 仅 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient    *postgres.Client
	GenreRepo   *postgres.GenreRepository
	NovelRepo   *postgres.NovelRepository
	ChapterRepo *postgres.ChapterRepository
	CoverRepo   *postgres.CoverRepository
}

// App 运行中的应用
type App struct {
	Router *router.Router
	Runner *novel.Runner
}

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	pg, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return &PostgresOnlyDataLayer{
		PgClient:    pg,
		GenreRepo:   postgres.NewGenreRepository(pg),
		NovelRepo:   postgres.NewNovelRepository(pg),
		ChapterRepo: postgres.NewChapterRepository(pg),
		CoverRepo:   postgres.NewCoverRepository(pg),
	}, cleanup, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config, version string) (*App, func(), error) {
	data, cleanupPG, err := InitializePostgresOnly(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Postgres.AutoMigrate {
		if err := data.PgClient.AutoMigrate(ctx); err != nil {
			cleanupPG()
			return nil, nil, err
		}
	}

	redisClient, cleanupRedis, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanupPG()
		return nil, nil, err
	}
	cleanup := func() {
		cleanupRedis()
		cleanupPG()
	}

	registry, err := llm.NewRegistryFromConfig(ctx, &cfg.LLM)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build provider registry: %w", err)
	}
	if len(registry.Describe()) == 0 {
		logger.Warn(ctx, "no llm providers configured, generation endpoints will fail validation")
	}

	genres := catalog.NewService(data.GenreRepo, redis.NewCache(redisClient, "genres"), cfg.Cache.Redis.GenreTTL)
	gen := generation.NewService(registry, generation.DefaultsFromConfig(cfg.Generation))
	studio := novel.NewStudio(data.NovelRepo, data.ChapterRepo, data.CoverRepo, genres, gen)
	runner := novel.NewRunner(studio, redis.NewProgressStore(redisClient, cfg.Cache.Redis.ProgressTTL), ProvideRunnerOptions(cfg, redisClient))

	r := router.New(cfg, router.Handlers{
		Health:  handler.NewHealthHandler(version, data.PgClient, redisClient),
		AI:      handler.NewAIHandler(gen, genres),
		Genre:   handler.NewGenreHandler(genres),
		Novel:   handler.NewNovelHandler(data.NovelRepo, data.ChapterRepo, genres, runner),
		Chapter: handler.NewChapterHandler(data.ChapterRepo, studio),
		Cover:   handler.NewCoverHandler(data.CoverRepo, studio),
	})

	return &App{Router: r, Runner: runner}, cleanup, nil
}

// ProvideRunnerOptions 整本生成策略；启用事件流时挂上 Redis Stream 生产者
func ProvideRunnerOptions(cfg *config.Config, redisClient *redis.Client) novel.RunnerOptions {
	batch := cfg.Generation.Batch
	opts := novel.RunnerOptions{
		ContinueOnError: batch.ContinueOnError,
		LongChapters:    batch.LongChapters,
	}
	if batch.Events.Enabled {
		opts.Events = messaging.NewProducer(redisClient.Redis(), messaging.Stream(batch.Events.Stream), batch.Events.MaxLen)
	}
	return opts
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// Package main 初始化数据库表结构并写入题材目录种子数据
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"novel-studio-api/internal/application/catalog"
	"novel-studio-api/internal/config"
	"novel-studio-api/internal/infrastructure/persistence/postgres"
	"novel-studio-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 同步表结构
	if err := dataLayer.PgClient.AutoMigrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Schema migrated.")

	// 4. 在一个事务中写入题材目录；已存在的按名称更新
	svc := catalog.NewService(dataLayer.GenreRepo, nil, 0).WithTransactor(postgres.NewTxManager(dataLayer.PgClient))
	n, err := svc.Seed(ctx)
	if err != nil {
		log.Fatalf("failed to seed genres: %v", err)
	}
	fmt.Printf("Seeded %d genres.\n", n)

	fmt.Println("Bootstrap completed successfully.")
}

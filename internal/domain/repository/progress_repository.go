package repository

import (
	"context"

	"novel-studio-api/internal/domain/entity"
)

// ProgressStore 整本生成进度与取消标记存储
type ProgressStore interface {
	// Save 覆盖保存进度
	Save(ctx context.Context, progress *entity.BatchProgress) error

	// Get 获取进度，不存在时返回 nil, nil
	Get(ctx context.Context, novelID string) (*entity.BatchProgress, error)

	// RequestCancel 设置取消标记
	RequestCancel(ctx context.Context, novelID string) error

	// Cancelled 是否已请求取消
	Cancelled(ctx context.Context, novelID string) (bool, error)

	// ClearCancel 清除取消标记
	ClearCancel(ctx context.Context, novelID string) error
}

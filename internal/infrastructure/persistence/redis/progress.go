package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"novel-studio-api/internal/domain/entity"
)

const (
	progressKeyPrefix  = "novel:progress:"
	cancelKeyPrefix    = "novel:cancel:"
	defaultProgressTTL = 72 * time.Hour
)

// ProgressStore 基于 Redis 的整本生成进度存储
type ProgressStore struct {
	client *Client
	ttl    time.Duration
}

// NewProgressStore 创建进度存储
func NewProgressStore(client *Client, ttl time.Duration) *ProgressStore {
	if ttl <= 0 {
		ttl = defaultProgressTTL
	}
	return &ProgressStore{client: client, ttl: ttl}
}

// Save 覆盖保存进度
func (s *ProgressStore) Save(ctx context.Context, progress *entity.BatchProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := s.client.Set(ctx, progressKeyPrefix+progress.NovelID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// Get 获取进度
func (s *ProgressStore) Get(ctx context.Context, novelID string) (*entity.BatchProgress, error) {
	data, err := s.client.Get(ctx, progressKeyPrefix+novelID)
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	var progress entity.BatchProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return &progress, nil
}

// RequestCancel 设置取消标记
func (s *ProgressStore) RequestCancel(ctx context.Context, novelID string) error {
	if err := s.client.Set(ctx, cancelKeyPrefix+novelID, "1", s.ttl); err != nil {
		return fmt.Errorf("failed to set cancel flag: %w", err)
	}
	return nil
}

// Cancelled 是否已请求取消
func (s *ProgressStore) Cancelled(ctx context.Context, novelID string) (bool, error) {
	ok, err := s.client.Exists(ctx, cancelKeyPrefix+novelID)
	if err != nil {
		return false, fmt.Errorf("failed to check cancel flag: %w", err)
	}
	return ok, nil
}

// ClearCancel 清除取消标记
func (s *ProgressStore) ClearCancel(ctx context.Context, novelID string) error {
	if err := s.client.Del(ctx, cancelKeyPrefix+novelID); err != nil {
		return fmt.Errorf("failed to clear cancel flag: %w", err)
	}
	return nil
}

package entity

import "time"

// BatchStatus 整本生成运行状态
type BatchStatus string

const (
	BatchStatusRunning   BatchStatus = "running"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusCancelled BatchStatus = "cancelled"
	BatchStatusFailed    BatchStatus = "failed"
)

// FailedChapter 单章失败记录
type FailedChapter struct {
	Number int    `json:"number"`
	Error  string `json:"error"`
}

// BatchProgress 整本生成进度快照
type BatchProgress struct {
	NovelID           string          `json:"novel_id"`
	Status            BatchStatus     `json:"status"`
	TotalChapters     int             `json:"total_chapters"`
	CompletedChapters int             `json:"completed_chapters"`
	CurrentChapter    int             `json:"current_chapter"`
	FailedChapters    []FailedChapter `json:"failed_chapters"`
	LastError         string          `json:"last_error,omitempty"`
	StartedAt         time.Time       `json:"started_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PercentComplete 已完成章节占比（0-100，取整）
func (p *BatchProgress) PercentComplete() int {
	if p.TotalChapters <= 0 {
		return 0
	}
	return p.CompletedChapters * 100 / p.TotalChapters
}

// Running 是否仍在运行
func (p *BatchProgress) Running() bool {
	return p.Status == BatchStatusRunning
}

// BatchEventType 整本生成事件类型
type BatchEventType string

const (
	BatchEventStarted          BatchEventType = "batch_started"
	BatchEventChapterCompleted BatchEventType = "chapter_completed"
	BatchEventChapterFailed    BatchEventType = "chapter_failed"
	BatchEventFinished         BatchEventType = "batch_finished"
)

// BatchEvent 整本生成过程中对外发布的事件
type BatchEvent struct {
	Type              BatchEventType `json:"type"`
	NovelID           string         `json:"novel_id"`
	Chapter           int            `json:"chapter,omitempty"`
	Status            BatchStatus    `json:"status"`
	CompletedChapters int            `json:"completed_chapters"`
	TotalChapters     int            `json:"total_chapters"`
	Error             string         `json:"error,omitempty"`
	At                time.Time      `json:"at"`
}

// Event 基于当前进度生成事件
func (p *BatchProgress) Event(t BatchEventType, chapter int, errMsg string) *BatchEvent {
	return &BatchEvent{
		Type:              t,
		NovelID:           p.NovelID,
		Chapter:           chapter,
		Status:            p.Status,
		CompletedChapters: p.CompletedChapters,
		TotalChapters:     p.TotalChapters,
		Error:             errMsg,
		At:                time.Now().UTC(),
	}
}

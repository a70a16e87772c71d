package novel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/repository"
	apperrors "novel-studio-api/pkg/errors"
	"novel-studio-api/pkg/logger"
	"novel-studio-api/pkg/metrics"
)

// RunnerOptions 整本生成策略
type RunnerOptions struct {
	// ContinueOnError 单章失败后是否继续后续章节
	ContinueOnError bool
	// LongChapters 使用长章节模式
	LongChapters bool
	// Events 为空时不发布事件
	Events EventPublisher
}

// EventPublisher 发布整本生成事件
type EventPublisher interface {
	PublishBatchEvent(ctx context.Context, ev *entity.BatchEvent) (string, error)
}

// Runner 整本生成：在后台按章节顺序逐章生成缺失的章节
type Runner struct {
	studio   *Studio
	progress repository.ProgressStore
	opts     RunnerOptions

	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// NewRunner 创建整本生成器
func NewRunner(studio *Studio, progress repository.ProgressStore, opts RunnerOptions) *Runner {
	return &Runner{
		studio:   studio,
		progress: progress,
		opts:     opts,
		running:  make(map[string]struct{}),
	}
}

// Start 校验小说状态并启动后台生成，返回初始进度
func (r *Runner) Start(ctx context.Context, novelID string) (*entity.BatchProgress, error) {
	novel, err := r.studio.loadNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	if r.isRunning(novelID) {
		return nil, apperrors.ErrGenerationInProgress.WithDetail(novelID)
	}
	if !novel.CanStartBatch() {
		return nil, apperrors.ErrConflict.WithDetail(fmt.Sprintf("novel status %q does not allow complete generation", novel.Status))
	}
	outline, err := OutlineChapters(novel)
	if err != nil {
		return nil, err
	}
	genre, err := r.studio.genres.Resolve(ctx, novel.GenreID)
	if err != nil {
		return nil, err
	}

	existing, err := r.studio.chapters.ListByNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(existing))
	for _, ch := range existing {
		done[ch.Number] = chapterDone(ch)
	}

	now := time.Now().UTC()
	p := &entity.BatchProgress{
		NovelID:        novelID,
		Status:         entity.BatchStatusRunning,
		TotalChapters:  len(outline),
		FailedChapters: []entity.FailedChapter{},
		StartedAt:      now,
		UpdatedAt:      now,
	}
	for _, oc := range outline {
		if done[oc.Number] {
			p.CompletedChapters++
		}
	}

	if !r.claim(novelID) {
		return nil, apperrors.ErrGenerationInProgress.WithDetail(novelID)
	}
	if err := r.progress.ClearCancel(ctx, novelID); err != nil {
		r.release(novelID)
		return nil, err
	}
	if err := r.progress.Save(ctx, p); err != nil {
		r.release(novelID)
		return nil, err
	}
	if err := r.studio.novels.UpdateStatus(ctx, novelID, entity.NovelStatusDrafting); err != nil {
		r.release(novelID)
		return nil, err
	}

	// 后台运行不随请求取消，保留日志与追踪上下文
	bg := logger.WithContext(context.WithoutCancel(ctx), logger.NovelIDKey, novelID)
	snapshot := *p
	r.publish(bg, snapshot.Event(entity.BatchEventStarted, 0, ""))
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(novelID)
		r.run(bg, novel, genre, outline, done, p)
	}()

	logger.Info(ctx, "complete novel generation started",
		"novel_id", novelID,
		"total_chapters", p.TotalChapters,
		"already_completed", p.CompletedChapters,
	)
	return &snapshot, nil
}

func chapterDone(ch *entity.Chapter) bool {
	if strings.TrimSpace(ch.Content) == "" {
		return false
	}
	return ch.Status == entity.ChapterStatusReview || ch.Status == entity.ChapterStatusCompleted
}

func (r *Runner) run(ctx context.Context, novel *entity.Novel, genre generation.GenreContext, outline []generation.OutlineChapter, done map[int]bool, p *entity.BatchProgress) {
	metrics.ActiveBatchRuns.Inc()
	defer metrics.ActiveBatchRuns.Dec()

	var cancelled, stopped bool
	for _, oc := range outline {
		if done[oc.Number] {
			continue
		}
		if r.cancelRequested(ctx, novel.ID) {
			cancelled = true
			break
		}

		p.CurrentChapter = oc.Number
		r.save(ctx, p)

		if err := r.generateOne(ctx, novel, genre, oc); err != nil {
			metrics.BatchChaptersTotal.WithLabelValues("failed").Inc()
			logger.Error(ctx, "batch chapter generation failed", err, "chapter", oc.Number)
			p.FailedChapters = append(p.FailedChapters, entity.FailedChapter{Number: oc.Number, Error: err.Error()})
			p.LastError = err.Error()
			r.publish(ctx, p.Event(entity.BatchEventChapterFailed, oc.Number, err.Error()))
			if !r.opts.ContinueOnError {
				stopped = true
				break
			}
			continue
		}
		metrics.BatchChaptersTotal.WithLabelValues("succeeded").Inc()
		p.CompletedChapters++
		r.publish(ctx, p.Event(entity.BatchEventChapterCompleted, oc.Number, ""))
	}

	novelStatus := entity.NovelStatusCompleted
	switch {
	case cancelled:
		p.Status = entity.BatchStatusCancelled
		novelStatus = entity.NovelStatusPaused
	case stopped:
		p.Status = entity.BatchStatusFailed
		novelStatus = entity.NovelStatusPaused
	default:
		p.Status = entity.BatchStatusCompleted
	}
	p.CurrentChapter = 0
	r.save(ctx, p)
	r.publish(ctx, p.Event(entity.BatchEventFinished, 0, p.LastError))

	if err := r.studio.novels.UpdateStatus(ctx, novel.ID, novelStatus); err != nil {
		logger.Error(ctx, "failed to update novel status after batch", err, "status", string(novelStatus))
	}
	if err := r.progress.ClearCancel(ctx, novel.ID); err != nil {
		logger.Warn(ctx, "failed to clear cancel flag", "error", err.Error())
	}

	logger.Info(ctx, "complete novel generation finished",
		"status", string(p.Status),
		"completed", p.CompletedChapters,
		"failed", len(p.FailedChapters),
	)
}

// generateOne 生成单章；生成期间章节状态为 generating，失败时置为 failed
func (r *Runner) generateOne(ctx context.Context, novel *entity.Novel, genre generation.GenreContext, oc generation.OutlineChapter) error {
	s := r.studio
	ctx = logger.WithContext(ctx, logger.ChapterIDKey, fmt.Sprintf("%s#%d", novel.ID, oc.Number))

	ch, err := s.chapters.GetByNumber(ctx, novel.ID, oc.Number)
	if err != nil {
		return err
	}
	created := ch == nil
	if created {
		ch = entity.NewChapter(novel.ID, oc.Number)
	}
	ch.Title = oc.Title
	ch.Summary = oc.Summary
	ch.Objectives = oc.Objectives
	ch.Status = entity.ChapterStatusGenerating
	if err := s.save(ctx, ch, created); err != nil {
		return err
	}

	outline := generation.ChapterOutline{Number: oc.Number, Title: oc.Title, Summary: oc.Summary, Objectives: oc.Objectives}
	if _, err := s.draft(ctx, novel, genre, ch, outline, ChapterOptions{Long: r.opts.LongChapters}); err != nil {
		ch.Status = entity.ChapterStatusFailed
		if uerr := s.chapters.Update(ctx, ch); uerr != nil {
			logger.Warn(ctx, "failed to mark chapter failed", "error", uerr.Error())
		}
		return err
	}
	return nil
}

// Cancel 请求取消正在进行的整本生成；当前章节会完成后再停止
func (r *Runner) Cancel(ctx context.Context, novelID string) error {
	p, err := r.progress.Get(ctx, novelID)
	if err != nil {
		return err
	}
	if p == nil || !p.Running() {
		return apperrors.ErrConflict.WithDetail("no complete generation in progress")
	}
	if err := r.progress.RequestCancel(ctx, novelID); err != nil {
		return err
	}
	logger.Info(ctx, "complete novel generation cancel requested", "novel_id", novelID)
	return nil
}

// Progress 返回最近一次整本生成的进度
func (r *Runner) Progress(ctx context.Context, novelID string) (*entity.BatchProgress, error) {
	if _, err := r.studio.loadNovel(ctx, novelID); err != nil {
		return nil, err
	}
	p, err := r.progress.Get(ctx, novelID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFound.WithDetail("no complete generation recorded for this novel")
	}
	return p, nil
}

// Wait 等待所有后台运行结束
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown 对所有运行中的小说请求取消，并等待其在章节边界退出；ctx 到期则放弃等待
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.running))
	for id := range r.running {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.progress.RequestCancel(ctx, id); err != nil {
			logger.Warn(ctx, "failed to request cancel on shutdown", "novel_id", id, "error", err.Error())
		}
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) cancelRequested(ctx context.Context, novelID string) bool {
	ok, err := r.progress.Cancelled(ctx, novelID)
	if err != nil {
		logger.Warn(ctx, "failed to read cancel flag", "error", err.Error())
		return false
	}
	return ok
}

func (r *Runner) save(ctx context.Context, p *entity.BatchProgress) {
	p.UpdatedAt = time.Now().UTC()
	if err := r.progress.Save(ctx, p); err != nil {
		logger.Warn(ctx, "failed to save batch progress", "error", err.Error())
	}
}

// publish 事件发布失败只记录日志，不影响生成
func (r *Runner) publish(ctx context.Context, ev *entity.BatchEvent) {
	if r.opts.Events == nil {
		return
	}
	if _, err := r.opts.Events.PublishBatchEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "failed to publish batch event", "type", string(ev.Type), "error", err.Error())
	}
}

func (r *Runner) isRunning(novelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[novelID]
	return ok
}

func (r *Runner) claim(novelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[novelID]; ok {
		return false
	}
	r.running[novelID] = struct{}{}
	return true
}

func (r *Runner) release(novelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, novelID)
}

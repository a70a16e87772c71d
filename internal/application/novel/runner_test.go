package novel

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"novel-studio-api/internal/domain/entity"
	apperrors "novel-studio-api/pkg/errors"
)

func TestRunnerGeneratesMissingChaptersInOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 第 1 章已完成，应被跳过
	if _, err := f.studio.GenerateChapter(ctx, f.novel.ID, 1, ChapterOptions{}); err != nil {
		t.Fatal(err)
	}
	f.gen.calls = nil

	r := NewRunner(f.studio, f.progress, RunnerOptions{ContinueOnError: true, LongChapters: true})
	p, err := r.Start(ctx, f.novel.ID)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if p.Status != entity.BatchStatusRunning || p.TotalChapters != 3 || p.CompletedChapters != 1 {
		t.Errorf("initial progress = %+v", p)
	}
	r.Wait()

	if got := f.gen.numbers(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("generated chapters = %v, want [2 3]", got)
	}
	if f.gen.long != 2 {
		t.Errorf("long generations = %d", f.gen.long)
	}

	final, err := r.Progress(ctx, f.novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != entity.BatchStatusCompleted || final.CompletedChapters != 3 || final.PercentComplete() != 100 {
		t.Errorf("final progress = %+v", final)
	}
	if final.CurrentChapter != 0 || len(final.FailedChapters) != 0 {
		t.Errorf("final progress = %+v", final)
	}
	if got := f.novels.status(f.novel.ID); got != entity.NovelStatusCompleted {
		t.Errorf("novel status = %s", got)
	}

	chapters, _ := f.chapters.ListByNovel(ctx, f.novel.ID)
	if len(chapters) != 3 {
		t.Fatalf("chapters = %d", len(chapters))
	}
	for _, ch := range chapters {
		if ch.Status != entity.ChapterStatusReview || ch.Content == "" {
			t.Errorf("chapter %d = status %s", ch.Number, ch.Status)
		}
	}
	// 第 3 章以第 2 章摘要作为前文
	last := f.gen.calls[1]
	if last.Context.PreviousChapter == nil || last.Context.PreviousChapter.Number != 2 {
		t.Errorf("previous chapter = %+v", last.Context.PreviousChapter)
	}
}

func TestRunnerContinueOnError(t *testing.T) {
	f := newFixture()
	f.gen.failOn[2] = errors.New("provider timeout")

	r := NewRunner(f.studio, f.progress, RunnerOptions{ContinueOnError: true})
	if _, err := r.Start(context.Background(), f.novel.ID); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	if got := f.gen.numbers(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("generated chapters = %v", got)
	}
	p, _ := f.progress.Get(context.Background(), f.novel.ID)
	if p.Status != entity.BatchStatusCompleted || p.CompletedChapters != 2 {
		t.Errorf("progress = %+v", p)
	}
	if len(p.FailedChapters) != 1 || p.FailedChapters[0].Number != 2 || p.LastError != "provider timeout" {
		t.Errorf("failed chapters = %+v, last error %q", p.FailedChapters, p.LastError)
	}
	ch, _ := f.chapters.GetByNumber(context.Background(), f.novel.ID, 2)
	if ch == nil || ch.Status != entity.ChapterStatusFailed {
		t.Errorf("failed chapter = %+v", ch)
	}
}

func TestRunnerStopsOnError(t *testing.T) {
	f := newFixture()
	f.gen.failOn[2] = errors.New("provider timeout")

	r := NewRunner(f.studio, f.progress, RunnerOptions{})
	if _, err := r.Start(context.Background(), f.novel.ID); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	if got := f.gen.numbers(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("generated chapters = %v", got)
	}
	p, _ := f.progress.Get(context.Background(), f.novel.ID)
	if p.Status != entity.BatchStatusFailed || p.CompletedChapters != 1 {
		t.Errorf("progress = %+v", p)
	}
	if got := f.novels.status(f.novel.ID); got != entity.NovelStatusPaused {
		t.Errorf("novel status = %s, want paused", got)
	}

	// 暂停后可重新启动，只补齐缺失的章节
	f.gen.failOn = map[int]error{}
	f.gen.calls = nil
	if _, err := r.Start(context.Background(), f.novel.ID); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	r.Wait()
	if got := f.gen.numbers(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("resumed chapters = %v", got)
	}
	if got := f.novels.status(f.novel.ID); got != entity.NovelStatusCompleted {
		t.Errorf("novel status = %s", got)
	}
}

func TestRunnerCancelBetweenChapters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := NewRunner(f.studio, f.progress, RunnerOptions{ContinueOnError: true})

	f.gen.onDraft = func(number int) {
		if number == 1 {
			if err := r.Cancel(ctx, f.novel.ID); err != nil {
				t.Errorf("Cancel() error = %v", err)
			}
		}
	}
	if _, err := r.Start(ctx, f.novel.ID); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	// 当前章节完成后停止
	if got := f.gen.numbers(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("generated chapters = %v, want [1]", got)
	}
	p, _ := f.progress.Get(ctx, f.novel.ID)
	if p.Status != entity.BatchStatusCancelled || p.CompletedChapters != 1 {
		t.Errorf("progress = %+v", p)
	}
	if got := f.novels.status(f.novel.ID); got != entity.NovelStatusPaused {
		t.Errorf("novel status = %s, want paused", got)
	}
	if cancelled, _ := f.progress.Cancelled(ctx, f.novel.ID); cancelled {
		t.Error("cancel flag should be cleared after the run")
	}
}

func TestRunnerStartRejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := NewRunner(f.studio, f.progress, RunnerOptions{})

	if _, err := r.Start(ctx, "missing"); appCode(err) != apperrors.CodeNovelNotFound {
		t.Errorf("missing novel: %v", err)
	}

	_ = f.novels.UpdateStatus(ctx, f.novel.ID, entity.NovelStatusCompleted)
	if _, err := r.Start(ctx, f.novel.ID); appCode(err) != apperrors.CodeConflict {
		t.Errorf("completed novel: %v", err)
	}

	_ = f.novels.UpdateStatus(ctx, f.novel.ID, entity.NovelStatusPlanning)
	f.novel.Outline = nil
	f.novel.Status = entity.NovelStatusPlanning
	_ = f.novels.Update(ctx, f.novel)
	if _, err := r.Start(ctx, f.novel.ID); appCode(err) != apperrors.CodeInvalidParam {
		t.Errorf("novel without outline: %v", err)
	}
}

func TestRunnerRejectsConcurrentStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := NewRunner(f.studio, f.progress, RunnerOptions{})

	release := make(chan struct{})
	started := make(chan struct{})
	f.gen.onDraft = func(number int) {
		if number == 1 {
			close(started)
			<-release
		}
	}
	if _, err := r.Start(ctx, f.novel.ID); err != nil {
		t.Fatal(err)
	}
	<-started

	if _, err := r.Start(ctx, f.novel.ID); appCode(err) != apperrors.CodeGenerationInProgress {
		t.Errorf("second Start() error = %v, want generation in progress", err)
	}
	p, err := r.Progress(ctx, f.novel.ID)
	if err != nil || !p.Running() || p.CurrentChapter != 1 {
		t.Errorf("progress while running = %+v, %v", p, err)
	}
	close(release)
	r.Wait()
}

func TestRunnerCancelAndProgressWithoutRun(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := NewRunner(f.studio, f.progress, RunnerOptions{})

	if err := r.Cancel(ctx, f.novel.ID); appCode(err) != apperrors.CodeConflict {
		t.Errorf("Cancel() error = %v, want conflict", err)
	}
	if _, err := r.Progress(ctx, f.novel.ID); appCode(err) != apperrors.CodeNotFound {
		t.Errorf("Progress() error = %v, want not found", err)
	}
	if _, err := r.Progress(ctx, "missing"); appCode(err) != apperrors.CodeNovelNotFound {
		t.Errorf("Progress() missing novel = %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*entity.BatchEvent
	err    error
}

func (p *recordingPublisher) PublishBatchEvent(_ context.Context, ev *entity.BatchEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return "1-0", p.err
}

func (p *recordingPublisher) types() []entity.BatchEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]entity.BatchEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestRunnerPublishesEvents(t *testing.T) {
	f := newFixture()
	f.gen.failOn[2] = errors.New("provider timeout")
	pub := &recordingPublisher{}

	r := NewRunner(f.studio, f.progress, RunnerOptions{ContinueOnError: true, Events: pub})
	if _, err := r.Start(context.Background(), f.novel.ID); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	want := []entity.BatchEventType{
		entity.BatchEventStarted,
		entity.BatchEventChapterCompleted,
		entity.BatchEventChapterFailed,
		entity.BatchEventChapterCompleted,
		entity.BatchEventFinished,
	}
	if got := pub.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	failed := pub.events[2]
	if failed.Chapter != 2 || failed.Error != "provider timeout" || failed.NovelID != f.novel.ID {
		t.Errorf("failed event = %+v", failed)
	}
	last := pub.events[4]
	if last.Status != entity.BatchStatusCompleted || last.CompletedChapters != 2 || last.TotalChapters != 3 {
		t.Errorf("finished event = %+v", last)
	}
}

func TestRunnerIgnoresPublishFailures(t *testing.T) {
	f := newFixture()
	pub := &recordingPublisher{err: errors.New("redis down")}

	r := NewRunner(f.studio, f.progress, RunnerOptions{Events: pub})
	if _, err := r.Start(context.Background(), f.novel.ID); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	p, _ := f.progress.Get(context.Background(), f.novel.ID)
	if p.Status != entity.BatchStatusCompleted || p.CompletedChapters != 3 {
		t.Errorf("progress = %+v", p)
	}
}

func TestRunnerShutdownCancelsRunningNovels(t *testing.T) {
	f := newFixture()
	r := NewRunner(f.studio, f.progress, RunnerOptions{})

	release := make(chan struct{})
	started := make(chan struct{})
	f.gen.onDraft = func(number int) {
		if number == 1 {
			close(started)
			<-release
		}
	}
	if _, err := r.Start(context.Background(), f.novel.ID); err != nil {
		t.Fatal(err)
	}
	<-started

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Shutdown(expired); !errors.Is(err, context.Canceled) {
		t.Errorf("Shutdown() error = %v, want context.Canceled", err)
	}

	close(release)
	if err := r.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() after release error = %v", err)
	}
	if got := f.gen.numbers(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("generated chapters = %v, want [1]", got)
	}
	p, _ := f.progress.Get(context.Background(), f.novel.ID)
	if p.Status != entity.BatchStatusCancelled {
		t.Errorf("progress status = %s, want cancelled", p.Status)
	}
}

// Package novel 提供以小说为单位的生成流程：单章生成、审阅、封面与整本生成
package novel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/application/manuscript"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/repository"
	apperrors "novel-studio-api/pkg/errors"
	"novel-studio-api/pkg/logger"
)

// Generator 生成编排端口，由 generation.Service 实现
type Generator interface {
	GenerateChapter(ctx context.Context, genre generation.GenreContext, in generation.ChapterInput, c generation.Customization) (*generation.Result, error)
	GenerateLongChapter(ctx context.Context, genre generation.GenreContext, in generation.ChapterInput, c generation.Customization) (*generation.Result, error)
	ReviewChapter(ctx context.Context, genre generation.GenreContext, in generation.ReviewInput, c generation.Customization) (*generation.Result, error)
	GenerateCoverImage(ctx context.Context, in generation.CoverInput, c generation.Customization) (*generation.Result, error)
}

// GenreResolver 题材查询端口，由 catalog.Service 实现
type GenreResolver interface {
	Resolve(ctx context.Context, id string) (generation.GenreContext, error)
}

// Studio 小说维度的生成服务
type Studio struct {
	novels   repository.NovelRepository
	chapters repository.ChapterRepository
	covers   repository.CoverRepository
	genres   GenreResolver
	gen      Generator
}

// NewStudio 创建生成服务
func NewStudio(
	novels repository.NovelRepository,
	chapters repository.ChapterRepository,
	covers repository.CoverRepository,
	genres GenreResolver,
	gen Generator,
) *Studio {
	return &Studio{
		novels:   novels,
		chapters: chapters,
		covers:   covers,
		genres:   genres,
		gen:      gen,
	}
}

// ChapterOptions 单章生成选项
type ChapterOptions struct {
	Long bool
	// Outline 为空时从小说大纲中按章节号查找
	Outline *generation.ChapterOutline
	// Customization 覆盖小说设置中的同名字段
	Customization *generation.Customization
}

// ChapterOutcome 单章生成结果
type ChapterOutcome struct {
	Chapter *entity.Chapter
	Result  *generation.Result
	Diff    *manuscript.RevisionDiff
}

func (s *Studio) loadNovel(ctx context.Context, id string) (*entity.Novel, error) {
	novel, err := s.novels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, apperrors.ErrNovelNotFound.WithDetail(id)
	}
	return novel, nil
}

func (s *Studio) loadChapter(ctx context.Context, id string) (*entity.Chapter, error) {
	ch, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperrors.ErrChapterNotFound.WithDetail(id)
	}
	return ch, nil
}

// GenerateChapter 生成（或重新生成）小说的第 number 章并保存
func (s *Studio) GenerateChapter(ctx context.Context, novelID string, number int, opts ChapterOptions) (*ChapterOutcome, error) {
	if number < 1 {
		return nil, apperrors.ErrInvalidParam.WithDetail("chapter number must be >= 1")
	}
	novel, err := s.loadNovel(ctx, novelID)
	if err != nil {
		return nil, err
	}
	genre, err := s.genres.Resolve(ctx, novel.GenreID)
	if err != nil {
		return nil, err
	}

	outline := opts.Outline
	if outline == nil {
		outline, err = OutlineChapter(novel, number)
		if err != nil {
			return nil, err
		}
	}
	outline.Number = number

	existing, err := s.chapters.GetByNumber(ctx, novelID, number)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == entity.ChapterStatusGenerating {
		return nil, apperrors.ErrGenerationInProgress.WithDetail(fmt.Sprintf("chapter %d", number))
	}

	return s.draft(ctx, novel, genre, existing, *outline, opts)
}

// RegenerateChapter 按已保存章节的大纲重新生成正文，变更记入修订历史
func (s *Studio) RegenerateChapter(ctx context.Context, chapterID string, opts ChapterOptions) (*ChapterOutcome, error) {
	ch, err := s.loadChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if !ch.IsEditable() {
		return nil, apperrors.ErrGenerationInProgress.WithDetail(fmt.Sprintf("chapter %d", ch.Number))
	}
	novel, err := s.loadNovel(ctx, ch.NovelID)
	if err != nil {
		return nil, err
	}
	genre, err := s.genres.Resolve(ctx, novel.GenreID)
	if err != nil {
		return nil, err
	}

	outline := opts.Outline
	if outline == nil {
		outline = &generation.ChapterOutline{
			Number:     ch.Number,
			Title:      ch.Title,
			Summary:    ch.Summary,
			Objectives: []string(ch.Objectives),
		}
		if strings.TrimSpace(outline.Summary) == "" {
			if outline, err = OutlineChapter(novel, ch.Number); err != nil {
				return nil, err
			}
		}
	}
	outline.Number = ch.Number

	return s.draft(ctx, novel, genre, ch, *outline, opts)
}

// draft 调用生成并写回章节；existing 为 nil 时新建
func (s *Studio) draft(ctx context.Context, novel *entity.Novel, genre generation.GenreContext, existing *entity.Chapter, outline generation.ChapterOutline, opts ChapterOptions) (*ChapterOutcome, error) {
	ctx = logger.WithContext(ctx, logger.NovelIDKey, novel.ID)

	in := generation.ChapterInput{
		Outline: outline,
		Context: generation.ChapterContext{
			Premise:    novel.Premise,
			Characters: Characters(novel),
		},
	}
	prev, err := s.previousChapter(ctx, novel.ID, outline.Number)
	if err != nil {
		return nil, err
	}
	in.Context.PreviousChapter = prev

	custom := Customization(novel.Settings)
	if opts.Customization != nil {
		custom = MergeCustomization(custom, *opts.Customization)
	}

	var res *generation.Result
	if opts.Long {
		res, err = s.gen.GenerateLongChapter(ctx, genre, in, custom)
	} else {
		res, err = s.gen.GenerateChapter(ctx, genre, in, custom)
	}
	if err != nil {
		return nil, err
	}

	ch := existing
	if ch == nil {
		ch = entity.NewChapter(novel.ID, outline.Number)
	}
	ch.Title = outline.Title
	ch.Summary = outline.Summary
	ch.Objectives = outline.Objectives
	ch.Status = entity.ChapterStatusReview
	ch.GenerationMetadata = Metadata(res)

	out := &ChapterOutcome{Chapter: ch, Result: res}
	if existing == nil || strings.TrimSpace(existing.Content) == "" {
		ch.SetContent(res.Text())
		if err := s.save(ctx, ch, existing == nil); err != nil {
			return nil, err
		}
	} else {
		d := manuscript.RecordRevision(ch, "regenerate", res.Text())
		out.Diff = &d
		if err := s.chapters.Update(ctx, ch); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "chapter generated",
		"chapter", ch.Number,
		"word_count", ch.WordCount,
		"generation_time_ms", res.Metadata.GenerationTimeMs,
	)
	return out, nil
}

func (s *Studio) save(ctx context.Context, ch *entity.Chapter, create bool) error {
	if create {
		return s.chapters.Create(ctx, ch)
	}
	return s.chapters.Update(ctx, ch)
}

func (s *Studio) previousChapter(ctx context.Context, novelID string, number int) (*generation.PreviousChapter, error) {
	prev, err := s.chapters.PreviousChapters(ctx, novelID, number, 1)
	if err != nil {
		return nil, err
	}
	if len(prev) == 0 {
		return nil, nil
	}
	last := prev[len(prev)-1]
	if strings.TrimSpace(last.Summary) == "" {
		return nil, nil
	}
	return &generation.PreviousChapter{Number: last.Number, Title: last.Title, Summary: last.Summary}, nil
}

// ReviewChapter 审阅已保存的章节，结果写入 Review 字段
func (s *Studio) ReviewChapter(ctx context.Context, chapterID string, override *generation.Customization) (*entity.Chapter, *generation.Result, error) {
	ch, err := s.loadChapter(ctx, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(ch.Content) == "" {
		return nil, nil, apperrors.ErrInvalidParam.WithDetail("chapter has no content to review")
	}
	novel, err := s.loadNovel(ctx, ch.NovelID)
	if err != nil {
		return nil, nil, err
	}
	genre, err := s.genres.Resolve(ctx, novel.GenreID)
	if err != nil {
		return nil, nil, err
	}

	custom := Customization(novel.Settings)
	if override != nil {
		custom = MergeCustomization(custom, *override)
	}
	res, err := s.gen.ReviewChapter(ctx, genre, generation.ReviewInput{
		ChapterText:   ch.Content,
		ChapterNumber: ch.Number,
		Premise:       novel.Premise,
	}, custom)
	if err != nil {
		return nil, nil, err
	}

	if review, ok := res.Content.(*generation.Review); ok {
		ch.Review = review.Raw
	}
	if err := s.chapters.Update(ctx, ch); err != nil {
		return nil, nil, err
	}
	return ch, res, nil
}

// EditChapter 保存手工修改的正文并记录差异；approved 为 true 时标记完成
func (s *Studio) EditChapter(ctx context.Context, chapterID string, content *string, title *string, approved *bool) (*entity.Chapter, *manuscript.RevisionDiff, error) {
	ch, err := s.loadChapter(ctx, chapterID)
	if err != nil {
		return nil, nil, err
	}
	if !ch.IsEditable() {
		return nil, nil, apperrors.ErrGenerationInProgress.WithDetail(fmt.Sprintf("chapter %d", ch.Number))
	}

	var diff *manuscript.RevisionDiff
	if content != nil && *content != ch.Content {
		d := manuscript.RecordRevision(ch, "edit", *content)
		diff = &d
	}
	if title != nil {
		ch.Title = strings.TrimSpace(*title)
	}
	if approved != nil {
		if *approved {
			ch.Status = entity.ChapterStatusCompleted
		} else {
			ch.Status = entity.ChapterStatusReview
		}
	}
	if err := s.chapters.Update(ctx, ch); err != nil {
		return nil, nil, err
	}
	return ch, diff, nil
}

// GenerateCover 为小说生成封面并保存
func (s *Studio) GenerateCover(ctx context.Context, novelID string, in generation.CoverInput, custom generation.Customization) (*entity.Cover, *generation.Result, error) {
	novel, err := s.loadNovel(ctx, novelID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(in.Prompt) == "" {
		in.Prompt = DefaultCoverPrompt(novel)
	}

	res, err := s.gen.GenerateCoverImage(ctx, in, custom)
	if err != nil {
		return nil, nil, err
	}
	img, ok := res.Content.(*generation.CoverImage)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected cover content %T", res.Content)
	}

	cover := &entity.Cover{
		NovelID:            novel.ID,
		Prompt:             in.Prompt,
		RevisedPrompt:      img.RevisedPrompt,
		ImageURL:           img.ImageURL,
		Images:             img.URLs,
		Provider:           res.Metadata.ProviderID,
		Model:              res.Metadata.ModelID,
		GenerationMetadata: Metadata(res),
		CreatedAt:          time.Now(),
	}
	if err := s.covers.Create(ctx, cover); err != nil {
		return nil, nil, err
	}
	return cover, res, nil
}

// DefaultCoverPrompt 未提供提示词时按书名与梗概拼出封面描述
func DefaultCoverPrompt(novel *entity.Novel) string {
	premise := strings.TrimSpace(novel.Premise)
	if r := []rune(premise); len(r) > 300 {
		premise = string(r[:300])
	}
	return fmt.Sprintf("Book cover for %q. %s", novel.Title, premise)
}

// OutlineChapter 从小说保存的大纲中取出第 number 章
func OutlineChapter(novel *entity.Novel, number int) (*generation.ChapterOutline, error) {
	chapters, err := OutlineChapters(novel)
	if err != nil {
		return nil, err
	}
	for _, c := range chapters {
		if c.Number == number {
			return &generation.ChapterOutline{
				Number:     c.Number,
				Title:      c.Title,
				Summary:    c.Summary,
				Objectives: c.Objectives,
			}, nil
		}
	}
	return nil, apperrors.ErrInvalidParam.WithDetail(fmt.Sprintf("chapter %d not found in novel outline", number))
}

// OutlineChapters 解析小说大纲中的全部章节（按幕顺序）
func OutlineChapters(novel *entity.Novel) ([]generation.OutlineChapter, error) {
	if !novel.HasOutline() {
		return nil, apperrors.ErrInvalidParam.WithDetail("novel has no outline")
	}
	var outline generation.Outline
	if err := json.Unmarshal(novel.Outline, &outline); err != nil {
		return nil, apperrors.ErrInvalidParam.WithDetail("novel outline is not valid: " + err.Error())
	}
	chapters := outline.Chapters()
	for i := range chapters {
		if chapters[i].Number == 0 {
			chapters[i].Number = i + 1
		}
	}
	if len(chapters) == 0 {
		return nil, apperrors.ErrInvalidParam.WithDetail("novel outline lists no chapters")
	}
	return chapters, nil
}

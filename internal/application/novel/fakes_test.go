package novel

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/entity"
	"novel-studio-api/internal/domain/repository"
	apperrors "novel-studio-api/pkg/errors"
)

type memNovels struct {
	mu   sync.Mutex
	byID map[string]*entity.Novel
}

func (r *memNovels) Create(_ context.Context, n *entity.Novel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	cp := *n
	r.byID[n.ID] = &cp
	return nil
}

func (r *memNovels) GetByID(_ context.Context, id string) (*entity.Novel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *memNovels) Update(_ context.Context, n *entity.Novel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.byID[n.ID] = &cp
	return nil
}

func (r *memNovels) UpdateStatus(_ context.Context, id string, status entity.NovelStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return errors.New("novel not found")
	}
	n.Status = status
	return nil
}

func (r *memNovels) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memNovels) List(_ context.Context, _ *repository.NovelFilter, p repository.Pagination) (*repository.PagedResult[*entity.Novel], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*entity.Novel
	for _, n := range r.byID {
		items = append(items, n)
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (r *memNovels) status(id string) entity.NovelStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

type memChapters struct {
	mu   sync.Mutex
	byID map[string]*entity.Chapter
}

func (r *memChapters) Create(_ context.Context, ch *entity.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.NovelID == ch.NovelID && c.Number == ch.Number {
			return fmt.Errorf("duplicate chapter %d", ch.Number)
		}
	}
	ch.ID = uuid.NewString()
	ch.Analyze()
	cp := *ch
	r.byID[ch.ID] = &cp
	return nil
}

func (r *memChapters) GetByID(_ context.Context, id string) (*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memChapters) GetByNumber(_ context.Context, novelID string, number int) (*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.NovelID == novelID && c.Number == number {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memChapters) Update(_ context.Context, ch *entity.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[ch.ID]; !ok {
		return errors.New("chapter not found")
	}
	ch.Analyze()
	cp := *ch
	r.byID[ch.ID] = &cp
	return nil
}

func (r *memChapters) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memChapters) ListByNovel(_ context.Context, novelID string) ([]*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chapter
	for _, c := range r.byID {
		if c.NovelID == novelID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memChapters) PreviousChapters(ctx context.Context, novelID string, before, limit int) ([]*entity.Chapter, error) {
	all, _ := r.ListByNovel(ctx, novelID)
	var out []*entity.Chapter
	for _, c := range all {
		if c.Number < before {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type memCovers struct {
	mu     sync.Mutex
	covers []*entity.Cover
}

func (r *memCovers) Create(_ context.Context, c *entity.Cover) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	r.covers = append(r.covers, c)
	return nil
}

func (r *memCovers) GetByID(_ context.Context, id string) (*entity.Cover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.covers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCovers) ListByNovel(_ context.Context, novelID string) ([]*entity.Cover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Cover
	for _, c := range r.covers {
		if c.NovelID == novelID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCovers) Delete(_ context.Context, _ string) error { return nil }

type memProgress struct {
	mu     sync.Mutex
	data   map[string]entity.BatchProgress
	cancel map[string]bool
	saves  int
}

func newMemProgress() *memProgress {
	return &memProgress{data: map[string]entity.BatchProgress{}, cancel: map[string]bool{}}
}

func (s *memProgress) Save(_ context.Context, p *entity.BatchProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.FailedChapters = append([]entity.FailedChapter(nil), p.FailedChapters...)
	s.data[p.NovelID] = cp
	s.saves++
	return nil
}

func (s *memProgress) Get(_ context.Context, novelID string) (*entity.BatchProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data[novelID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memProgress) RequestCancel(_ context.Context, novelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel[novelID] = true
	return nil
}

func (s *memProgress) Cancelled(_ context.Context, novelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel[novelID], nil
}

func (s *memProgress) ClearCancel(_ context.Context, novelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancel, novelID)
	return nil
}

type staticGenres struct{}

func (staticGenres) Resolve(_ context.Context, id string) (generation.GenreContext, error) {
	if id == "" || id == "missing" {
		return generation.GenreContext{}, apperrors.ErrGenreNotFound.WithDetail(id)
	}
	return generation.GenreContext{Name: "Mystery", Description: "Puzzles"}, nil
}

// scriptedGenerator 按章节号返回固定文本；failOn 中的章节返回错误
type scriptedGenerator struct {
	mu       sync.Mutex
	calls    []generation.ChapterInput
	customs  []generation.Customization
	long     int
	failOn   map[int]error
	onDraft  func(number int)
	reviewed int
}

func (g *scriptedGenerator) chapter(in generation.ChapterInput, c generation.Customization) (*generation.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, in)
	g.customs = append(g.customs, c)
	hook := g.onDraft
	err := g.failOn[in.Outline.Number]
	g.mu.Unlock()

	if hook != nil {
		hook(in.Outline.Number)
	}
	if err != nil {
		return nil, err
	}
	return &generation.Result{
		Phase:   generation.PhaseChapter,
		Content: &generation.ChapterDraft{Text: fmt.Sprintf("Chapter %d text. The rain fell softly on the quiet town.", in.Outline.Number)},
		Metadata: generation.Metadata{
			ProviderID:       "openai",
			ModelID:          "gpt-4-turbo-preview",
			TokensUsed:       120,
			GenerationTimeMs: 15,
			GeneratedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}, nil
}

func (g *scriptedGenerator) GenerateChapter(_ context.Context, _ generation.GenreContext, in generation.ChapterInput, c generation.Customization) (*generation.Result, error) {
	return g.chapter(in, c)
}

func (g *scriptedGenerator) GenerateLongChapter(_ context.Context, _ generation.GenreContext, in generation.ChapterInput, c generation.Customization) (*generation.Result, error) {
	g.mu.Lock()
	g.long++
	g.mu.Unlock()
	return g.chapter(in, c)
}

func (g *scriptedGenerator) ReviewChapter(_ context.Context, _ generation.GenreContext, _ generation.ReviewInput, _ generation.Customization) (*generation.Result, error) {
	g.mu.Lock()
	g.reviewed++
	g.mu.Unlock()
	return &generation.Result{
		Phase:   generation.PhaseReview,
		Content: &generation.Review{Raw: []byte(`{"scores":{"overall":8}}`)},
	}, nil
}

func (g *scriptedGenerator) GenerateCoverImage(_ context.Context, in generation.CoverInput, _ generation.Customization) (*generation.Result, error) {
	return &generation.Result{
		Content: &generation.CoverImage{ImageURL: "https://img.example/1.png", URLs: []string{"https://img.example/1.png"}, RevisedPrompt: in.Prompt + " (revised)"},
		Metadata: generation.Metadata{
			ProviderID:  "openai",
			ModelID:     "dall-e-3",
			GeneratedAt: time.Now(),
		},
	}, nil
}

func (g *scriptedGenerator) numbers() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, 0, len(g.calls))
	for _, c := range g.calls {
		out = append(out, c.Outline.Number)
	}
	return out
}

const threeChapterOutline = `{
  "title": "The Quiet Town",
  "threeActStructure": {
    "act1": {"chapters": [{"number": 1, "title": "Arrival", "summary": "Maya arrives in town.", "objectives": ["introduce Maya"]}]},
    "act2": {"chapters": [{"number": 2, "title": "The Letter", "summary": "A letter surfaces."}]},
    "act3": {"chapters": [{"title": "Answers", "summary": "The truth comes out."}]}
  }
}`

type fixture struct {
	novels   *memNovels
	chapters *memChapters
	covers   *memCovers
	progress *memProgress
	gen      *scriptedGenerator
	studio   *Studio
	novel    *entity.Novel
}

func newFixture() *fixture {
	f := &fixture{
		novels:   &memNovels{byID: map[string]*entity.Novel{}},
		chapters: &memChapters{byID: map[string]*entity.Chapter{}},
		covers:   &memCovers{},
		progress: newMemProgress(),
		gen:      &scriptedGenerator{failOn: map[int]error{}},
	}
	f.studio = NewStudio(f.novels, f.chapters, f.covers, staticGenres{}, f.gen)

	n := entity.NewNovel("The Quiet Town", "A detective returns home to solve an old case.", "genre-1")
	n.Outline = []byte(threeChapterOutline)
	n.Characters = []entity.NovelCharacter{{Name: "Maya", Role: "protagonist"}}
	n.Settings = &entity.NovelSettings{ChapterWordMin: 1500, ChapterWordMax: 2500, WritingStyle: "literary"}
	_ = f.novels.Create(context.Background(), n)
	f.novel = n
	return f
}

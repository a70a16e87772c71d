package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/domain/entity"
	apperrors "novel-studio-api/pkg/errors"
)

type memGenreRepo struct {
	mu      sync.Mutex
	byID    map[string]*entity.Genre
	creates int
	updates int
	gets    int
}

func newMemGenreRepo() *memGenreRepo {
	return &memGenreRepo{byID: map[string]*entity.Genre{}}
}

func (r *memGenreRepo) Create(_ context.Context, g *entity.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = uuid.NewString()
	cp := *g
	r.byID[g.ID] = &cp
	r.creates++
	return nil
}

func (r *memGenreRepo) Update(_ context.Context, g *entity.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *g
	r.byID[g.ID] = &cp
	r.updates++
	return nil
}

func (r *memGenreRepo) GetByID(_ context.Context, id string) (*entity.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	g, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (r *memGenreRepo) GetByName(_ context.Context, name string) (*entity.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.byID {
		if strings.EqualFold(g.Name, name) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memGenreRepo) ListActive(_ context.Context) ([]*entity.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Genre
	for _, g := range r.byID {
		if g.IsActive {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memCache struct {
	data        map[string][]byte
	invalidated []string
}

func (c *memCache) GetOrLoadSafe(_ context.Context, key string, _ time.Duration, loader func() (any, error)) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	v, err := loader()
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	c.data[key] = b
	return b, nil
}

func (c *memCache) InvalidatePattern(_ context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	c.data = map[string][]byte{}
	return nil
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemGenreRepo()
	cache := &memCache{data: map[string][]byte{}}
	svc := NewService(repo, cache, time.Minute)

	n, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != 7 || repo.creates != 7 {
		t.Fatalf("seeded %d, creates %d, want 7", n, repo.creates)
	}

	if _, err := svc.Seed(ctx); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	if repo.creates != 7 || repo.updates != 7 {
		t.Errorf("creates = %d, updates = %d after reseed", repo.creates, repo.updates)
	}
	if len(cache.invalidated) != 2 || cache.invalidated[0] != "genre:*" {
		t.Errorf("invalidated = %v", cache.invalidated)
	}

	christian, _ := repo.GetByName(ctx, "christian fiction")
	if christian == nil || len(christian.ChristianSpecific) == 0 {
		t.Fatalf("Christian Fiction seed missing christian_specific: %+v", christian)
	}
	mystery, _ := repo.GetByName(ctx, "Mystery")
	if len(mystery.ChristianSpecific) != 0 {
		t.Error("Mystery should not carry christian_specific")
	}
	if len(mystery.KeyCharacteristics) != 5 {
		t.Errorf("mystery characteristics = %v", mystery.KeyCharacteristics)
	}
}

type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return f.err
}

func TestSeedInTransaction(t *testing.T) {
	ctx := context.Background()
	tx := &fakeTx{}
	repo := newMemGenreRepo()
	if _, err := NewService(repo, nil, 0).WithTransactor(tx).Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if tx.calls != 1 || repo.creates != 7 {
		t.Fatalf("transactions = %d, creates = %d", tx.calls, repo.creates)
	}

	cache := &memCache{data: map[string][]byte{}}
	failing := &fakeTx{err: errors.New("commit failed")}
	if _, err := NewService(newMemGenreRepo(), cache, 0).WithTransactor(failing).Seed(ctx); err == nil {
		t.Fatal("Seed() should surface commit failure")
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("cache invalidated after failed seed: %v", cache.invalidated)
	}
}

func TestGetUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := newMemGenreRepo()
	g := &entity.Genre{Name: "Thriller", Description: "Fast", IsActive: true}
	_ = repo.Create(ctx, g)

	svc := NewService(repo, &memCache{data: map[string][]byte{}}, time.Minute)
	for i := 0; i < 3; i++ {
		got, err := svc.Get(ctx, g.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Name != "Thriller" {
			t.Fatalf("name = %q", got.Name)
		}
	}
	if repo.gets != 1 {
		t.Errorf("repository hit %d times, want 1", repo.gets)
	}
}

func TestGetNotFound(t *testing.T) {
	for name, cache := range map[string]Cache{
		"cached":   &memCache{data: map[string][]byte{}},
		"uncached": nil,
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(newMemGenreRepo(), cache, 0)
			_, err := svc.Get(context.Background(), "missing")
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeGenreNotFound {
				t.Fatalf("Get() error = %v, want genre not found", err)
			}
		})
	}
}

func TestPromptingContext(t *testing.T) {
	ctx := context.Background()
	repo := newMemGenreRepo()
	svc := NewService(repo, nil, 0)
	if _, err := svc.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	christian, _ := repo.GetByName(ctx, "Christian Fiction")

	pc, err := svc.PromptingContext(ctx, christian.ID, "drafting")
	if err != nil {
		t.Fatalf("PromptingContext() error = %v", err)
	}
	if pc.Genre != "Christian Fiction" || pc.ChristianElements == nil {
		t.Errorf("context = %+v", pc)
	}
	if _, ok := pc.SpecificGuidance["chapterGeneration"]; !ok {
		t.Errorf("drafting guidance missing: %v", pc.SpecificGuidance)
	}

	_, err = svc.PromptingContext(ctx, christian.ID, "marketing")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidParam {
		t.Errorf("unknown stage error = %v", err)
	}
}

func TestToGenerationContext(t *testing.T) {
	g := &entity.Genre{
		Name:               "Speculative",
		KeyCharacteristics: []string{"Worldbuilding"},
		PhaseGuidance: map[string]map[string]any{
			"Planning":  {"premiseGeneration": "start small"},
			"marketing": {"ignored": true},
		},
	}
	gc := ToGenerationContext(g)
	if len(gc.PhaseGuidance) != 1 {
		t.Fatalf("phase guidance = %v", gc.PhaseGuidance)
	}
	if gc.PhaseGuidance[generation.StagePlanning]["premiseGeneration"] != "start small" {
		t.Errorf("planning guidance = %v", gc.PhaseGuidance[generation.StagePlanning])
	}
	if gc.HasChristianElements() {
		t.Error("unexpected christian elements")
	}
}

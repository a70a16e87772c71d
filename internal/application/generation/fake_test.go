package generation

import (
	"context"
	"sync"

	"novel-studio-api/internal/domain/service"
)

type fakeText struct {
	name  string
	model string

	mu     sync.Mutex
	calls  []TextRequest
	labels [][2]string
	reply  func(TextRequest) (*TextResponse, error)
}

func (f *fakeText) Name() string         { return f.name }
func (f *fakeText) DefaultModel() string { return f.model }

func (f *fakeText) Generate(ctx context.Context, req TextRequest) (*TextResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.labels = append(f.labels, [2]string{service.PhaseFromContext(ctx), service.ProviderFromContext(ctx)})
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeText) lastCall() TextRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeImage struct {
	name  string
	model string
	calls []ImageRequest
	reply func(ImageRequest) (*ImageResponse, error)
}

func (f *fakeImage) Name() string         { return f.name }
func (f *fakeImage) DefaultModel() string { return f.model }

func (f *fakeImage) GenerateImage(_ context.Context, req ImageRequest) (*ImageResponse, error) {
	f.calls = append(f.calls, req)
	return f.reply(req)
}

type fakeProviders struct {
	text  map[string]TextProvider
	image map[string]ImageProvider
}

func (p fakeProviders) Text(id string) (TextProvider, bool) {
	t, ok := p.text[id]
	return t, ok
}

func (p fakeProviders) Image(id string) (ImageProvider, bool) {
	i, ok := p.image[id]
	return i, ok
}

func (p fakeProviders) Describe() []ProviderInfo {
	var out []ProviderInfo
	for id, t := range p.text {
		out = append(out, ProviderInfo{ID: id, Text: true, DefaultTextModel: t.DefaultModel()})
	}
	return out
}

func fixedText(text string) func(TextRequest) (*TextResponse, error) {
	return func(req TextRequest) (*TextResponse, error) {
		return &TextResponse{Text: text, Model: req.Model, TokensUsed: 42}, nil
	}
}

func mysteryGenre() GenreContext {
	return GenreContext{
		Name:               "Mystery",
		Description:        "Fiction centered on solving a crime",
		KeyCharacteristics: []string{"clues", "red herrings", "fair-play reveal"},
		StyleGuidance:      map[string]any{"tone": "tense"},
		PhaseGuidance: map[Stage]map[string]any{
			StagePlanning: {"premiseGeneration": "Start from the crime"},
			StageDrafting: {"chapterGeneration": "Plant one clue per chapter"},
		},
	}
}

func sampleChapter(number int) ChapterInput {
	return ChapterInput{
		Outline: ChapterOutline{
			Number:     number,
			Title:      "The Locked Room",
			Summary:    "The detective examines the sealed study.",
			Objectives: []string{"introduce the victim", "plant the key clue"},
		},
		Context: ChapterContext{
			Premise:    "A detective discovers her mentor was the killer.",
			Characters: []Character{{Name: "Ada Wren", Role: "protagonist"}, {Name: "Silas Crane", Role: "antagonist"}},
		},
	}
}

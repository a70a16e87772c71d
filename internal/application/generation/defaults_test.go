package generation

import (
	"testing"

	"novel-studio-api/internal/config"
)

func newTestService(text map[string]TextProvider, image map[string]ImageProvider) *Service {
	return NewService(fakeProviders{text: text, image: image}, DefaultSettings())
}

func TestComputeMaxTokens(t *testing.T) {
	cases := []struct {
		target, ceiling, want int
	}{
		{3000, 16000, 4990},
		{0, 16000, 4990},
		{1000, 16000, 2330},
		{20000, 16000, 16000},
		{3000, 4000, 4000},
		{3000, 0, 4990},
	}
	for _, tc := range cases {
		if got := ComputeMaxTokens(tc.target, tc.ceiling); got != tc.want {
			t.Errorf("ComputeMaxTokens(%d, %d) = %d, want %d", tc.target, tc.ceiling, got, tc.want)
		}
	}
}

func TestResolveProviderConfig(t *testing.T) {
	openai := &fakeText{name: "openai", model: "gpt-4-turbo-preview"}
	replicate := &fakeText{name: "replicate", model: "llama3_70b"}
	svc := newTestService(map[string]TextProvider{"openai": openai, "replicate": replicate}, nil)

	t.Run("review pins low temperature", func(t *testing.T) {
		cfg := svc.ResolveProviderConfig(PhaseReview, Customization{})
		if cfg.Temperature != 0.3 {
			t.Errorf("temperature = %v, want 0.3", cfg.Temperature)
		}
		if cfg.MaxTokens != 4000 {
			t.Errorf("max tokens = %d, want 4000", cfg.MaxTokens)
		}
	})

	t.Run("planning defaults", func(t *testing.T) {
		cfg := svc.ResolveProviderConfig(PhasePremise, Customization{})
		want := ProviderConfig{ProviderID: "openai", ModelID: "gpt-4-turbo-preview", MaxTokens: 4000, Temperature: 0.7}
		if cfg != want {
			t.Errorf("config = %+v, want %+v", cfg, want)
		}
	})

	t.Run("overrides win field by field", func(t *testing.T) {
		temp, tokens := 1.1, 1234
		cfg := svc.ResolveProviderConfig(PhaseReview, Customization{Temperature: &temp, MaxTokens: &tokens})
		if cfg.Temperature != 1.1 || cfg.MaxTokens != 1234 || cfg.ModelID != "gpt-4-turbo-preview" {
			t.Errorf("config = %+v", cfg)
		}
	})

	t.Run("provider override uses provider default model", func(t *testing.T) {
		cfg := svc.ResolveProviderConfig(PhaseChapter, Customization{ProviderID: "replicate"})
		if cfg.ProviderID != "replicate" || cfg.ModelID != "llama3_70b" {
			t.Errorf("config = %+v", cfg)
		}
		if cfg.MaxTokens != 8000 {
			t.Errorf("max tokens = %d, want drafting default 8000", cfg.MaxTokens)
		}
	})

	t.Run("long chapter token budget", func(t *testing.T) {
		cfg := svc.ResolveProviderConfig(PhaseLongChapter, Customization{TargetWords: 3000})
		if cfg.MaxTokens != 4990 {
			t.Errorf("max tokens = %d, want 4990", cfg.MaxTokens)
		}
		tokens := 9000
		cfg = svc.ResolveProviderConfig(PhaseLongChapter, Customization{TargetWords: 3000, MaxTokens: &tokens})
		if cfg.MaxTokens != 9000 {
			t.Errorf("max tokens = %d, want override 9000", cfg.MaxTokens)
		}
	})
}

func TestDefaultsFromConfig(t *testing.T) {
	zero := 0.0
	d := DefaultsFromConfig(config.GenerationConfig{
		Stages: map[string]config.StageConfig{
			"drafting": {Provider: "replicate"},
			"raw":      {Temperature: &zero},
			"image":    {Provider: "replicate", Model: "flux_dev"},
			"bogus":    {Provider: "x"},
		},
		LongChapterTokenCeiling: 8000,
		Image:                   config.ImageConfig{Width: 640},
	})

	if got := d.Stages[StageDrafting]; got.ProviderID != "replicate" || got.ModelID != "" || got.MaxTokens != 8000 {
		t.Errorf("drafting = %+v", got)
	}
	if got := d.Stages[StageDrafting]; got.Temperature != 0.7 {
		t.Errorf("drafting temperature = %v, want default 0.7", got.Temperature)
	}
	if got := d.Stages[StageRaw]; got.Temperature != 0 || got.ProviderID != "openai" || got.MaxTokens != 2000 {
		t.Errorf("raw = %+v, want explicit temperature 0", got)
	}
	if got := resolveProviderConfig(d, PhaseRawText, Customization{}, nil); got.Temperature != 0 {
		t.Errorf("raw-text resolved temperature = %v, want 0", got.Temperature)
	}
	if got := d.Stages[StageImage]; got.ModelID != "flux_dev" {
		t.Errorf("image = %+v", got)
	}
	if d.LongChapterTokenCeiling != 8000 {
		t.Errorf("ceiling = %d", d.LongChapterTokenCeiling)
	}
	if d.Image.Width != 640 || d.Image.Height != 768 || d.Image.Size != "1024x1024" {
		t.Errorf("image defaults = %+v", d.Image)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
llm:
  providers:
    openai:
      api_key: ${TEST_OPENAI_KEY:sk-default}
      model: gpt-4-turbo-preview
    replicate:
      type: replicate
      api_key: r8-test
      models:
        flux_dev: black-forest-labs/flux-dev
generation:
  stages:
    image:
      provider: replicate
      model: flux_dev
`

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := writeConfig(t, map[string]string{"config.yaml": minimalConfig})

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.App.Name != "novel-studio-api" {
		t.Errorf("app.name = %q", cfg.App.Name)
	}
	if cfg.Generation.LongChapterTokenCeiling != 16000 {
		t.Errorf("ceiling = %d, want 16000", cfg.Generation.LongChapterTokenCeiling)
	}
	planning := cfg.Generation.Stages["planning"]
	if planning.Provider != "openai" || planning.MaxTokens != 4000 || planning.Temperature == nil || *planning.Temperature != 0.7 {
		t.Errorf("planning stage = %+v", planning)
	}
	if got := cfg.Generation.Stages["reviewing"].Temperature; got == nil || *got != 0.3 {
		t.Errorf("reviewing temperature = %v, want 0.3", got)
	}
	if got := cfg.Generation.Stages["drafting"].MaxTokens; got != 8000 {
		t.Errorf("drafting max tokens = %d, want 8000", got)
	}
	if img := cfg.Generation.Stages["image"]; img.Provider != "replicate" || img.Model != "flux_dev" {
		t.Errorf("image stage = %+v", img)
	}
	if cfg.Server.HTTP.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.HTTP.ShutdownTimeout)
	}
	if !cfg.Generation.Batch.ContinueOnError {
		t.Error("batch.continue_on_error should default to true")
	}
}

func TestLoadFromExpandsEnvAndInfersType(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")
	dir := writeConfig(t, map[string]string{"config.yaml": minimalConfig})

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	openai := cfg.LLM.Providers["openai"]
	if openai.APIKey != "sk-from-env" {
		t.Errorf("api key = %q", openai.APIKey)
	}
	if openai.Type != ProviderTypeOpenAI {
		t.Errorf("type = %q, want inferred openai", openai.Type)
	}
	if got := cfg.LLM.Providers["replicate"].Models["flux_dev"]; got != "black-forest-labs/flux-dev" {
		t.Errorf("alias = %q", got)
	}
}

func TestLoadFromMergesEnvironmentFile(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	dir := writeConfig(t, map[string]string{
		"config.yaml":         minimalConfig,
		"config.staging.yaml": "generation:\n  long_chapter_token_ceiling: 8000\n",
	})

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Generation.LongChapterTokenCeiling != 8000 {
		t.Errorf("ceiling = %d, want 8000", cfg.Generation.LongChapterTokenCeiling)
	}
}

func TestLoadFromRejectsUnknownStageProvider(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := writeConfig(t, map[string]string{
		"config.yaml": minimalConfig + "    drafting:\n      provider: anthropic\n",
	})

	_, err := LoadFrom(dir)
	if err == nil || !strings.Contains(err.Error(), "anthropic") {
		t.Fatalf("LoadFrom() error = %v, want unknown provider", err)
	}
}

func TestLoadFromKeepsZeroTemperature(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := writeConfig(t, map[string]string{
		"config.yaml": minimalConfig + "    raw:\n      temperature: 0\n",
	})

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	raw := cfg.Generation.Stages["raw"]
	if raw.Temperature == nil || *raw.Temperature != 0 {
		t.Fatalf("raw temperature = %v, want explicit 0", raw.Temperature)
	}
	if raw.Provider != "openai" || raw.MaxTokens != 2000 {
		t.Errorf("raw stage = %+v, want defaults besides temperature", raw)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config.yaml")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_SET", "value")
	cases := map[string]string{
		"${EXPAND_SET}":            "value",
		"${EXPAND_SET:other}":      "value",
		"${EXPAND_UNSET:fallback}": "fallback",
		"${EXPAND_UNSET:}":         "",
		"${EXPAND_UNSET}":          "${EXPAND_UNSET}",
	}
	for in, want := range cases {
		if got := expandEnv(in); got != want {
			t.Errorf("expandEnv(%q) = %q, want %q", in, got, want)
		}
	}
}

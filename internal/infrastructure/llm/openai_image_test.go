package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/config"
)

func TestOpenAIImageGenerate(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/images/generations" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["model"] != "dall-e-3" || body["size"] != "1024x1024" || body["quality"] != "standard" || body["style"] != "natural" || body["n"] != float64(1) {
			t.Errorf("body = %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://img/cover.png","revised_prompt":"A moody lighthouse"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIImageProvider("openai", config.ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	resp, err := p.GenerateImage(context.Background(), generation.ImageRequest{
		Prompt: "a lighthouse", Size: "1024x1024", Quality: "standard", Style: "natural", Count: 1,
	})
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if resp.URLs[0] != "https://img/cover.png" || resp.RevisedPrompt != "A moody lighthouse" || resp.Model != "dall-e-3" {
		t.Errorf("resp = %+v", resp)
	}
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestOpenAIImageNoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"server exploded","type":"server_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIImageProvider("openai", config.ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	_, err := p.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "x"})
	var pe *generation.ProviderError
	if !errors.As(err, &pe) || pe.ModelID != "dall-e-3" {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, adapters must not retry", calls)
	}
}

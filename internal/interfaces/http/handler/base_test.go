package handler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"novel-studio-api/internal/application/generation"
	"novel-studio-api/internal/interfaces/http/dto"
	"novel-studio-api/pkg/errors"
)

func TestMapError(t *testing.T) {
	cause := stderrors.New("upstream timeout")

	tests := []struct {
		name      string
		err       error
		status    int
		code      errors.ErrorCode
		phase     string
		field     string
		timed     bool
		emptyText bool
	}{
		{
			name:      "plain error",
			err:       stderrors.New("boom"),
			status:    http.StatusInternalServerError,
			code:      errors.CodeInternalError,
			emptyText: true,
		},
		{
			name:   "app error",
			err:    errors.ErrNovelNotFound.WithDetail("n-1"),
			status: http.StatusNotFound,
			code:   errors.CodeNovelNotFound,
		},
		{
			name:   "wrapped app error",
			err:    fmt.Errorf("load: %w", errors.ErrGenerationInProgress),
			status: http.StatusConflict,
			code:   errors.CodeGenerationInProgress,
		},
		{
			name:   "validation",
			err:    &generation.ValidationError{Phase: generation.PhaseChapter, Field: "outline.title", Message: "is required"},
			status: http.StatusBadRequest,
			code:   errors.CodeInvalidParam,
			field:  "outline.title",
		},
		{
			name: "parse failure inside generation error",
			err: &generation.GenerationError{
				Phase:            generation.PhaseOutline,
				GenerationTimeMs: 42,
				Cause:            &generation.ParseError{Phase: generation.PhaseOutline, Kind: "schema", Field: "chapters"},
			},
			status: http.StatusUnprocessableEntity,
			code:   errors.CodeResponseParseFailed,
			phase:  "outline",
			field:  "chapters",
			timed:  true,
		},
		{
			name: "provider failure",
			err: &generation.GenerationError{
				Phase: generation.PhaseReview,
				Cause: &generation.ProviderError{ProviderID: "openai", ModelID: "gpt-4", Cause: cause},
			},
			status: http.StatusBadGateway,
			code:   errors.CodeLLMProviderError,
			phase:  "review",
			timed:  true,
		},
		{
			name:   "generation error without known cause",
			err:    &generation.GenerationError{Phase: generation.PhasePremise, Cause: cause},
			status: http.StatusInternalServerError,
			code:   errors.CodeGenerationFailed,
			phase:  "premise",
			timed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, detail := mapError(tt.err)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if detail.ErrorCode != string(tt.code) {
				t.Errorf("code = %q, want %q", detail.ErrorCode, tt.code)
			}
			if detail.Phase != tt.phase {
				t.Errorf("phase = %q, want %q", detail.Phase, tt.phase)
			}
			if detail.Field != tt.field {
				t.Errorf("field = %q, want %q", detail.Field, tt.field)
			}
			if (detail.GenerationTimeMs != nil) != tt.timed {
				t.Errorf("generation time present = %v, want %v", detail.GenerationTimeMs != nil, tt.timed)
			}
			if (message == "") != tt.emptyText {
				t.Errorf("message = %q", message)
			}
		})
	}
}

func TestResolveGenreWithoutCatalog(t *testing.T) {
	_, err := resolveGenre(context.Background(), nil, dto.GenreRef{GenreID: "mystery"})
	if err == nil || errors.AsAppError(err).Code != errors.CodeServiceUnavailable {
		t.Fatalf("err = %v, want service unavailable", err)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeNovelNotFound, http.StatusNotFound},
		{CodeGenerationInProgress, http.StatusConflict},
		{CodeResponseParseFailed, http.StatusUnprocessableEntity},
		{CodeLLMProviderError, http.StatusBadGateway},
		{CodeGenerationFailed, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := New(tc.code, "x").HTTPStatus; got != tc.want {
			t.Errorf("code %s: got %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	e := ErrNovelNotFound.WithDetail("id=1")
	if ErrNovelNotFound.Detail != "" {
		t.Fatalf("predefined error mutated: %q", ErrNovelNotFound.Detail)
	}
	if e.Detail != "id=1" {
		t.Fatalf("detail = %q", e.Detail)
	}
}

func TestAsAppErrorFollowsWrapChain(t *testing.T) {
	base := New(CodeGenreNotFound, "genre not found")
	wrapped := fmt.Errorf("lookup: %w", base)

	if !IsAppError(wrapped) {
		t.Fatal("expected wrapped AppError to be detected")
	}
	if got := AsAppError(wrapped); got.Code != CodeGenreNotFound {
		t.Fatalf("code = %s", got.Code)
	}

	plain := stderrors.New("boom")
	if got := AsAppError(plain); got.Code != CodeUnknown || !stderrors.Is(got, plain) {
		t.Fatalf("unexpected conversion: %+v", got)
	}
}

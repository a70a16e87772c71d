package llm

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	countPromptTokens = EstimateTokens
	os.Exit(m.Run())
}

func TestEstimateTokens(t *testing.T) {
	cases := map[string]int{
		"":           0,
		"abc":        1,
		"abcd":       1,
		"abcde":      2,
		"Rain fell.": 3,
	}
	for in, want := range cases {
		if got := EstimateTokens(in); got != want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", in, got, want)
		}
	}
	if got := EstimateTokens("éééééééé"); got != 2 {
		t.Errorf("multibyte text should count runes, got %d", got)
	}
}

func TestTokenUsageFill(t *testing.T) {
	reported := tokenUsage{Prompt: 7, Completion: 3}.fill("prompt", "output")
	if reported.Total != 10 {
		t.Errorf("total = %d, want sum of reported parts", reported.Total)
	}

	missing := tokenUsage{}.fill("abcdefgh", "twelve chars")
	if missing.Total != 3 || missing.Prompt != 2 {
		t.Errorf("missing = %+v", missing)
	}
}

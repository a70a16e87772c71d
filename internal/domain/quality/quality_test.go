package quality

import (
	"strings"
	"testing"
)

func TestWordCountMatchesWhitespaceTokens(t *testing.T) {
	texts := []string{
		"",
		"   ",
		"one",
		"  The rain\tfell\n\nall night.  ",
		"Mixed — dashes – and, punctuation!",
	}
	for _, text := range texts {
		want := len(strings.Fields(text))
		if got := Compute(text).WordCount; got != want {
			t.Errorf("WordCount(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestComplianceScore(t *testing.T) {
	cases := []struct {
		dashes int
		want   int
	}{
		{0, 100},
		{1, 100},
		{2, 80},
		{3, 60},
		{6, 0},
		{12, 0},
	}
	for _, tc := range cases {
		text := strings.Repeat("word — ", tc.dashes)
		report := Analyze(text)
		if report.Statistics.EmDashCount != tc.dashes {
			t.Fatalf("EmDashCount = %d, want %d", report.Statistics.EmDashCount, tc.dashes)
		}
		if got := report.Score.PunctuationComplianceScore; got != tc.want {
			t.Errorf("compliance with %d em dashes = %d, want %d", tc.dashes, got, tc.want)
		}
		if report.Statistics.PunctuationCompliant != (tc.dashes <= 1) {
			t.Errorf("PunctuationCompliant with %d em dashes = %v", tc.dashes, report.Statistics.PunctuationCompliant)
		}
	}
}

func TestRepetitionScoreIsCaseInsensitive(t *testing.T) {
	tests := []string{
		"The river ran past the old mill. The Mill stood silent by the River.",
		"ııı iii",
		"Straße strasse STRASSE",
		"ǅemal ǆemal Ǆemal",
	}
	for _, text := range tests {
		if got, upper := RepetitionScore(text), RepetitionScore(strings.ToUpper(text)); got != upper {
			t.Errorf("RepetitionScore(%q) = %d, upper-case = %d", text, got, upper)
		}
	}

	// the river ran past the old mill. the mill stood silent the river. -> 10 unique / 13
	if got := RepetitionScore(tests[0]); got != 77 {
		t.Errorf("RepetitionScore = %d, want 77", got)
	}
	if got := RepetitionScore("ııı iii"); got != 50 {
		t.Errorf("dotless and dotted i should fold together: %d, want 50", got)
	}
}

func TestEmptyTextHasZeroScores(t *testing.T) {
	report := Analyze("")
	if report.Score.RepetitionScore != 0 || report.Score.DiversityScore != 0 {
		t.Errorf("empty text scores = %+v", report.Score)
	}
	if report.Statistics.AvgWordsPerSentence != 0 || report.Statistics.ReadingTimeMinutes != 0 {
		t.Errorf("empty text stats = %+v", report.Statistics)
	}
	if RepetitionScore("a an to of") != 0 {
		t.Error("only short words should score 0")
	}
}

func TestStructuralCounts(t *testing.T) {
	text := "She ran. He followed!\n\nWho knew? Nobody did...\n\n\n  \nThe end – finally."
	stats := Compute(text)
	if stats.SentenceCount != 5 {
		t.Errorf("SentenceCount = %d, want 5", stats.SentenceCount)
	}
	if stats.ParagraphCount != 3 {
		t.Errorf("ParagraphCount = %d, want 3", stats.ParagraphCount)
	}
	if stats.EnDashCount != 1 {
		t.Errorf("EnDashCount = %d, want 1", stats.EnDashCount)
	}
	if stats.AvgSentencesPerParagraph != 2 {
		t.Errorf("AvgSentencesPerParagraph = %d, want 2", stats.AvgSentencesPerParagraph)
	}
}

func TestLexicalDiversityAndReadingTime(t *testing.T) {
	stats := Compute("Echo echo ECHO reply")
	// echo x3 + reply -> 2 unique / 4
	if stats.LexicalDiversity != 50 {
		t.Errorf("LexicalDiversity = %d, want 50", stats.LexicalDiversity)
	}

	long := strings.Repeat("word ", 201)
	if got := Compute(long).ReadingTimeMinutes; got != 2 {
		t.Errorf("ReadingTimeMinutes = %d, want 2", got)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	text := "Rain fell — softly. Rain fell again, harder."
	if Analyze(text) != Analyze(text) {
		t.Fatal("Analyze should be a pure function")
	}
}

package generation

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildChapterPrompt(t *testing.T) {
	custom := Customization{ChapterWordCount: &WordRange{Min: 1750, Max: 2250}}
	prompt, err := BuildPrompt(Request{Phase: PhaseChapter, Genre: mysteryGenre(), Payload: sampleChapter(3), Customization: custom})
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}

	for _, want := range []string{
		"Chapter 3",
		"1750-2250",
		"Maximum ONE em dash",
		"Use en dashes (–) for ranges",
		"This is the first chapter.",
		"Ada Wren (protagonist), Silas Crane (antagonist)",
		"Objectives: introduce the victim, plant the key clue",
		`"chapterGeneration": "Plant one clue per chapter"`,
		"Ends with appropriate transition/hook for next chapter",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("chapter prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "LONG FORM") {
		t.Error("standard chapter prompt should not be long form")
	}
}

func TestBuildLongChapterPrompt(t *testing.T) {
	in := sampleChapter(7)
	in.Context.PreviousChapter = &PreviousChapter{Number: 6, Summary: "The butler vanished."}

	prompt, err := BuildPrompt(Request{
		Phase:         PhaseLongChapter,
		Genre:         mysteryGenre(),
		Payload:       LongChapterInput{ChapterInput: in},
		Customization: Customization{TargetWords: 3500},
	})
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}
	for _, want := range []string{
		"LONG FORM Chapter 7",
		"Word Count Target: 2000-4000 words",
		"Target Word Count: 3500 words",
		"Previous chapter summary: The butler vanished.",
		"Maximum ONE em dash",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("long chapter prompt missing %q", want)
		}
	}
}

func TestBuildPremisePrompt(t *testing.T) {
	genre := mysteryGenre()
	prompt, err := BuildPrompt(Request{Phase: PhasePremise, Genre: genre, Payload: PremiseInput{AdditionalInputs: "Set it in 1920s Lisbon"}})
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}
	for _, want := range []string{
		"specializing in Mystery",
		"KEY CHARACTERISTICS: clues, red herrings, fair-play reveal",
		`"premiseGeneration": "Start from the crime"`,
		"Writing Style: Balanced show-don't-tell approach",
		"ADDITIONAL REQUIREMENTS:\nSet it in 1920s Lisbon",
		`"premises": [`,
		`"centralConflict"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("premise prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "CHRISTIAN FICTION") {
		t.Error("christian block should be absent without christian-specific guidance")
	}

	genre.ChristianSpecific = map[string]any{"theologyGuidelines": []string{"orthodox"}}
	prompt, _ = BuildPrompt(Request{Phase: PhasePremise, Genre: genre, Payload: PremiseInput{}})
	if !strings.Contains(prompt, "CHRISTIAN FICTION REQUIREMENTS:") {
		t.Error("christian block missing")
	}
}

func TestBuildOutlinePrompt(t *testing.T) {
	prompt, err := BuildPrompt(Request{
		Phase: PhaseOutline,
		Genre: mysteryGenre(),
		Payload: OutlineInput{
			Premise:         "A detective discovers her mentor was the killer.",
			Characters:      []Character{{Name: "Ada Wren", Role: "protagonist", Description: "sharp-eyed"}},
			WordCountTarget: 81000,
		},
	})
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}
	for _, want := range []string{
		"Total chapters: 41",
		"Words per chapter: 1750-2250",
		"Overall word count: 81000",
		"Ada Wren: protagonist - sharp-eyed",
		"Maximum one em dash per chapter",
		`"threeActStructure"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("outline prompt missing %q", want)
		}
	}
}

func TestBuildReviewPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Request{
		Phase:   PhaseReview,
		Genre:   mysteryGenre(),
		Payload: ReviewInput{ChapterText: "It was a dark night.", ChapterNumber: 2, Premise: "A detective..."},
	})
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}
	criteria := []string{
		"1. REPETITION ANALYSIS", "2. PUNCTUATION COMPLIANCE", "3. NATURAL LANGUAGE",
		"4. CHARACTER CONSISTENCY", "5. PLOT ADHERENCE", "6. GENRE COMPLIANCE",
	}
	for _, want := range append(criteria, "Chapter 2 of a Mystery novel", "It was a dark night.", `"overall"`) {
		if !strings.Contains(prompt, want) {
			t.Errorf("review prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "7. ") {
		t.Error("review prompt should list exactly six criteria")
	}
}

func TestBuildPromptValidation(t *testing.T) {
	cases := []struct {
		name  string
		req   Request
		field string
	}{
		{"missing payload", Request{Phase: PhaseChapter, Genre: mysteryGenre()}, "payload"},
		{"mismatched payload", Request{Phase: PhaseOutline, Genre: mysteryGenre(), Payload: PremiseInput{}}, "payload"},
		{"missing genre", Request{Phase: PhasePremise, Payload: PremiseInput{}}, "genre.name"},
		{"outline without characters", Request{Phase: PhaseOutline, Genre: mysteryGenre(), Payload: OutlineInput{Premise: "p"}}, "characters"},
		{"chapter number zero", Request{Phase: PhaseChapter, Genre: mysteryGenre(), Payload: sampleChapter(0)}, "outline.number"},
		{"review without text", Request{Phase: PhaseReview, Genre: mysteryGenre(), Payload: ReviewInput{ChapterNumber: 1}}, "chapter_text"},
		{"inverted word range", Request{
			Phase: PhaseChapter, Genre: mysteryGenre(), Payload: sampleChapter(1),
			Customization: Customization{ChapterWordCount: &WordRange{Min: 3000, Max: 2000}},
		}, "customization.chapter_word_count"},
		{"unknown phase", Request{Phase: "epilogue", Payload: PremiseInput{}}, "phase"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prompt, err := BuildPrompt(tc.req)
			if prompt != "" {
				t.Errorf("expected no prompt, got %d bytes", len(prompt))
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Errorf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestEnhanceCoverPrompt(t *testing.T) {
	got := EnhanceCoverPrompt("  a lighthouse at dusk ")
	if !strings.HasPrefix(got, "a lighthouse at dusk, professional book cover design") {
		t.Errorf("EnhanceCoverPrompt() = %q", got)
	}
	if !strings.HasSuffix(got, "typography space at top and bottom") {
		t.Errorf("EnhanceCoverPrompt() = %q", got)
	}
}

func TestTargetChapters(t *testing.T) {
	cases := map[int]int{0: 30, 60000: 30, 2001: 2, 2000: 1, 81000: 41}
	for words, want := range cases {
		if got := TargetChapters(words); got != want {
			t.Errorf("TargetChapters(%d) = %d, want %d", words, got, want)
		}
	}
}

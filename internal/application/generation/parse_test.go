package generation

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFormatExamplesRoundTrip(t *testing.T) {
	for _, phase := range []Phase{PhasePremise, PhaseOutline, PhaseCharacters, PhaseReview} {
		t.Run(string(phase), func(t *testing.T) {
			example, ok := FormatExample(phase)
			if !ok {
				t.Fatalf("no format example for %s", phase)
			}
			raw := "Here is the result you asked for:\n```json\n" + example + "\n```\nLet me know if you need changes."
			content, err := Parse(phase, raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			switch c := content.(type) {
			case *PremiseSet:
				if len(c.Premises) == 0 || c.Premises[0].CentralConflict == "" {
					t.Errorf("premises = %+v", c.Premises)
				}
			case *Outline:
				if got := len(c.Chapters()); got != 1 {
					t.Errorf("chapters = %d, want 1", got)
				}
			case *CharacterRoster:
				if c.Characters[0].Name != "Full Name" {
					t.Errorf("characters = %+v", c.Characters)
				}
			case *Review:
				if c.Scores.Overall != 87 || len(c.Issues) != 1 {
					t.Errorf("review = %+v", c)
				}
			default:
				t.Fatalf("unexpected content %T", content)
			}
		})
	}
}

func TestParseNotJSON(t *testing.T) {
	for _, phase := range []Phase{PhasePremise, PhaseOutline, PhaseCharacters, PhaseReview} {
		_, err := Parse(phase, "not json at all")
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: error = %v, want *ParseError", phase, err)
		}
		if pe.Kind != ParseNoJSON || pe.Phase != phase || pe.RawTextExcerpt != "not json at all" {
			t.Errorf("%s: parse error = %+v", phase, pe)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"truncated":     `{"premises": [{"title": "A"}`,
		"trailing data": `{"premises": [{"title": "A"}]} and then {"x": 1}`,
		"bad syntax":    `{premises: []}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			content, err := Parse(PhasePremise, raw)
			if content != nil {
				t.Fatalf("expected no content, got %+v", content)
			}
			var pe *ParseError
			if !errors.As(err, &pe) || (pe.Kind != ParseMalformed && pe.Kind != ParseNoJSON) {
				t.Fatalf("error = %v, want malformed parse error", err)
			}
		})
	}
}

func TestParseSchemaViolations(t *testing.T) {
	cases := []struct {
		phase Phase
		raw   string
		field string
	}{
		{PhasePremise, `{"premises": []}`, "premises"},
		{PhasePremise, `{"premises": [{"summary": "no title"}]}`, "premises[0].title"},
		{PhasePremise, `{"premises": [{"title": "T", "themes": "not-an-array"}]}`, "premises.themes"},
		{PhaseOutline, `{"threeActStructure": {"act1": {"chapters": []}, "act2": {"chapters": []}}}`, "threeActStructure.act3"},
		{PhaseOutline, `{"threeActStructure": {"act1": {"chapters": []}, "act2": {"chapters": []}, "act3": {"chapters": []}}}`, "threeActStructure"},
		{PhaseCharacters, `{"characters": [{"role": "protagonist"}]}`, "characters[0].name"},
		{PhaseReview, `{"scores": {"repetition": 90}}`, "scores.punctuation"},
		{PhaseReview, `{"issues": []}`, "scores"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			_, err := Parse(tc.phase, tc.raw)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Kind != ParseSchema || pe.Field != tc.field {
				t.Errorf("kind=%s field=%q, want schema %q", pe.Kind, pe.Field, tc.field)
			}
		})
	}
}

func TestParseProsePhasesPassThrough(t *testing.T) {
	text := "Rain hammered the window. {not json} She waited."
	content, err := Parse(PhaseChapter, text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if draft := content.(*ChapterDraft); draft.Text != text {
		t.Errorf("draft = %q", draft.Text)
	}
	if _, err := Parse(PhaseCoverImage, "x"); err == nil {
		t.Error("cover-image has no text response and should be rejected")
	}
}

func TestParseExcerptTruncated(t *testing.T) {
	raw := strings.Repeat("é", 500)
	_, err := Parse(PhaseReview, raw)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v", err)
	}
	if got := len([]rune(pe.RawTextExcerpt)); got != 200 {
		t.Errorf("excerpt runes = %d, want 200", got)
	}
}

func TestCharacterAgeAcceptsNumbers(t *testing.T) {
	content, err := Parse(PhaseCharacters, `{"characters": [{"name": "Ada", "age": 34}, {"name": "Silas", "age": "late 50s"}]}`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	roster := content.(*CharacterRoster)
	if roster.Characters[0].Age != "34" || roster.Characters[1].Age != "late 50s" {
		t.Errorf("ages = %q, %q", roster.Characters[0].Age, roster.Characters[1].Age)
	}
}

func TestResultSchema(t *testing.T) {
	for _, phase := range Phases {
		s, ok := ResultSchema(phase)
		if !ok || s == nil {
			t.Fatalf("missing schema for %s", phase)
		}
	}
	s, _ := ResultSchema(PhasePremise)
	if _, ok := s.Properties.Get("premises"); !ok {
		t.Error("premise schema should describe premises")
	}
}

package generation

import (
	"fmt"
	"strings"
)

func chapterQualityRequirements(words WordRange) []string {
	return []string{
		"Word count: MUST be between " + words.String() + " words",
		"Em dashes: Maximum ONE em dash (—) allowed in entire chapter",
		"Use en dashes (–) for ranges and connections instead",
		"No repeated phrases, sentence structures, or scene patterns",
		"Show don't tell throughout",
		"Natural, varied dialogue",
		"Distinct scenes that serve the plot",
		"Character-consistent voices and actions",
	}
}

var chapterClosingChecklist = []string{
	"Starts with a compelling opening",
	"Develops the planned character arcs",
	"Advances the plot meaningfully",
	"Ends with appropriate transition/hook for next chapter",
	"Maintains consistency with established characters and world",
}

func buildChapterPrompt(g GenreContext, c Customization, in ChapterInput, long bool) string {
	words := chapterRange(c, long)
	o := in.Outline

	var b strings.Builder
	if long {
		section(&b, fmt.Sprintf("You are an expert fiction writer crafting a LONG FORM Chapter %d of a %s novel.", o.Number, g.Name))
	} else {
		section(&b, fmt.Sprintf("You are an expert fiction writer crafting Chapter %d of a %s novel.", o.Number, g.Name))
	}

	outline := []string{
		"Title: " + o.Title,
		"Summary: " + o.Summary,
		"Objectives: " + strings.Join(o.Objectives, ", "),
		"Word Count Target: " + words.String() + " words",
	}
	if long {
		target := c.TargetWords
		if target <= 0 {
			target = DefaultTargetWords
		}
		outline = append(outline, fmt.Sprintf("Target Word Count: %d words", target))
	}
	section(&b, "CHAPTER OUTLINE:\n"+strings.Join(outline, "\n"))

	section(&b, "NOVEL CONTEXT:\nPremise: "+strings.TrimSpace(in.Context.Premise)+"\nCharacters: "+characterRoles(in.Context.Characters))

	previous := "This is the first chapter."
	if prev := in.Context.PreviousChapter; prev != nil && !blank(prev.Summary) {
		previous = "Previous chapter summary: " + strings.TrimSpace(prev.Summary)
	}
	section(&b, "PREVIOUS CHAPTER CONTEXT:\n"+previous)

	section(&b, "QUALITY REQUIREMENTS (CRITICAL):\n"+numberedList(chapterQualityRequirements(words)))
	section(&b, "STYLE GUIDELINES:\n"+bulletList([]string{
		"Pacing: " + orDefault(c.PacingProfile, "Moderate"),
		"Dialogue frequency: " + orDefault(c.DialogueFrequency, "Balanced"),
		"Descriptive density: " + orDefault(c.DescriptiveDensity, "Moderate"),
		"Show-don't-tell emphasis: High priority",
	}))
	section(&b, "GENRE-SPECIFIC REQUIREMENTS:\n"+prettyJSON(g.PromptingContext(StageDrafting)))

	if s := strings.TrimSpace(c.AdditionalInstructions); s != "" {
		section(&b, "ADDITIONAL INSTRUCTIONS:\n"+s)
	}

	section(&b, "Write the complete chapter content, ensuring it:\n"+bulletList(chapterClosingChecklist))
	section(&b, "Begin writing the chapter now:")
	return b.String()
}

// characterRoles 渲染为 "Name (role), Name (role)"
func characterRoles(chars []Character) string {
	if len(chars) == 0 {
		return "None provided"
	}
	parts := make([]string, 0, len(chars))
	for _, ch := range chars {
		if blank(ch.Role) {
			parts = append(parts, ch.Name)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", ch.Name, ch.Role))
	}
	return strings.Join(parts, ", ")
}

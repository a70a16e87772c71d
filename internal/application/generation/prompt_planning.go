package generation

import (
	"fmt"
	"strings"
)

const premiseFormat = `{
  "premises": [
    {
      "title": "Working Title",
      "summary": "2-3 sentence premise",
      "centralConflict": "Main conflict description",
      "uniqueElements": ["element1", "element2"],
      "characterPotential": "Development opportunities",
      "themes": ["theme1", "theme2"]
    }
  ]
}`

const outlineFormat = `{
  "title": "Working Title",
  "threeActStructure": {
    "act1": {
      "summary": "Setup and inciting incident",
      "chapters": [
        {
          "number": 1,
          "title": "Chapter title",
          "summary": "What happens in the chapter",
          "objectives": ["objective1", "objective2"],
          "characterArcs": ["How a character changes in this chapter"],
          "plotPoints": ["Plot point reached in this chapter"]
        }
      ]
    },
    "act2": {
      "summary": "Rising action and midpoint",
      "chapters": []
    },
    "act3": {
      "summary": "Climax and resolution",
      "chapters": []
    }
  },
  "characterArcs": [
    {"character": "Name", "arc": "Arc across the whole novel"}
  ],
  "plotPoints": ["Key turning point"],
  "themes": ["theme1", "theme2"],
  "pacingNotes": "Timeline and pacing notes"
}`

const charactersFormat = `{
  "characters": [
    {
      "name": "Full Name",
      "role": "protagonist|antagonist|supporting|minor",
      "description": "Physical and personality sketch",
      "age": "Age or age range",
      "background": "Relevant history",
      "motivation": "What the character wants and why",
      "arc": "How the character changes across the outline",
      "traits": ["trait1", "trait2"],
      "relationships": ["Relationship to another character"],
      "spiritualJourney": "Faith arc, when relevant"
    }
  ]
}`

var christianPremiseRequirements = []string{
	"Faith elements must be organic and authentic",
	"Characters should have realistic spiritual journeys",
	"Content must align with Christian values",
	"Include opportunities for spiritual growth and biblical principles",
}

var christianOutlineIntegration = []string{
	"Map spiritual growth to plot progression",
	"Include authentic faith challenges and resolutions",
	"Integrate biblical principles organically",
	"Plan witnessing and ministry opportunities",
}

func buildPremisePrompt(g GenreContext, c Customization, in PremiseInput) string {
	pc := g.PromptingContext(StagePlanning)
	guidance := pc.SpecificGuidance
	if guidance == nil {
		guidance = map[string]any{}
	}

	var b strings.Builder
	section(&b, fmt.Sprintf("You are an expert fiction writer specializing in %s. Generate 3-5 compelling novel premises that adhere to the following genre requirements:", g.Name))
	section(&b, fmt.Sprintf("GENRE: %s\nDESCRIPTION: %s\nKEY CHARACTERISTICS: %s",
		g.Name, g.Description, strings.Join(pc.KeyCharacteristics, ", ")))
	section(&b, "GENRE-SPECIFIC REQUIREMENTS:\n"+prettyJSON(guidance))

	if g.HasChristianElements() {
		section(&b, "CHRISTIAN FICTION REQUIREMENTS:\n"+bulletList(christianPremiseRequirements))
	}

	section(&b, "CUSTOMIZATION PREFERENCES:\n"+bulletList([]string{
		"Writing Style: " + orDefault(c.WritingStyle, "Balanced show-don't-tell approach"),
		"Character Development: " + orDefault(c.CharacterDevelopment, "Moderate depth"),
		"Thematic Elements: " + orDefault(c.ThematicElements, "Standard genre themes"),
	}))

	extra := strings.TrimSpace(strings.Join([]string{in.AdditionalInputs, c.AdditionalInstructions}, "\n"))
	if extra != "" {
		section(&b, "ADDITIONAL REQUIREMENTS:\n"+extra)
	}

	section(&b, "For each premise, provide:\n"+numberedList([]string{
		"A compelling 2-3 sentence summary",
		"The central conflict",
		"Unique elements that avoid genre clichés",
		"Potential for character development",
		"Thematic possibilities",
	}))
	section(&b, "Format your response as JSON with this structure:\n"+premiseFormat)
	return b.String()
}

func buildOutlinePrompt(g GenreContext, c Customization, in OutlineInput) string {
	target := in.WordCountTarget
	if target == 0 {
		target = DefaultWordCountTarget
	}
	words := chapterRange(c, false)

	chars := make([]string, 0, len(in.Characters))
	for _, ch := range in.Characters {
		chars = append(chars, fmt.Sprintf("%s: %s - %s", ch.Name, orDefault(ch.Role, "unspecified role"), ch.Description))
	}

	var b strings.Builder
	section(&b, fmt.Sprintf("You are an expert fiction writer creating a detailed outline for a %s novel.", g.Name))
	section(&b, "PREMISE: "+strings.TrimSpace(in.Premise))
	section(&b, "GENRE REQUIREMENTS:\n"+prettyJSON(g.PromptingContext(StagePlanning)))
	section(&b, "TARGET STRUCTURE:\n"+bulletList([]string{
		fmt.Sprintf("Total chapters: %d", TargetChapters(target)),
		"Words per chapter: " + words.String(),
		fmt.Sprintf("Overall word count: %d", target),
	}))
	section(&b, "CHARACTERS PROVIDED:\n"+strings.Join(chars, "\n"))
	section(&b, "Create a comprehensive outline including:\n"+numberedList([]string{
		"Three-act structure with chapter breakdown",
		"Character arcs mapped to plot progression",
		"Key plot points and turning points",
		"Thematic development throughout",
		"Timeline and pacing notes",
	}))
	section(&b, "QUALITY REQUIREMENTS:\n"+bulletList([]string{
		"Ensure each chapter has a clear purpose and mini-arc",
		"Plan for variety in scene types and settings",
		"Integrate character development naturally",
		"Avoid repetitive chapter structures",
		"Maximum one em dash per chapter (note in style guide)",
	}))

	if g.HasChristianElements() {
		section(&b, "CHRISTIAN FICTION INTEGRATION:\n"+bulletList(christianOutlineIntegration))
	}
	if s := strings.TrimSpace(c.AdditionalInstructions); s != "" {
		section(&b, "ADDITIONAL REQUIREMENTS:\n"+s)
	}

	section(&b, "Format as detailed JSON with this structure:\n"+outlineFormat)
	return b.String()
}

func buildCharactersPrompt(g GenreContext, c Customization, in CharactersInput) string {
	var b strings.Builder
	section(&b, fmt.Sprintf("You are an expert fiction writer developing the cast of a %s novel.", g.Name))
	section(&b, "PREMISE: "+strings.TrimSpace(in.Premise))
	section(&b, "STORY OUTLINE:\n"+strings.TrimSpace(in.Outline))
	section(&b, "GENRE REQUIREMENTS:\n"+prettyJSON(g.PromptingContext(StagePlanning)))
	section(&b, "Create 4-8 characters that:\n"+numberedList([]string{
		"Include a clear protagonist and a credible antagonist",
		"Have distinct voices, motivations and flaws",
		"Carry arcs that map onto the outline's plot progression",
		"Avoid genre stereotypes while meeting reader expectations",
		"Form relationships that generate conflict and growth",
	}))
	section(&b, "CUSTOMIZATION PREFERENCES:\n"+bulletList([]string{
		"Character Development: " + orDefault(c.CharacterDevelopment, "Moderate depth"),
		"Thematic Elements: " + orDefault(c.ThematicElements, "Standard genre themes"),
	}))

	if g.HasChristianElements() {
		section(&b, "CHRISTIAN FICTION REQUIREMENTS:\n"+bulletList([]string{
			"Give each major character a believable spiritual journey",
			"Show faith struggles honestly, without caricature",
			"Describe the spiritual journey in the spiritualJourney field",
		}))
	}
	if s := strings.TrimSpace(c.AdditionalInstructions); s != "" {
		section(&b, "ADDITIONAL REQUIREMENTS:\n"+s)
	}

	section(&b, "Format your response as JSON with this structure:\n"+charactersFormat)
	return b.String()
}

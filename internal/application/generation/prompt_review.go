package generation

import (
	"fmt"
	"strings"
)

const reviewFormat = `{
  "scores": {
    "repetition": 85,
    "punctuation": 100,
    "naturalLanguage": 80,
    "characterConsistency": 90,
    "plotAdherence": 88,
    "genreCompliance": 92,
    "overall": 87
  },
  "issues": [
    {
      "type": "category",
      "severity": "low|medium|high",
      "description": "issue description",
      "suggestion": "how to fix"
    }
  ],
  "strengths": ["strength1", "strength2"],
  "recommendations": ["recommendation1", "recommendation2"]
}`

type reviewCriterion struct {
	title  string
	checks []string
	scale  string
}

func reviewCriteria(genre string) []reviewCriterion {
	return []reviewCriterion{
		{"REPETITION ANALYSIS", []string{
			"Check for repeated phrases, words, or sentence structures",
			"Identify any formulaic patterns",
		}, "100 = no repetition"},
		{"PUNCTUATION COMPLIANCE", []string{
			"Count em dashes (—) - should be maximum 1",
			"Verify en dash (–) usage for ranges",
		}, "100 = perfect compliance"},
		{"NATURAL LANGUAGE", []string{
			"Identify artificial or template-like phrases",
			"Check for varied sentence structures",
		}, "100 = completely natural"},
		{"CHARACTER CONSISTENCY", []string{
			"Verify characters act according to established profiles",
			"Check dialogue authenticity",
		}, "100 = perfectly consistent"},
		{"PLOT ADHERENCE", []string{
			"Confirm chapter meets outlined objectives",
			"Verify logical progression",
		}, "100 = perfectly aligned"},
		{"GENRE COMPLIANCE", []string{
			"Check adherence to " + genre + " conventions",
			"Verify appropriate tone and style",
		}, "100 = genre-perfect"},
	}
}

func buildReviewPrompt(g GenreContext, in ReviewInput) string {
	var b strings.Builder
	section(&b, fmt.Sprintf("You are an expert editor reviewing Chapter %d of a %s novel.", in.ChapterNumber, g.Name))
	if s := strings.TrimSpace(in.Premise); s != "" {
		section(&b, "NOVEL PREMISE:\n"+s)
	}
	section(&b, "CHAPTER CONTENT TO REVIEW:\n"+in.ChapterText)

	criteria := reviewCriteria(g.Name)
	blocks := make([]string, 0, len(criteria))
	for i, cr := range criteria {
		var cb strings.Builder
		fmt.Fprintf(&cb, "%d. %s", i+1, cr.title)
		for _, check := range cr.checks {
			cb.WriteString("\n   - " + check)
		}
		cb.WriteString("\n   - Score: 0-100 (" + cr.scale + ")")
		blocks = append(blocks, cb.String())
	}
	section(&b, "REVIEW CRITERIA:\n"+strings.Join(blocks, "\n\n"))

	section(&b, "Provide detailed feedback in JSON format. Every score is a number from 0 to 100; overall summarizes the six criteria:\n"+reviewFormat)
	return b.String()
}

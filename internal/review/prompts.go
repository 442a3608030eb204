package review

import (
	"fmt"
	"strings"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

const reviewSystemPrompt = `You are a senior web developer reviewing code from a mentee. Be specific, constructive, and honest. Respond with a single JSON object and nothing else. No markdown, no commentary.`

func buildReviewPrompt(ch *domain.Challenge, sub *domain.Submission) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review the following %s solution to a %s-level challenge.\n\n", sub.Language, ch.Difficulty)
	fmt.Fprintf(&b, "Challenge: %s\n%s\n\nRequirements:\n", ch.Title, ch.Description)
	for _, req := range ch.Requirements {
		fmt.Fprintf(&b, "- %s\n", req)
	}
	fmt.Fprintf(&b, "\nSubmitted code:\n```%s\n%s\n```\n", sub.Language, sub.Code)
	if sub.Notes != "" {
		fmt.Fprintf(&b, "\nSubmitter notes: %s\n", sub.Notes)
	}

	b.WriteString(`
Return a JSON object with exactly these fields:
{
  "overallScore": 7,
  "feedback": {
    "strengths": ["..."],
    "improvements": ["..."],
    "bugs": ["..."],
    "suggestions": ["..."]
  },
  "codeQuality": {"readability": 7, "structure": 7, "efficiency": 7, "bestPractices": 7},
  "careerTips": ["..."],
  "nextSteps": ["..."],
  "resources": [{"title": "...", "url": "...", "type": "article"}]
}

All scores are integers from 0 to 10. Resource type must be one of: article, video, tutorial, documentation. Strengths and improvements must each contain at least one entry.`)

	return b.String()
}

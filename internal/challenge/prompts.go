package challenge

import (
	"fmt"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

const challengeSystemPrompt = `You are a coding mentor who designs practice challenges for web developers. Respond with a single JSON object and nothing else. No markdown, no commentary.`

var categoryFocus = map[domain.Category]string{
	domain.CategoryReact:      "React components, hooks, and state management",
	domain.CategoryJavaScript: "core JavaScript: functions, async code, and data structures",
	domain.CategoryCSS:        "CSS layout, responsive design, and visual polish",
	domain.CategoryTypeScript: "TypeScript types, generics, and compile-time safety",
	domain.CategoryNextJS:     "Next.js routing, rendering strategies, and data fetching",
	domain.CategoryNode:       "Node.js servers, streams, and the filesystem",
	domain.CategoryGeneral:    "general programming: algorithms, data structures, and design",
}

func buildChallengePrompt(difficulty domain.Difficulty, category domain.Category) string {
	focus := categoryFocus[category]

	return fmt.Sprintf(`Create a %s-level coding challenge focused on %s.

Return a JSON object with exactly these fields:
{
  "title": "short challenge title",
  "description": "2-3 sentence description of the task",
  "requirements": ["list of 3-5 concrete requirements"],
  "hints": ["list of 2-3 hints"],
  "technologies": ["list of relevant technology names"],
  "estimatedTime": 30,
  "exampleCode": "optional starter code, or null"
}

estimatedTime is the expected completion time in minutes. The challenge must be self-contained and solvable without external services.`, difficulty, focus)
}

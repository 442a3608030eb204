package llm

import (
	"regexp"
	"strings"
)

// Matches fenced code blocks with optional language tag
var codeBlockRegex = regexp.MustCompile("(?s)```(?:\\w+)?\\s*\\n(.+?)```")

// ExtractJSON pulls a JSON object out of model output. Models often wrap
// JSON in fenced code blocks or surround it with prose, so this strips a
// fence if present and then trims to the outermost braces. Returns false
// when no object-shaped text is found.
func ExtractJSON(content string) (string, bool) {
	if m := codeBlockRegex.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}

	return content[start : end+1], true
}

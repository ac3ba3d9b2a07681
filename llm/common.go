package llm

import (
	"regexp"
	"strings"
)

var thinkTags = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> tags and everything in between them from a string.
func RemoveThinkTags(input string) string {
	return thinkTags.ReplaceAllString(input, "")
}

// RemoveMarkdownBackticks drops the lines opening or closing a fenced code block.
func RemoveMarkdownBackticks(input string) string {
	lines := strings.Split(input, "\n")

	var filteredLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			filteredLines = append(filteredLines, line)
		}
	}

	return strings.Join(filteredLines, "\n")
}

// CleanResponse strips reasoning and code fences from a model response.
func CleanResponse(input string) string {
	return strings.TrimSpace(RemoveMarkdownBackticks(RemoveThinkTags(input)))
}

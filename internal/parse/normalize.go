package parse

import "strings"

// NormalizeLines prepares text for the line-oriented pattern extractor:
// every line is trimmed, runs of inner whitespace collapse to one space,
// and blank lines are dropped so that label groups sit on consecutive
// lines regardless of how the client padded the message.
func NormalizeLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Flatten prepares text for the AI extractor: line structure is not
// needed there, so all whitespace runs collapse to single spaces.
func Flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

package readlater

import "strings"

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// WordCount returns the number of whitespace-separated words in content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadingTime estimates the reading time of content in whole minutes.
// The result is always at least 1.
func ReadingTime(content string) int {
	words := WordCount(content)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return max(1, minutes)
}

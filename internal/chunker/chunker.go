package chunker

import (
	"unicode/utf8"

	"github.com/dgallion1/finsight/internal/report"
)

// DefaultBudget is the chunk size, in characters, used when none is configured.
const DefaultBudget = 300000

// Split partitions text into consecutive chunks of at most budget characters.
// Text that fits the budget is returned as a single chunk. Chunks never
// overlap and concatenating them in order reproduces text exactly.
func Split(text string, budget int) []report.Chunk {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if utf8.RuneCountInString(text) <= budget {
		return []report.Chunk{{Index: 0, Total: 1, Text: text}}
	}

	var parts []string
	start, count := 0, 0
	for i := range text {
		if count == budget {
			parts = append(parts, text[start:i])
			start, count = i, 0
		}
		count++
	}
	parts = append(parts, text[start:])

	chunks := make([]report.Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = report.Chunk{Index: i, Total: len(parts), Text: p}
	}
	return chunks
}

// Lengths returns each chunk's length in characters.
func Lengths(chunks []report.Chunk) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = utf8.RuneCountInString(c.Text)
	}
	return out
}

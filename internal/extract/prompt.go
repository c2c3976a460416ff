package extract

import "strings"

const ExtractionPrompt = `You are a financial analyst.

From the following annual report text, extract:

1. Key positive statements
2. Key negative statements
3. Forward-looking guidance
4. Risk-related commentary

Rules:
- Return STRICTLY valid JSON
- No explanations
- No markdown formatting (no code fences)
- Each item must be a short, standalone statement

JSON format:
{
  "positive": [],
  "negative": [],
  "forward_looking": [],
  "risks": []
}`

// BuildChunkPrompt embeds one chunk of annual report text in the extraction prompt.
func BuildChunkPrompt(chunkText string) string {
	var sb strings.Builder
	sb.Grow(len(ExtractionPrompt) + len(chunkText) + 32)
	sb.WriteString(ExtractionPrompt)
	sb.WriteString("\n\nAnnual Report Text:\n")
	sb.WriteString(chunkText)
	sb.WriteString("\n")
	return sb.String()
}

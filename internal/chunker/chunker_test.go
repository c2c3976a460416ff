package chunker

import (
	"strings"
	"testing"
)

func TestSplit_FitsOneChunk(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks := Split(text, len(text))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected chunk to hold the whole text")
	}
	if chunks[0].Index != 0 || chunks[0].Total != 1 {
		t.Errorf("expected index 0 of 1, got %d of %d", chunks[0].Index, chunks[0].Total)
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks := Split("", 10)
	if len(chunks) != 1 || chunks[0].Text != "" {
		t.Fatalf("expected a single empty chunk, got %+v", chunks)
	}
}

func TestSplit_ExactBudgets(t *testing.T) {
	chunks := Split("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d: expected %q, got %q", i, w, chunks[i].Text)
		}
		if chunks[i].Index != i || chunks[i].Total != len(want) {
			t.Errorf("chunk %d: expected index %d of %d, got %d of %d", i, i, len(want), chunks[i].Index, chunks[i].Total)
		}
	}
}

func TestSplit_EvenDivisionHasNoEmptyTail(t *testing.T) {
	chunks := Split("abcdef", 3)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].Text != "def" {
		t.Errorf("expected last chunk %q, got %q", "def", chunks[1].Text)
	}
}

func TestSplit_PartitionLaw(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog.\n\nSecond paragraph.",
		strings.Repeat("Revenue grew ₹1,200 crore — up 12%. ", 40),
		"日本語のテキストを分割する",
	}
	for _, text := range texts {
		for budget := 1; budget <= 50; budget++ {
			chunks := Split(text, budget)

			var sb strings.Builder
			for _, c := range chunks {
				sb.WriteString(c.Text)
			}
			if sb.String() != text {
				t.Fatalf("budget %d: concatenation does not reproduce input", budget)
			}
			for i, n := range Lengths(chunks) {
				if n > budget {
					t.Fatalf("budget %d: chunk %d has %d characters", budget, i, n)
				}
				if n == 0 {
					t.Fatalf("budget %d: chunk %d is empty", budget, i)
				}
			}
		}
	}
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	text := "ééé" // 3 characters, 6 bytes
	chunks := Split(text, 3)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for 3 characters within budget 3, got %d", len(chunks))
	}
	chunks = Split(text, 2)
	if len(chunks) != 2 || chunks[0].Text != "éé" || chunks[1].Text != "é" {
		t.Fatalf("unexpected split: %+v", chunks)
	}
}

func TestSplit_NonPositiveBudgetUsesDefault(t *testing.T) {
	chunks := Split("short", 0)
	if len(chunks) != 1 {
		t.Fatalf("expected default budget to keep short text whole, got %d chunks", len(chunks))
	}
}

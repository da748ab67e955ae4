package services

import (
	"strings"
	"testing"
)

func TestChunkTextShortInputIsSingleChunk(t *testing.T) {
	chunker := NewTextChunker()

	chunks := chunker.ChunkText("one paragraph", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "one paragraph" {
		t.Fatalf("unexpected chunks %v", chunks)
	}
}

func TestChunkTextRespectsMaxSize(t *testing.T) {
	chunker := NewTextChunker()

	var paragraphs []string
	for i := 0; i < 20; i++ {
		paragraphs = append(paragraphs, strings.Repeat("word ", 60))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := chunker.ChunkText(text, 1000, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected input to be split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		// Overlap may push a chunk slightly past the target
		if len(chunk) > 1000+100+2 {
			t.Fatalf("chunk %d has length %d", i, len(chunk))
		}
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker()

	if chunks := chunker.ChunkText("", 1000, 200); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %v", chunks)
	}
}

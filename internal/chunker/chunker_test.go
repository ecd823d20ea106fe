package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFixedChunker_Offsets(t *testing.T) {
	c, err := NewFixedChunker(100, 20)
	if err != nil {
		t.Fatalf("NewFixedChunker failed: %v", err)
	}
	text := strings.Repeat("A", 250)

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	wantOffsets := [][2]int{{0, 100}, {80, 180}, {160, 250}, {240, 250}}
	for i, w := range wantOffsets {
		if chunks[i].Start != w[0] || chunks[i].End != w[1] {
			t.Errorf("chunk %d offsets = [%d,%d), want [%d,%d)", i, chunks[i].Start, chunks[i].End, w[0], w[1])
		}
		if chunks[i].Index != i {
			t.Errorf("chunk %d index = %d", i, chunks[i].Index)
		}
		if chunks[i].Text != text[w[0]:w[1]] {
			t.Errorf("chunk %d text does not match offsets", i)
		}
	}
}

func TestFixedChunker_CountFormula(t *testing.T) {
	cases := []struct {
		length, size, overlap int
	}{
		{1, 10, 0},
		{10, 10, 0},
		{11, 10, 0},
		{250, 100, 20},
		{999, 128, 32},
		{64, 64, 63},
	}
	for _, tc := range cases {
		c, err := NewFixedChunker(tc.size, tc.overlap)
		if err != nil {
			t.Fatalf("NewFixedChunker(%d,%d) failed: %v", tc.size, tc.overlap, err)
		}
		text := strings.Repeat("x", tc.length)
		chunks, err := c.Chunk(text)
		if err != nil {
			t.Fatalf("Chunk failed: %v", err)
		}
		// The cursor advances by the stride from zero until it passes the
		// end, so the chunk count is ceil(length/stride).
		stride := tc.size - tc.overlap
		want := (tc.length + stride - 1) / stride
		if len(chunks) != want {
			t.Errorf("length=%d size=%d overlap=%d: got %d chunks, want %d",
				tc.length, tc.size, tc.overlap, len(chunks), want)
		}
		// Same input must produce identical output.
		again, _ := c.Chunk(text)
		if len(again) != len(chunks) {
			t.Errorf("chunking is not deterministic: %d vs %d", len(again), len(chunks))
		}
	}
}

func TestFixedChunker_MultibyteText(t *testing.T) {
	c, err := NewFixedChunker(5, 2)
	if err != nil {
		t.Fatalf("NewFixedChunker failed: %v", err)
	}
	text := strings.Repeat("é", 10)

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch.Text) {
			t.Errorf("chunk %d is not valid UTF-8: %q", i, ch.Text)
		}
		if n := utf8.RuneCountInString(ch.Text); n != ch.End-ch.Start {
			t.Errorf("chunk %d has %d characters, offsets say %d", i, n, ch.End-ch.Start)
		}
	}
	if chunks[0].Text != "ééééé" || chunks[0].Start != 0 || chunks[0].End != 5 {
		t.Errorf("unexpected first chunk %+v", chunks[0])
	}
	if last := chunks[len(chunks)-1]; last.End != 10 {
		t.Errorf("last chunk ends at %d, want 10", last.End)
	}
}

func TestFixedChunker_EmptyText(t *testing.T) {
	c, err := NewFixedChunker(100, 20)
	if err != nil {
		t.Fatalf("NewFixedChunker failed: %v", err)
	}
	chunks, err := c.Chunk("")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestFixedChunker_OverlapTooLarge(t *testing.T) {
	for _, overlap := range []int{100, 150} {
		_, err := NewFixedChunker(100, overlap)
		if !errors.Is(err, ErrChunkConfig) {
			t.Errorf("overlap=%d: expected ErrChunkConfig, got %v", overlap, err)
		}
	}
}

func TestSentenceChunker_GroupsBySize(t *testing.T) {
	c, err := NewSentenceChunker(40, 0)
	if err != nil {
		t.Fatalf("NewSentenceChunker failed: %v", err)
	}
	text := "First sentence here. Second one follows! A third, longer sentence arrives now? Tail."

	chunks, err := c.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	total := 0
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.SentenceCount <= 0 {
			t.Errorf("chunk %d has sentence count %d", i, ch.SentenceCount)
		}
		total += ch.SentenceCount
	}
	if total != 4 {
		t.Errorf("expected 4 sentences across chunks, got %d", total)
	}
	// First chunk respects the bound; a single oversized sentence may not.
	if len(chunks[0].Text) > 40 && chunks[0].SentenceCount > 1 {
		t.Errorf("multi-sentence chunk exceeds max size: %q", chunks[0].Text)
	}
}

func TestSentenceChunker_FlushesTrailingBuffer(t *testing.T) {
	c, err := NewSentenceChunker(1000, 100)
	if err != nil {
		t.Fatalf("NewSentenceChunker failed: %v", err)
	}
	chunks, err := c.Chunk("Short. ")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	// minChunkSize is not enforced: the tiny trailing chunk survives.
	if chunks[0].Text != "Short." {
		t.Errorf("unexpected chunk text %q", chunks[0].Text)
	}
}

func TestSentenceChunker_NoTerminalPunctuation(t *testing.T) {
	c, err := NewSentenceChunker(100, 0)
	if err != nil {
		t.Fatalf("NewSentenceChunker failed: %v", err)
	}
	chunks, err := c.Chunk("no punctuation at all")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "no punctuation at all" {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
}

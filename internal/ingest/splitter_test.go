package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitText_OverlapIsExact(t *testing.T) {
	text := strings.Repeat("abcdefghij", 250) //2500 chars
	chunks := SplitText(text, 1000, 100)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-100:]
		head := chunks[i+1][:100]
		if tail != head {
			t.Errorf("chunk %d/%d boundary mismatch:\n tail %q\n head %q", i, i+1, tail, head)
		}
	}
}

func TestSplitText_ReassemblesToOriginal(t *testing.T) {
	text := strings.Repeat("0123456789", 333) + "xyz"
	chunks := SplitText(text, 1000, 100)

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += c[100:]
	}
	if rebuilt != text {
		t.Error("dropping each chunk's leading overlap should reproduce the input")
	}
}

func TestSplitText_SmallInputs(t *testing.T) {
	if got := SplitText("", 1000, 100); got != nil {
		t.Errorf("empty text should yield nil, got %v", got)
	}

	chunks := SplitText("short text", 1000, 100)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("text under the limit should come back whole, got %v", chunks)
	}

	exact := strings.Repeat("a", 1000)
	if chunks := SplitText(exact, 1000, 100); len(chunks) != 1 {
		t.Errorf("text exactly at the limit should be one chunk, got %d", len(chunks))
	}
}

func TestSplitText_MultibyteRunesStayIntact(t *testing.T) {
	text := strings.Repeat("₹", 1200)
	chunks := SplitText(text, 1000, 100)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for n, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d contains invalid UTF-8", n)
		}
	}
	if got := utf8.RuneCountInString(chunks[0]); got != 1000 {
		t.Errorf("first chunk has %d runes, want 1000", got)
	}

	tail := []rune(chunks[0])
	head := []rune(chunks[1])
	if string(tail[len(tail)-100:]) != string(head[:100]) {
		t.Error("overlap must repeat the previous chunk's trailing runes verbatim")
	}
}

func TestSplitText_MixedWidthReassembles(t *testing.T) {
	text := strings.Repeat("revenue ₹42 crore — up 12%\n", 100)
	chunks := SplitText(text, 1000, 100)

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		rebuilt += string([]rune(c)[100:])
	}
	if rebuilt != text {
		t.Error("dropping each chunk's leading overlap should reproduce the input")
	}
}

func TestSplitText_OverlapAtLeastChunkSize(t *testing.T) {
	text := strings.Repeat("a", 250)

	for _, overlap := range []int{100, 150} {
		chunks := SplitText(text, 100, overlap)
		if len(chunks) == 0 {
			t.Fatalf("overlap %d: got no chunks", overlap)
		}
		last := chunks[len(chunks)-1]
		if !strings.HasSuffix(text, last) {
			t.Errorf("overlap %d: last chunk must be a suffix of the input", overlap)
		}
	}

	if got := SplitText("some text", 0, 0); got != nil {
		t.Errorf("non-positive size should yield nil, got %v", got)
	}
}

func TestSplitText_NoEmptyTrailingChunk(t *testing.T) {
	// 1900 chars: second chunk ends exactly at the text boundary
	text := strings.Repeat("a", 1900)
	chunks := SplitText(text, 1000, 100)
	for n, c := range chunks {
		if len(c) == 0 {
			t.Errorf("chunk %d is empty", n)
		}
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Error("last chunk must be a suffix of the input")
	}
}

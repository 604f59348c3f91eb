package index

import (
	"strings"
	"testing"
)

func TestSplitText_Empty(t *testing.T) {
	if got := SplitText("", 100, 10); got != nil {
		t.Errorf("SplitText(\"\") = %v, want nil", got)
	}
	if got := SplitText("   \n\t  ", 100, 10); got != nil {
		t.Errorf("SplitText(whitespace) = %v, want nil", got)
	}
}

func TestSplitText_SingleChunk(t *testing.T) {
	got := SplitText("short document", 100, 10)
	if len(got) != 1 || got[0] != "short document" {
		t.Errorf("SplitText = %v, want [short document]", got)
	}
}

func TestSplitText_Overlap(t *testing.T) {
	text := strings.Repeat("word ", 200) // 1000 chars
	chunks := SplitText(text, 300, 50)
	if len(chunks) < 3 {
		t.Fatalf("chunks = %d, want >= 3", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 300 {
			t.Errorf("chunk %d has %d chars, want <= 300", i, len(c))
		}
	}
	// overlap means consecutive chunks share a suffix/prefix region
	tail := chunks[0][len(chunks[0])-20:]
	if !strings.Contains(chunks[1], strings.TrimSpace(tail)) {
		t.Errorf("chunk 1 does not overlap chunk 0 tail %q", tail)
	}
}

func TestSplitText_PrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("a", 80)
	text := para + "\n\n" + para + "\n\n" + para
	chunks := SplitText(text, 100, 0)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want >= 2", len(chunks))
	}
	if chunks[0] != para {
		t.Errorf("chunk 0 = %q, want the first paragraph", chunks[0])
	}
}

func TestSplitText_NoBoundaryFallsBackToHardCut(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := SplitText(text, 100, 0)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 100 {
		t.Errorf("chunk 0 has %d chars, want hard cut at 100", len(chunks[0]))
	}
}

func TestSplitText_DegenerateOverlap(t *testing.T) {
	// overlap >= size must not loop forever
	text := strings.Repeat("y", 50)
	chunks := SplitText(text, 10, 10)
	if len(chunks) != 5 {
		t.Errorf("chunks = %d, want 5", len(chunks))
	}
}

package index

import "strings"

// SplitText cuts text into overlapping chunks of roughly size characters.
// Cuts prefer paragraph breaks, then line breaks, then spaces, so a chunk
// rarely ends mid-sentence. Whitespace-only input yields no chunks.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}
		cut := snapToBoundary(runes, start, end)
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		next := cut - overlap
		if next <= start {
			next = cut // overlap would stall; move on
		}
		start = next
	}
	return chunks
}

// snapToBoundary walks back from end looking for a natural break after
// start. Falls back to the hard cut when the window has no whitespace.
func snapToBoundary(runes []rune, start, end int) int {
	// don't search back further than half the window
	limit := start + (end-start)/2

	for _, sep := range []string{"\n\n", "\n", " "} {
		window := string(runes[limit:end])
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			return limit + len([]rune(window[:idx])) + len([]rune(sep))
		}
	}
	return end
}

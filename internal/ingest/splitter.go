package ingest

// SplitText cuts text into chunks of at most size characters. The trailing
// overlap characters of each chunk are repeated verbatim at the start of the
// next one so retrieval keeps cross-boundary context. Sizes count runes, not
// bytes, so multibyte text never gets cut mid-character.
func SplitText(text string, size int, overlap int) []string {
	if text == "" || size <= 0 {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	// a non-advancing window would loop forever
	if overlap >= size {
		overlap = size - 1
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

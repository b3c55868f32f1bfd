package service

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how extracted document text is split for embedding.
type ChunkConfig struct {
	Size     int
	Overlap  int
	MinChars int
}

// DefaultChunkConfig provides sane defaults for CV-sized documents.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:     500,
		Overlap:  100,
		MinChars: 20,
	}
}

// separators, in priority order, tried when looking for a natural break
// near the end of a window. A sentence boundary beats a line break beats a
// clause break beats any space.
var chunkSeparators = []string{". ", "\n", ", ", " "}

// CleanText normalizes raw extracted text before chunking. Control
// characters are stripped, lines with fewer than three letters are
// dropped (page numbers, bullets, extraction noise), and runs of spaces
// and blank lines are collapsed.
func CleanText(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if countLetters(line) < 3 {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// ChunkText splits cleaned text into overlapping windows of at most
// cfg.Size runes, preferring to cut at a separator found in the second
// half of the window. Chunks shorter than cfg.MinChars after trimming are
// discarded.
func ChunkText(text string, cfg ChunkConfig) []string {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size - 1
	}

	// Whitespace differences should not influence where windows fall.
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return nil
	}

	runes := []rune(flat)
	if len(runes) <= cfg.Size {
		if len(runes) < cfg.MinChars {
			return nil
		}
		return []string{flat}
	}

	chunks := make([]string, 0, len(runes)/(cfg.Size-cfg.Overlap)+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			end = cutPoint(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if len([]rune(chunk)) >= cfg.MinChars {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// cutPoint finds the best place to end a window. Separators are searched
// backward from the window end, but only within its second half so a break
// near the window start cannot produce a tiny chunk.
func cutPoint(runes []rune, start, end int) int {
	window := string(runes[start:end])
	half := (end - start) / 2

	for _, sep := range chunkSeparators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := len([]rune(window[:idx]))
		if cut <= half {
			continue
		}
		return start + cut + len([]rune(sep))
	}
	return end
}

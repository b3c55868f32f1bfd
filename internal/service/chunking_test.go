package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_StripsControlCharacters(t *testing.T) {
	clean := CleanText("experienced\x00 engineer\x07 with kubernetes")
	assert.Equal(t, "experienced engineer with kubernetes", clean)
}

func TestCleanText_NormalizesLineEndings(t *testing.T) {
	clean := CleanText("first line here\r\nsecond line here\rthird line here")
	assert.Equal(t, "first line here\nsecond line here\nthird line here", clean)
}

func TestCleanText_DropsNoiseLines(t *testing.T) {
	raw := "Professional Experience\n42\n- -\nab\nLed platform migrations"
	clean := CleanText(raw)
	assert.Equal(t, "Professional Experience\nLed platform migrations", clean)
}

func TestCleanText_CollapsesSpaces(t *testing.T) {
	clean := CleanText("senior    cloud   architect\n\n\n\nten years experience")
	assert.Equal(t, "senior cloud architect\nten years experience", clean)
}

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	text := "Senior engineer with ten years of distributed systems work."
	chunks := ChunkText(text, DefaultChunkConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkText_EmptyAndTiny(t *testing.T) {
	cfg := DefaultChunkConfig()
	assert.Empty(t, ChunkText("", cfg))
	assert.Empty(t, ChunkText("   \n\t  ", cfg))
	assert.Empty(t, ChunkText("too short", cfg), "below the minimum chunk size")
}

func TestChunkText_WindowsOverlap(t *testing.T) {
	// Uniform text without separators forces hard cuts at exactly the
	// window size, so the overlap is observable directly.
	text := strings.Repeat("x", 2000)
	cfg := ChunkConfig{Size: 500, Overlap: 100, MinChars: 20}

	chunks := ChunkText(text, cfg)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), cfg.Size, "chunk %d exceeds window", i)
	}
	for i := 1; i < len(chunks); i++ {
		prefix := chunks[i][:cfg.Overlap]
		suffix := chunks[i-1][len(chunks[i-1])-cfg.Overlap:]
		assert.Equal(t, suffix, prefix, "chunk %d does not overlap its predecessor", i)
	}
}

func TestChunkText_CountBound(t *testing.T) {
	cfg := ChunkConfig{Size: 500, Overlap: 100, MinChars: 20}
	for _, n := range []int{600, 1000, 2000, 5000} {
		text := strings.Repeat("y", n)
		chunks := ChunkText(text, cfg)
		bound := (n+cfg.Size-cfg.Overlap-1)/(cfg.Size-cfg.Overlap) + 1
		assert.LessOrEqual(t, len(chunks), bound, "length %d", n)
	}
}

func TestChunkText_PrefersSentenceBoundary(t *testing.T) {
	// A sentence boundary late in the window must win over the spaces
	// that follow it.
	first := strings.Repeat("a", 400) + ". "
	second := strings.Repeat("b", 300)
	cfg := ChunkConfig{Size: 500, Overlap: 100, MinChars: 20}

	chunks := ChunkText(first+second, cfg)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("a", 400)+".", chunks[0])
}

func TestChunkText_IgnoresSeparatorInFirstHalf(t *testing.T) {
	// The only sentence boundary sits in the first half of the window,
	// so the cut falls back to a later, lower-priority separator.
	text := strings.Repeat("a", 100) + ". " + strings.Repeat("b", 200) + " " + strings.Repeat("c", 400)
	cfg := ChunkConfig{Size: 500, Overlap: 100, MinChars: 20}

	chunks := ChunkText(text, cfg)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.NotEqual(t, strings.Repeat("a", 100)+".", chunks[0])
}

func TestChunkText_DiscardsTinyTail(t *testing.T) {
	text := strings.Repeat("z", 505)
	cfg := ChunkConfig{Size: 500, Overlap: 0, MinChars: 20}

	chunks := ChunkText(text, cfg)
	require.Len(t, chunks, 1, "5-char tail is below the minimum and dropped")
	assert.Len(t, chunks[0], 500)
}

func TestChunkText_CollapsesInternalWhitespace(t *testing.T) {
	text := "alpha   beta\n\n\tgamma delta epsilon zeta"
	chunks := ChunkText(text, DefaultChunkConfig())
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma delta epsilon zeta", chunks[0])
}

func TestChunkText_AlwaysMakesProgress(t *testing.T) {
	// Overlap nearly equal to the window size cannot stall the loop.
	text := strings.Repeat("w", 3000)
	cfg := ChunkConfig{Size: 100, Overlap: 99, MinChars: 20}

	chunks := ChunkText(text, cfg)
	assert.NotEmpty(t, chunks)
	assert.Less(t, len(chunks), 3000)
}

func TestChunkText_ClampsDegenerateConfig(t *testing.T) {
	text := strings.Repeat("v", 1000)

	// Overlap at or above the window size is reduced to size-1, and a
	// negative overlap becomes zero. Neither may panic or stall.
	for _, cfg := range []ChunkConfig{
		{Size: 100, Overlap: 100, MinChars: 20},
		{Size: 100, Overlap: 250, MinChars: 20},
		{Size: 100, Overlap: -5, MinChars: 20},
	} {
		chunks := ChunkText(text, cfg)
		assert.NotEmpty(t, chunks, "size %d overlap %d", cfg.Size, cfg.Overlap)
		for i, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), cfg.Size, "chunk %d exceeds window", i)
		}
	}
}

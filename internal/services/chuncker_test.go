package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkKeepsSmallTextWhole(t *testing.T) {
	chunks := NewTextChunker(1000, 100).Chunk("Jane Doe\n\nGo developer")
	assert.Equal(t, []string{"Jane Doe\n\nGo developer"}, chunks)
}

func TestChunkSplitsWithOverlap(t *testing.T) {
	para := strings.Repeat("word ", 30)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := NewTextChunker(200, 20).Chunk(text)
	assert.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		tail := lastRunes(chunks[i-1], 20)
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d lacks overlap", i)
	}
}

func TestChunkEmpty(t *testing.T) {
	assert.Empty(t, NewTextChunker(0, -1).Chunk("  \n\n "))
}

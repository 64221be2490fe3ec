// Package retrieval indexes document pages into a pgvector chunk store and
// answers natural-language queries with the best-matching page. It
// implements the companion's retriever.
package retrieval

import "strings"

// Chunking parameters, in words. Neighboring chunks share ChunkOverlap
// words so sentences split at a window boundary still match on one side.
const (
	ChunkSize    = 200
	ChunkOverlap = 20
)

// Chunks splits text into overlapping word windows of ChunkSize words.
// Text at or under ChunkSize words is returned whole, unmodified.
func Chunks(text string) []string {
	return chunk(text, ChunkSize, ChunkOverlap)
}

func chunk(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

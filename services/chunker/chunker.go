// Package chunker splits extracted text into model-sized pieces and spreads
// a question budget across them.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/quiz-brain/services/extraction"
)

const (
	DefaultMaxChunkChars = 2000
	DefaultOverlapWords  = 30
	DefaultMinChunkWords = 20
)

// Chunk is a contiguous window of the document
type Chunk struct {
	Index int
	Text  string
	Words int
}

// Config holds chunking limits
type Config struct {
	MaxChunkChars int // soft limit, a single oversized word still forms a chunk
	OverlapWords  int // words repeated at the start of the next chunk, within half of MaxChunkChars
	MinChunkWords int
}

// DefaultConfig returns the standard chunking limits
func DefaultConfig() Config {
	return Config{
		MaxChunkChars: DefaultMaxChunkChars,
		OverlapWords:  DefaultOverlapWords,
		MinChunkWords: DefaultMinChunkWords,
	}
}

// Chunker splits text on word boundaries
type Chunker struct {
	cfg Config
}

// New creates a chunker, filling zero limits with defaults
func New(cfg Config) *Chunker {
	def := DefaultConfig()
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = def.MaxChunkChars
	}
	if cfg.OverlapWords < 0 {
		cfg.OverlapWords = 0
	}
	if cfg.MinChunkWords <= 0 {
		cfg.MinChunkWords = def.MinChunkWords
	}
	return &Chunker{cfg: cfg}
}

// Words returns the words of text with page markers removed
func Words(text string) []string {
	return strings.Fields(extraction.PageMarkerRegex.ReplaceAllString(text, " "))
}

// Split packs the words of text into chunks. Chunks shorter than
// MinChunkWords are dropped, but non-empty text always yields one chunk.
func (c *Chunker) Split(text string) []Chunk {
	words := Words(text)
	if len(words) == 0 {
		return nil
	}

	var raw [][]string
	var current []string
	size, fresh := 0, 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		if fresh > 0 && size+1+wordLen > c.cfg.MaxChunkChars {
			raw = append(raw, current)
			current = overlapTail(current, c.cfg.OverlapWords, c.cfg.MaxChunkChars/2)
			size = joinedLen(current)
			fresh = 0
		}
		if fresh == 0 && len(current) > 0 && size+1+wordLen > c.cfg.MaxChunkChars {
			current, size = nil, 0
		}
		if len(current) > 0 {
			size++
		}
		current = append(current, word)
		size += wordLen
		fresh++
	}
	if fresh > 0 {
		raw = append(raw, current)
	}

	chunks := make([]Chunk, 0, len(raw))
	for _, ws := range raw {
		if len(ws) < c.cfg.MinChunkWords {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: strings.Join(ws, " "), Words: len(ws)})
	}
	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{Index: 0, Text: strings.Join(raw[0], " "), Words: len(raw[0])})
	}

	log.Infof("Chunker: split %d words into %d chunks (max %d chars, overlap %d words)",
		len(words), len(chunks), c.cfg.MaxChunkChars, c.cfg.OverlapWords)
	return chunks
}

// overlapTail copies up to the last n words, stopping before the tail grows
// past maxChars, so the next chunk never aliases the previous one
func overlapTail(words []string, n, maxChars int) []string {
	if n <= 0 || len(words) == 0 {
		return nil
	}
	if n > len(words) {
		n = len(words)
	}
	size, start := 0, len(words)
	for start > len(words)-n {
		wordLen := utf8.RuneCountInString(words[start-1])
		if start < len(words) {
			wordLen++
		}
		if size+wordLen > maxChars {
			break
		}
		size += wordLen
		start--
	}
	if start == len(words) {
		return nil
	}
	return append([]string(nil), words[start:]...)
}

func joinedLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	n := len(words) - 1
	for _, w := range words {
		n += utf8.RuneCountInString(w)
	}
	return n
}

// Package chunker splits document text into token-bounded, boundary-aware
// semantic chunks carrying hierarchical header context.
package chunker

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// Default chunking budgets, in estimated tokens.
const (
	// TargetChunkTokens is the documented soft target per chunk.
	TargetChunkTokens = 600

	// MaxChunkTokens is the hard maximum; adding a segment that would
	// push a chunk past this closes the chunk.
	MaxChunkTokens = 800

	// MinChunkTokens is a documented soft minimum, not enforced: very
	// short trailing segments may still produce small final chunks.
	MinChunkTokens = 200

	// OverlapTokens is the budget for the sentence-suffix overlap
	// seeded into the next chunk.
	OverlapTokens = 75

	// tokensPerChar is the character budget for one estimated token.
	tokensPerChar = 4
)

// segmentType classifies a run of consecutive lines.
type segmentType int

const (
	segParagraph segmentType = iota
	segHeading
	segList
	segCode
	segTable
)

// segment is a run of same-type lines between boundaries.
type segment struct {
	content string
	typ     segmentType
	tokens  int
}

// Chunker splits text into semantic chunks.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxTokens sets the hard maximum chunk size in estimated tokens.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOverlapTokens sets the overlap budget in estimated tokens.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlapTokens = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens:     MaxChunkTokens,
		overlapTokens: OverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlapTokens >= c.maxTokens {
		c.overlapTokens = c.maxTokens / 4
	}
	return c
}

// Chunk splits content into an ordered list of semantic chunks. Empty
// or whitespace-only input yields an empty list.
func (c *Chunker) Chunk(content, sourceName, sourcePath string) []domain.SemanticChunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	segments := splitSegments(content)

	var (
		chunks  []domain.SemanticChunk
		buf     strings.Builder
		headers []string
		index   int
		tokens  int
		// seededOnly is true while buf holds nothing beyond an overlap
		// seed; a trailing seed-only buffer is not emitted.
		seededOnly bool
	)

	flush := func() {
		chunk := c.build(buf.String(), sourceName, sourcePath, index, headers)
		chunks = append(chunks, chunk)
		index++
	}

	for _, seg := range segments {
		if tokens+seg.tokens > c.maxTokens && buf.Len() > 0 && !seededOnly {
			flush()

			overlap := c.overlapTail(buf.String())
			buf.Reset()
			buf.WriteString(overlap)
			tokens = domain.EstimateTokens(overlap)
			seededOnly = true
		}

		if seg.typ == segHeading {
			headers = append(headers, strings.TrimSpace(seg.content))
			if len(headers) > domain.MaxChunkHeaders {
				headers = headers[1:]
			}
		}

		// A single segment past the hard maximum is split by sentence
		// boundaries into its own sub-chunks; it starts cleanly, so no
		// overlap seeding is needed.
		if seg.tokens > c.maxTokens {
			if buf.Len() > 0 && !seededOnly {
				flush()
			}
			buf.Reset()
			tokens = 0
			seededOnly = false

			for _, sub := range c.splitOversized(seg.content) {
				chunks = append(chunks, c.build(sub, sourceName, sourcePath, index, headers))
				index++
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(seg.content)
		tokens += seg.tokens
		seededOnly = false
	}

	if buf.Len() > 0 && !seededOnly {
		flush()
	}

	return chunks
}

// build constructs a chunk, snapshotting the current header stack.
func (c *Chunker) build(content, sourceName, sourcePath string, index int, headers []string) domain.SemanticChunk {
	content = strings.TrimSpace(content)
	hdrs := make([]string, len(headers))
	copy(hdrs, headers)

	return domain.SemanticChunk{
		ID:             uuid.New().String(),
		Content:        content,
		SourceDocument: sourceName,
		FilePath:       sourcePath,
		Index:          index,
		TokenCount:     domain.EstimateTokens(content),
		Type:           classifyChunk(content),
		Headers:        hdrs,
	}
}

// splitOversized splits one oversized segment into sentence-bounded
// sub-chunks, each within the hard maximum.
func (c *Chunker) splitOversized(content string) []string {
	var (
		out    []string
		buf    strings.Builder
		tokens int
	)

	for _, sentence := range SplitSentences(content) {
		st := domain.EstimateTokens(sentence)
		if tokens+st > c.maxTokens && buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
			tokens = 0
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sentence)
		tokens += st
	}

	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

// overlapTail returns the longest whole-sentence suffix of text that
// fits within the overlap budget.
func (c *Chunker) overlapTail(text string) string {
	budget := c.overlapTokens * tokensPerChar
	if len(text) <= budget {
		return text
	}

	sentences := SplitSentences(text)
	total := 0
	start := len(sentences)

	for i := len(sentences) - 1; i >= 0; i-- {
		need := len(sentences[i])
		if total > 0 {
			need++ // joining space
		}
		if total+need > budget {
			break
		}
		total += need
		start = i
	}

	return strings.Join(sentences[start:], " ")
}

// SplitSentences splits text on '.', '!' and '?' when followed by
// whitespace or end of text. A heuristic, not a full segmenter:
// abbreviations and decimals may split imperfectly.
func SplitSentences(text string) []string {
	var (
		sentences []string
		buf       strings.Builder
	)

	runes := []rune(text)
	for i, r := range runes {
		buf.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(buf.String()); s != "" {
			sentences = append(sentences, s)
		}
		buf.Reset()
	}

	if s := strings.TrimSpace(buf.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// splitSegments groups consecutive same-type lines into segments. A
// heading or code line always force-closes the current segment, even
// when the type is unchanged.
func splitSegments(text string) []segment {
	var (
		segments []segment
		buf      strings.Builder
		current  = segParagraph
	)

	close := func() {
		content := strings.TrimSpace(buf.String())
		if content != "" {
			segments = append(segments, segment{
				content: content,
				typ:     current,
				tokens:  domain.EstimateTokens(content),
			})
		}
		buf.Reset()
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		typ := classifyLine(raw, line)

		if buf.Len() > 0 && (typ != current || isMajorBoundary(typ)) {
			close()
		}

		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)
		current = typ
	}

	close()
	return segments
}

// isMajorBoundary reports whether a segment type is a hard boundary.
func isMajorBoundary(typ segmentType) bool {
	return typ == segHeading || typ == segCode
}

var listPrefixes = []string{"- ", "* ", "• "}

// classifyLine determines a line's segment type. Indent-sensitive code
// detection uses the raw line; everything else uses the trimmed line.
func classifyLine(raw, line string) segmentType {
	if strings.HasPrefix(line, "#") {
		return segHeading
	}
	if len(line) < 100 && isShoutedLine(line) {
		return segHeading
	}
	if isListLine(line) {
		return segList
	}
	if strings.HasPrefix(line, "```") || strings.HasPrefix(raw, "    ") || strings.HasPrefix(raw, "\t") {
		return segCode
	}
	if strings.Count(line, "|") >= 2 {
		return segTable
	}
	return segParagraph
}

// isShoutedLine reports whether every rune is uppercase, whitespace or
// punctuation, the short-all-caps heading heuristic.
func isShoutedLine(line string) bool {
	for _, r := range line {
		if !unicode.IsUpper(r) && !unicode.IsSpace(r) && !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

// isListLine reports whether a line starts a bullet or numbered item.
func isListLine(line string) bool {
	for _, p := range listPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return isNumberedItem(line)
}

// isNumberedItem matches "1. " and "1) " style prefixes.
func isNumberedItem(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i+1 >= len(line) {
		return false
	}
	if line[i] != '.' && line[i] != ')' {
		return false
	}
	return line[i+1] == ' ' || line[i+1] == '\t'
}

// classifyChunk determines the dominant content type of a built chunk.
func classifyChunk(content string) domain.ChunkType {
	lines := strings.Split(content, "\n")

	var (
		nonEmpty []string
		types    = map[segmentType]struct{}{}
	)
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		nonEmpty = append(nonEmpty, line)
		types[classifyLine(raw, line)] = struct{}{}
	}

	for _, line := range nonEmpty {
		if strings.HasPrefix(line, "#") {
			return domain.ChunkHeading
		}
	}
	for _, line := range nonEmpty {
		if isListLine(line) {
			return domain.ChunkList
		}
	}
	for _, line := range nonEmpty {
		if strings.Count(line, "|") >= 2 {
			return domain.ChunkTable
		}
	}
	for _, line := range nonEmpty {
		if strings.HasPrefix(line, "```") {
			return domain.ChunkCode
		}
	}

	if len(types) > 1 {
		return domain.ChunkMixed
	}
	return domain.ChunkParagraph
}

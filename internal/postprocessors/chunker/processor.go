// Package chunker provides a page-aware recursive text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order: paragraph, line, word, then a hard cut.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Processor splits each page of a document into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy.
// An empty final separator enables hard cuts.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits every page of the document into chunks.
// Input chunks are ignored; this processor creates new chunks from page text.
// Chunks never span pages and carry the page they came from.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	position := 0

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, text := range p.SplitText(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Content:  text,
				Position: position,
				Metadata: map[string]any{
					domain.MetaPageNumber:  page.Number,
					domain.MetaSourceLabel: fmt.Sprintf("page_%d", page.Number),
					domain.MetaSourceFile:  doc.Filename,
				},
			})
			position++
		}
	}

	return chunks, nil
}

// SplitText splits one page of text into trimmed, non-empty pieces of at most
// chunkSize characters. Text that already fits is returned whole.
func (p *Processor) SplitText(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if runeLen(trimmed) <= p.chunkSize {
		return []string{trimmed}
	}
	return p.split(trimmed, p.separators)
}

// split recursively breaks text on the first separator present in it and
// merges the pieces back into windows.
func (p *Processor) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			rest = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitOn(text, separator) {
		if runeLen(piece) < p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, p.merge(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			if s := strings.TrimSpace(piece); s != "" {
				final = append(final, s)
			}
		} else {
			final = append(final, p.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, p.merge(good, separator)...)
	}
	return final
}

// merge combines small pieces into windows of at most chunkSize characters.
// When a window closes, up to overlap characters of its trailing pieces are
// carried into the next window.
func (p *Processor) merge(pieces []string, separator string) []string {
	sepLen := runeLen(separator)

	var docs, current []string
	total := 0

	joinedLen := func(n int) int {
		if len(current) > 0 {
			return total + n + sepLen
		}
		return total + n
	}

	for _, piece := range pieces {
		n := runeLen(piece)
		if joinedLen(n) > p.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for total > p.overlap || (joinedLen(n) > p.chunkSize && total > 0) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitOn splits text on separator, dropping empty pieces.
// An empty separator splits into individual characters.
func splitOn(text, separator string) []string {
	var raw []string
	if separator == "" {
		raw = make([]string, 0, len(text))
		for _, r := range text {
			raw = append(raw, string(r))
		}
	} else {
		raw = strings.Split(text, separator)
	}

	pieces := raw[:0]
	for _, s := range raw {
		if s != "" {
			pieces = append(pieces, s)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

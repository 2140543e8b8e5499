// Package postprocessors turns extracted documents into chunks ready for
// embedding.
package postprocessors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs processors in order. The first receives nil chunks and
// creates them, later ones rewrite what they are handed.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a pipeline running processors in the order given.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Names returns the processor names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// Process runs doc through every processor. Blank chunks are dropped and
// the survivors renumbered from zero. Every chunk must point at one of the
// document's pages.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, proc := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		chunks, err = proc.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", proc.Name(), err)
		}
		logger.Debug("%s: %s produced %d chunks", doc.Filename, proc.Name(), len(chunks))
	}

	return finalize(doc, chunks)
}

func finalize(doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if chunks == nil {
		return nil, nil
	}

	pages := make(map[int]bool, len(doc.Pages))
	for _, page := range doc.Pages {
		pages[page.Number] = true
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		if n := c.PageNumber(); !pages[n] {
			return nil, fmt.Errorf("chunk %s: page %d is not in %s", c.ID, n, doc.Filename)
		}
		c.Position = len(out)
		out = append(out, c)
	}
	return out, nil
}

// BuildPipeline constructs the processors named in cfg, in order.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	if len(cfg.Processors) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no processors", domain.ErrInvalidInput)
	}

	processors := make([]driven.PostProcessor, 0, len(cfg.Processors))
	for _, name := range cfg.Processors {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		processors = append(processors, proc)
	}
	return NewPipeline(processors...), nil
}

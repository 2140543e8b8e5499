// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads PDFs in memory with github.com/ledongthuc/pdf.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract returns the non-blank pages of the PDF in order, numbered from 1.
// A page whose text cannot be decoded is logged and skipped; a document that
// cannot be opened at all fails with domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, data []byte) (pages []domain.Page, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrExtraction)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	total := reader.NumPage()
	logger.Debug("pdf: %d pages", total)

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := pageText(reader, i)
		if err != nil {
			logger.Warn("pdf: skipping page %d: %v", i, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: text})
	}

	return pages, nil
}

// pageText extracts one page, converting parser panics into errors so a single
// bad page does not lose the rest of the document.
func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", num, r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

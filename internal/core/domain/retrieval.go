package domain

import (
	"fmt"
	"strings"
)

// Passage is one retrieved chunk, tagged with where it came from.
type Passage struct {
	StoreID    string
	Page       int
	Content    string
	Similarity float64
}

// String formats the passage as it appears in the context blob.
func (p Passage) String() string {
	page := "Unknown"
	if p.Page > 0 {
		page = fmt.Sprintf("%d", p.Page)
	}
	return fmt.Sprintf("[Page %s]: %s", page, p.Content)
}

// RetrievalDiagnostics counts stores that could not be searched.
// Failed stores are skipped, so these numbers are the only trace of them.
type RetrievalDiagnostics struct {
	Requested int      `json:"requested"`
	Searched  int      `json:"searched"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// RetrievalContext is the ordered set of passages for one question.
// Passages follow per-store similarity rank with stores in caller order;
// there is no re-ranking across stores.
type RetrievalContext struct {
	Passages    []Passage
	Diagnostics RetrievalDiagnostics
}

// IsEmpty reports whether nothing was retrieved.
func (c RetrievalContext) IsEmpty() bool {
	return len(c.Passages) == 0
}

// String joins the formatted passages with blank lines.
func (c RetrievalContext) String() string {
	parts := make([]string, len(c.Passages))
	for i, p := range c.Passages {
		parts[i] = p.String()
	}
	return strings.Join(parts, "\n\n")
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>...",
	Short: "Ingest PDF files into new stores",
	Long: `Extracts text from each PDF, splits it into overlapping chunks, embeds
them and persists one store per file. Files are processed independently:
one unreadable PDF does not stop the others.

Use the printed store IDs with 'docchat chat --store'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

type ingestFileResult struct {
	Path    string `json:"path"`
	StoreID string `json:"store_id,omitempty"`
	Pages   int    `json:"pages,omitempty"`
	Chunks  int    `json:"chunks,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return unavailable("ingest")
	}

	results := make([]ingestFileResult, len(args))
	var uploads []domain.Upload
	var slots []int
	for i, path := range args {
		results[i].Path = path
		data, err := os.ReadFile(path)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		uploads = append(uploads, domain.Upload{Filename: filepath.Base(path), Content: data})
		slots = append(slots, i)
	}

	if len(uploads) > 0 {
		result, err := ingestService.Ingest(cmd.Context(), uploads)
		if err != nil && !errors.Is(err, domain.ErrIngestFailed) {
			return fmt.Errorf("ingest failed: %w", err)
		}
		for j, item := range result.Items {
			if j >= len(slots) {
				break
			}
			r := &results[slots[j]]
			if item.Err != nil {
				r.Error = item.Err.Error()
				continue
			}
			r.StoreID = item.StoreID
			r.Pages = item.Pages
			r.Chunks = item.Chunks
		}
	}

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}

	if ingestJSON {
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	} else {
		cmd.Printf("Ingested %d of %d files\n\n", succeeded, len(results))
		for _, r := range results {
			if r.Error != "" {
				cmd.Printf("  FAILED  %s\n          %s\n", r.Path, r.Error)
				continue
			}
			cmd.Printf("  %s  %s (%d pages, %d chunks)\n", r.StoreID, r.Path, r.Pages, r.Chunks)
		}
	}

	if succeeded == 0 {
		return domain.ErrIngestFailed
	}
	return nil
}

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest PDFs dropped into a directory",
	Long: `Watches a directory and ingests every PDF created or modified in it,
printing the new store ID. Subdirectories and hidden files are ignored.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return unavailable("ingest")
	}

	w := watcher.New(args[0], ingestService,
		watcher.WithDebounce(watchDebounce),
		watcher.WithReporter(func(path string, item domain.IngestItem) {
			if item.Err != nil {
				cmd.Printf("FAILED  %s: %v\n", path, item.Err)
				return
			}
			cmd.Printf("%s  %s (%d pages, %d chunks)\n", item.StoreID, path, item.Pages, item.Chunks)
		}),
	)

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(cmd.Context())
}

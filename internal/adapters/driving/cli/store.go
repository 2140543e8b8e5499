package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var storeJSON bool

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect persisted stores",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stores",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

var storeShowCmd = &cobra.Command{
	Use:   "show [store-id]",
	Short: "Show a store's manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreShow,
}

func init() {
	storeCmd.PersistentFlags().BoolVar(&storeJSON, "json", false, "output as JSON")
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeShowCmd)
	rootCmd.AddCommand(storeCmd)
}

func runStoreList(cmd *cobra.Command, _ []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	manifests, err := storeService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list stores: %w", err)
	}

	if storeJSON {
		if manifests == nil {
			manifests = []domain.StoreManifest{}
		}
		return printJSON(cmd, manifests)
	}

	if len(manifests) == 0 {
		cmd.Println("No stores found. Run 'docchat ingest <file.pdf>' to create one.")
		return nil
	}

	cmd.Println("Stores:")
	cmd.Println()
	for i := range manifests {
		m := &manifests[i]
		cmd.Printf("  %s\n", m.ID)
		cmd.Printf("      Source: %s (%d pages, %d chunks)\n", m.Source, m.Pages, m.Chunks)
		cmd.Printf("      Created: %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runStoreShow(cmd *cobra.Command, args []string) error {
	if storeService == nil {
		return errors.New("store service not configured")
	}

	m, err := storeService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			return fmt.Errorf("store %s not found, re-ingest the PDF to recreate it", args[0])
		}
		return fmt.Errorf("failed to get store: %w", err)
	}

	if storeJSON {
		return printJSON(cmd, m)
	}

	cmd.Printf("ID:              %s\n", m.ID)
	cmd.Printf("Source:          %s\n", m.Source)
	cmd.Printf("Pages:           %d\n", m.Pages)
	cmd.Printf("Chunks:          %d\n", m.Chunks)
	cmd.Printf("Embedding model: %s (%d dimensions)\n", m.EmbeddingModel, m.Dimensions)
	cmd.Printf("Created:         %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

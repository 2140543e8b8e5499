package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/api"
)

var (
	serveAddr      string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API server.

Routes:
  POST /api/v1/pdf/upload   multipart field "files", one or more PDFs
  POST /api/v1/chat/chat    {"question", "store_ids", "chat_history", "mode"}
  GET  /api/v1/stores       list stores
  GET  /api/v1/stores/{id}  show one store
  GET  /healthz             liveness

The listen address defaults to server.addr from the config (:8000).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", api.DefaultMaxUploadBytes, "maximum upload request size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return unavailable("ingest")
	}
	if chatService == nil {
		return unavailable("chat")
	}

	server, err := api.NewServer(&api.Ports{
		Ingest: ingestService,
		Chat:   chatService,
		Stores: storeService,
	}, api.WithMaxUploadBytes(serveMaxUpload))
	if err != nil {
		return err
	}

	if application != nil {
		application.WatchPrompts(cmd.Context())
	}

	addr := serveAddr
	if addr == "" {
		addr = serverAddr
	}
	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}

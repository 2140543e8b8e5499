package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/mcp"
)

var mcpHost string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose docchat to MCP clients",
	Long: `Serve docchat's stores to MCP clients such as Claude Desktop.

Tools: ask_documents, ingest_pdf, list_stores.
Resources: docchat://stores and docchat://stores/{id}.

Without --port the server speaks JSON-RPC over stdin/stdout. Register it with
a desktop client like this:

  {"mcpServers": {"docchat": {"command": "docchat", "args": ["mcp", "serve"]}}}

With --port it serves the streamable HTTP transport instead, which suits
the MCP Inspector and remote clients.`,
	Example: `  docchat mcp serve
  docchat mcp serve --port 8080 --host 0.0.0.0`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("reading --port: %w", err)
	}
	if chatService == nil {
		return unavailable("chat")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Chat:   chatService,
		Ingest: ingestService,
		Stores: storeService,
	})
	if err != nil {
		return err
	}

	if application != nil {
		application.WatchPrompts(cmd.Context())
	}

	if port <= 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(port))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}

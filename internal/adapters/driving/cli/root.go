// Package cli provides the cobra command tree for docchat.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/app"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// skipBootstrap marks commands that run without loading configuration.
const skipBootstrap = "docchat/skip-bootstrap"

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. They are populated by bootstrap before a
// command runs; tests assign them directly.
var (
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	chatService     driving.ChatService
	storeService    driving.StoreService

	// serverAddr is the configured HTTP listen address.
	serverAddr = domain.DefaultServerAddr
)

var (
	verbose    bool
	configPath string
	ephemeral  bool

	application *app.App

	// newApp builds the application. Replaced in tests.
	newApp = app.New
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your PDF documents",
	Long: `docchat ingests PDF files into searchable vector stores and answers
questions about them with an LLM, citing the pages it used.

Serve it over HTTP, expose it to AI assistants over MCP, or use it directly
from the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docchat/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep settings and stores in memory for this run")
}

// Execute runs the root command and releases the services it opened.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := shutdown(); err == nil {
		err = closeErr
	}
	return err
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if _, skip := cmd.Annotations[skipBootstrap]; skip {
		return nil
	}
	// Already wired (tests, or a previous run in the same process).
	if settingsService != nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, app.Options{ConfigPath: configPath, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	application = a

	settingsService = a.Settings
	storeService = a.Stores
	if a.Ingest != nil {
		ingestService = a.Ingest
	}
	if a.Chat != nil {
		chatService = a.Chat
	}
	if a.Config.Server.Addr != "" {
		serverAddr = a.Config.Server.Addr
	}
	for _, w := range a.Warnings {
		logger.Debug("%s", w)
	}
	return nil
}

func shutdown() error {
	if application == nil {
		return nil
	}
	err := application.Close()
	application = nil
	settingsService, ingestService, chatService, storeService = nil, nil, nil, nil
	return err
}

// unavailable explains why a service is missing.
func unavailable(service string) error {
	if application != nil {
		if err := application.Unavailable(service); err != nil {
			return fmt.Errorf("%w. Run 'docchat settings set-key' to configure providers", err)
		}
	}
	return fmt.Errorf("%s service not configured", service)
}

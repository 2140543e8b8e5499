package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var (
	chatStores      []string
	chatMode        string
	chatHistoryFile string
	chatJSON        bool
	chatShowContext bool
)

// stdinIsTerminal reports whether the REPL should start. Replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about ingested PDFs",
	Long: `Answers a question from passages retrieved from one or more stores.

With a question argument, prints a single answer. Without one, starts an
interactive session when attached to a terminal (each answer is added to the
conversation history) or reads the question from stdin otherwise.

Modes:
  multi-turn   - 5 passages per store (default)
  single-shot  - 10 passages per store`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVarP(&chatStores, "store", "s", nil, "store ID to search (repeatable, searched in order)")
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", string(domain.DefaultMode), "retrieval mode: multi-turn or single-shot")
	chatCmd.Flags().StringVar(&chatHistoryFile, "history", "", "JSON file with prior turns [{\"role\":...,\"content\":...}]")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output the response as JSON")
	chatCmd.Flags().BoolVar(&chatShowContext, "context", false, "print the retrieved context after the answer")
	rootCmd.AddCommand(chatCmd)
}

type chatOutput struct {
	Response    string                      `json:"response"`
	Context     string                      `json:"context"`
	Timestamp   string                      `json:"timestamp"`
	Outcome     domain.Outcome              `json:"outcome"`
	Diagnostics domain.RetrievalDiagnostics `json:"diagnostics"`
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return unavailable("chat")
	}
	if len(chatStores) == 0 {
		return errors.New("at least one --store is required (see 'docchat store list')")
	}

	history, err := loadHistory(chatHistoryFile)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		_, err := ask(cmd, args[0], history)
		return err
	}

	if stdinIsTerminal() {
		return chatLoop(cmd, history)
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading question: %w", err)
	}
	_, err = ask(cmd, string(data), history)
	return err
}

// ask validates and answers one question, printing the response.
func ask(cmd *cobra.Command, question string, history []domain.Turn) (domain.ChatResponse, error) {
	req := domain.ChatRequest{
		Question: strings.TrimSpace(question),
		StoreIDs: chatStores,
		History:  history,
		Mode:     domain.Mode(chatMode),
	}
	if err := req.Validate(); err != nil {
		return domain.ChatResponse{}, err
	}

	resp := chatService.Respond(cmd.Context(), req)
	if chatJSON {
		return resp, printChatJSON(cmd, resp)
	}

	cmd.Println(resp.Answer)
	if resp.Diagnostics.Failed > 0 {
		cmd.Printf("\n(skipped %d of %d stores: %s)\n",
			resp.Diagnostics.Failed, resp.Diagnostics.Requested, strings.Join(resp.Diagnostics.FailedIDs, ", "))
	}
	if chatShowContext && resp.Context != "" {
		cmd.Println()
		cmd.Println("Context")
		cmd.Println("-------")
		cmd.Println(resp.Context)
	}
	return resp, nil
}

// chatLoop runs an interactive session until EOF, "exit" or "quit".
func chatLoop(cmd *cobra.Command, history []domain.Turn) error {
	cmd.Printf("Chatting with %s (%s). Type 'exit' to quit.\n\n", strings.Join(chatStores, ", "), chatMode)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		resp, err := ask(cmd, question, history)
		if err != nil {
			cmd.Printf("Error: %v\n\n", err)
			continue
		}
		cmd.Println()

		history = append(history,
			domain.Turn{Role: domain.RoleUser, Content: question},
			domain.Turn{Role: domain.RoleAssistant, Content: resp.Answer},
		)
	}
}

func loadHistory(path string) ([]domain.Turn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing history %s: %w", path, err)
	}
	return turns, nil
}

func printChatJSON(cmd *cobra.Command, resp domain.ChatResponse) error {
	out := chatOutput{
		Response:    resp.Answer,
		Context:     resp.Context,
		Timestamp:   resp.Timestamp.Format(time.RFC3339),
		Outcome:     resp.Outcome,
		Diagnostics: resp.Diagnostics,
	}
	return printJSON(cmd, out)
}

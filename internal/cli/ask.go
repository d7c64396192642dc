package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/quorum/internal/gateway"
	"github.com/Dicklesworthstone/quorum/internal/modes"
	"github.com/Dicklesworthstone/quorum/internal/state"
)

func newAskCmd() *cobra.Command {
	var (
		mode           string
		models         []string
		conversationID string
		presetPath     string
		noColor        bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Run one deliberation and print the final answer",
		Long: `Send a question to the configured model roster and run the chosen
deliberation mode locally. Progress streams to stderr; the final answer
prints to stdout (rendered as markdown on a TTY, plain when piped).

Examples:
  quorum ask "should we shard the database?"
  quorum ask --mode vote --model m1 --model m2 "tabs or spaces?"
  quorum ask --conversation 4f2c... "and what about read replicas?"
  quorum ask --preset redteam.yaml "review the rollout plan"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(args[0], mode, models, conversationID, presetPath, noColor)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "deliberation mode (default from config)")
	cmd.Flags().StringArrayVar(&models, "model", nil, "model id (repeatable; default roster from config)")
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	cmd.Flags().StringVar(&presetPath, "preset", "", "YAML preset with mode, models, and config")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable styled output")

	return cmd
}

func runAsk(question, mode string, models []string, conversationID, presetPath string, noColor bool) error {
	modeCfg := modes.Config{}
	if presetPath != "" {
		preset, err := LoadPreset(presetPath)
		if err != nil {
			return err
		}
		modeCfg = preset.ModeConfig()
		if mode == "" {
			mode = preset.Mode
		}
	}
	if mode == "" {
		mode = cfg.Defaults.Mode
	}
	if len(models) > 0 {
		modeCfg["models"] = models
	}
	if len(modeCfg.Models()) == 0 {
		modeCfg["models"] = cfg.Defaults.Models
	}

	if cfg.Gateway.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no gateway API key configured (set QUORUM_API_KEY)")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	gw := gateway.NewClient(cfg.Gateway.APIKey, gateway.WithBaseURL(cfg.Gateway.BaseURL))
	dispatcher := modes.NewDispatcher(gw, nil)

	history, err := loadHistory(store, conversationID)
	if err != nil {
		return err
	}

	color := !noColor && isatty.IsTerminal(os.Stderr.Fd())
	progress := newProgressEmitter(os.Stderr, color)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := dispatcher.Execute(ctx, modes.Request{
		Question:       question,
		Mode:           mode,
		ConversationID: conversationID,
		History:        history,
		Config:         modeCfg,
	}, progress)

	answer := result.Answer
	if result.Err != nil {
		answer = fmt.Sprintf("[error: %v]", result.Err)
	}
	if err := store.SaveExchange(&state.Exchange{
		ConversationID: result.ConversationID,
		Title:          result.Title,
		Mode:           mode,
		MessageID:      result.MessageID,
		Question:       question,
		Answer:         answer,
		Stages:         result.Stages,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving conversation: %v\n", err)
	}

	if result.Err != nil {
		return result.Err
	}

	fmt.Println(renderMarkdown(result.Answer))
	fmt.Fprintf(os.Stderr, "\n%s\n", styleDim.Render(
		fmt.Sprintf("conversation %s (continue with --conversation)", result.ConversationID)))
	return nil
}

func openStore() (*state.Store, error) {
	path := cfg.Storage.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	store, err := state.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening conversation store: %w", err)
	}
	return store, nil
}

func loadHistory(store *state.Store, conversationID string) ([]gateway.Turn, error) {
	if conversationID == "" {
		return nil, nil
	}
	messages, err := store.History(conversationID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", conversationID, err)
	}
	turns := make([]gateway.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, gateway.Turn{Role: m.Role, Content: m.Content})
	}
	return turns, nil
}

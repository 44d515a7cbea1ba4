package commands

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/diogo/zaril/internal/render"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/transcript"
	"github.com/diogo/zaril/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with Zaril.

Answers stream into the transcript as they are generated. The whole
conversation is sent with every message.
Type '/copy' to copy the last answer, 'exit' or 'quit' (or press Ctrl+C) to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps)
		},
	}
}

func runChat(deps *Dependencies) error {
	stderr := deps.stderr()
	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}

	// the alt screen owns the terminal, so logs go to a file or nowhere
	logger := log.New(io.Discard, "", 0)
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "zaril")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger = log.Default()
	}

	client, err := deps.client(cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, tui.FormatError(err))
		return err
	}
	defer client.Close()

	cache, err := render.NewCache(cfg.RenderCacheSize)
	if err != nil {
		warn(stderr, "render cache disabled: %v", err)
		cache = nil
	}

	tui.ApplyPalette(render.PaletteOrDefault(cfg.TUITheme))

	store := transcript.New(cfg.Greeting)
	ctrl := session.NewController(store, client, session.WithLogger(logger))

	opts := []tui.ModelOption{
		tui.WithRenderOptions(render.OptionsFromConfig(cfg)),
		tui.WithClipboard(deps.copier()),
	}
	if cache != nil {
		opts = append(opts, tui.WithRenderCache(cache))
	}

	return deps.chatUI().RunChat(ctrl, client.GetModel().Name, opts...)
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/zaril/internal/api"
	"github.com/diogo/zaril/internal/config"
	"github.com/diogo/zaril/internal/format"
	"github.com/diogo/zaril/internal/render"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/transcript"
	"github.com/diogo/zaril/internal/tui"
)

var assistantLabelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7aa2f7")).
	Bold(true)

// runQuery sends a single prompt and writes the answer to out. Streamed
// fragments are written as they arrive unless the answer goes to a file.
func runQuery(ctx context.Context, deps *Dependencies, out io.Writer, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	stderr := deps.stderr()
	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(stderr, "[verbose] ", log.LstdFlags)
	}
	client, err := deps.client(cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, tui.FormatError(err))
		return err
	}
	defer client.Close()

	if cfg.Verbose {
		fmt.Fprintf(stderr, "[verbose] Model: %s\n", client.GetModel().Name)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	store := transcript.New(cfg.Greeting)
	startTime := time.Now()

	var answer string
	if noStreamFlag {
		answer, err = completeOnce(ctx, client, store, prompt, stderr)
	} else {
		answer, err = streamOnce(ctx, client, store, prompt, out, stderr, logger)
	}
	if err != nil {
		fmt.Fprintln(stderr, tui.FormatError(err))
		return fmt.Errorf("generation failed: %w", err)
	}

	if cfg.Verbose {
		fmt.Fprintf(stderr, "[verbose] Request took %s\n", time.Since(startTime).Round(time.Millisecond))
	}

	return deliver(deps, cfg, out, answer)
}

// streamOnce runs the prompt through a Controller so the one-shot answer is
// built exactly like a chat turn.
func streamOnce(ctx context.Context, client api.ClientInterface, store *transcript.Store, prompt string, out, stderr io.Writer, logger *log.Logger) (string, error) {
	toFile := outputFlag != ""

	var spin *spinner
	if toFile {
		spin = newSpinner(stderr, "Zaril is typing")
		spin.start()
	}

	var printed bool
	ctrl := session.NewController(store, client,
		session.WithLogger(logger),
		session.WithFragmentHook(func(fragment string) {
			if toFile {
				return
			}
			printed = true
			fmt.Fprint(out, fragment)
		}),
	)

	err := ctrl.Submit(ctx, prompt)
	answer, _ := store.Snapshot().LastAssistant()
	if printed && !strings.HasSuffix(answer, "\n") {
		fmt.Fprintln(out)
	}
	if spin != nil {
		if err != nil {
			spin.stopWithError()
		} else {
			spin.stopWithSuccess("Done")
		}
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

// completeOnce sends the conversation to the non-streaming endpoint and
// records the reply in store.
func completeOnce(ctx context.Context, client api.ClientInterface, store *transcript.Store, prompt string, stderr io.Writer) (string, error) {
	store.AppendUser(prompt)

	spin := newSpinner(stderr, "Zaril is typing")
	spin.start()

	answer, err := client.Complete(ctx, store.Snapshot().Messages)
	if err != nil {
		spin.stopWithError()
		return "", err
	}
	spin.stopWithSuccess("Done")

	store.AppendAssistantPlaceholder()
	if err := store.AppendDelta(answer); err != nil {
		return "", err
	}
	store.CloseTail()
	return answer, nil
}

// deliver copies, saves or prints the final answer
func deliver(deps *Dependencies, cfg config.Config, out io.Writer, answer string) error {
	stderr := deps.stderr()

	if cfg.CopyToClipboard {
		if err := deps.copier()(format.Format(answer).Plain()); err != nil {
			warn(stderr, "Failed to copy to clipboard: %v", err)
		} else {
			success(stderr, "Copied to clipboard")
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(answer), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		success(stderr, "Response saved to %s", outputFlag)
		return nil
	}

	// streamed answers are already on out
	if !noStreamFlag {
		return nil
	}

	if !isTerminal(out) {
		fmt.Fprint(out, answer)
		if !strings.HasSuffix(answer, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	width := terminalWidth(out, 80) - 4
	if width < 40 {
		width = 40
	}
	if width > 120 {
		width = 120
	}
	opts := render.OptionsFromConfig(cfg).WithWidth(width)

	rendered, err := render.Display(format.Format(answer), opts)
	if err != nil {
		rendered = answer
	}
	fmt.Fprintln(out, assistantLabelStyle.Render("✦ Zaril"))
	fmt.Fprintln(out, rendered)
	return nil
}

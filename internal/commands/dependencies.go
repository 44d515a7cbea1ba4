package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"

	"github.com/diogo/zaril/internal/api"
	"github.com/diogo/zaril/internal/config"
	"github.com/diogo/zaril/internal/models"
	"github.com/diogo/zaril/internal/session"
	"github.com/diogo/zaril/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctrl *session.Controller, modelName string, opts ...tui.ModelOption) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Client is the completion service client. When nil a client is built
	// from the resolved configuration.
	Client api.ClientInterface

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error

	// Stderr receives progress, warnings and decorated errors.
	Stderr io.Writer
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctrl *session.Controller, modelName string, opts ...tui.ModelOption) error {
	return tui.RunChat(ctrl, modelName, opts...)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:       &DefaultTUI{},
		Clipboard: clipboard.WriteAll,
		Stderr:    os.Stderr,
	}
}

func (d *Dependencies) stderr() io.Writer {
	if d == nil || d.Stderr == nil {
		return os.Stderr
	}
	return d.Stderr
}

func (d *Dependencies) chatUI() TUIInterface {
	if d == nil || d.TUI == nil {
		return &DefaultTUI{}
	}
	return d.TUI
}

func (d *Dependencies) copier() func(string) error {
	if d == nil || d.Clipboard == nil {
		return clipboard.WriteAll
	}
	return d.Clipboard
}

// client returns the injected client or builds one from cfg
func (d *Dependencies) client(cfg config.Config, logger *log.Logger) (api.ClientInterface, error) {
	if d != nil && d.Client != nil {
		return d.Client, nil
	}
	return newClient(cfg, logger)
}

// loadConfig reads the config file and applies .env, environment and flag
// overrides on top of it.
func loadConfig(stderr io.Writer) (config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		warn(stderr, "%v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyEnv(cfg)
	if modelFlag != "" {
		cfg.DefaultModel = modelFlag
	}
	return cfg, nil
}

func newClient(cfg config.Config, logger *log.Logger) (*api.Client, error) {
	key, err := config.ResolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(key,
		api.WithModel(models.ModelFromName(cfg.DefaultModel)),
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeoutSeconds(cfg.RequestTimeoutSeconds),
		api.WithLogger(logger),
		api.WithVerbose(cfg.Verbose),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

var (
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen, color.Bold)
	accentColor  = color.New(color.FgCyan, color.Bold)
)

func warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "⚠ "+format+"\n", args...)
}

func success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

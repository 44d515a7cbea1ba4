package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/zaril/internal/tui"
	"github.com/diogo/zaril/internal/web"
)

// NewServeCmd creates the command serving the chat page
func NewServeCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat in a browser",
		Long: `Serve the chat page and its websocket endpoint.

Every browser tab gets its own conversation, discarded when the tab closes.
The listen address defaults to serve_addr from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, deps, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, e.g. :8080)")
	return cmd
}

func runServe(ctx context.Context, deps *Dependencies, addr string) error {
	stderr := deps.stderr()
	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ServeAddr
	}

	logger := log.New(stderr, "", log.LstdFlags)
	client, err := deps.client(cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, tui.FormatError(err))
		return err
	}
	defer client.Close()

	server := web.NewServer(client,
		web.WithGreeting(cfg.Greeting),
		web.WithLogger(logger),
	)

	accentColor.Fprintf(stderr, "✦ Zaril on %s (model %s)\n", serveURL(addr), client.GetModel().Name)
	return server.ListenAndServe(ctx, addr)
}

// serveURL returns a browsable URL for a listen address
func serveURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

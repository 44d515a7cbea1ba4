package commands

import (
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/spf13/cobra"

	"github.com/diogo/zaril/internal/tui"
)

// NewModelsCmd creates the command listing the models the service offers
func NewModelsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Long:  `List the model ids served by the configured base URL. The current model is marked with '*'.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cmd, deps)
		},
	}
}

func runModels(cmd *cobra.Command, deps *Dependencies) error {
	stderr := deps.stderr()
	cfg, err := loadConfig(stderr)
	if err != nil {
		return err
	}

	client, err := deps.client(cfg, log.New(io.Discard, "", 0))
	if err != nil {
		fmt.Fprintln(stderr, tui.FormatError(err))
		return err
	}
	defer client.Close()

	spin := newSpinner(stderr, "Loading models")
	spin.start()
	ids, err := client.ListModels(cmd.Context())
	if err != nil {
		spin.stopWithError()
		fmt.Fprintln(stderr, tui.FormatError(err))
		return fmt.Errorf("failed to list models: %w", err)
	}
	spin.stopWithSuccess(fmt.Sprintf("%d models", len(ids)))

	sort.Strings(ids)
	current := client.GetModel().Name
	out := cmd.OutOrStdout()
	for _, id := range ids {
		if id == current {
			accentColor.Fprintf(out, "* %s\n", id)
			continue
		}
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

// Package commands provides CLI commands for zaril.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	modelFlag    string
	outputFlag   string
	fileFlag     string
	noStreamFlag bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

var defaultDeps = NewDependencies()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zaril [prompt]",
	Short: "Streaming chat client for Groq-hosted models",
	Long: `zaril is a chat client for the Groq OpenAI-compatible API. Answers are
streamed as they are generated and shown with lists and code blocks formatted.

Examples:
  zaril chat                            Start interactive chat
  zaril serve --addr :8080              Serve the chat in a browser
  zaril "What is Go?"                   Send a single query
  zaril -f prompt.md                    Read prompt from file
  cat prompt.md | zaril                 Read prompt from stdin
  zaril "Hello" -o response.md          Save response to file
  zaril config set default_model llama-3.1-8b-instant`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check for version flag
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "zaril %s (built %s)\n", Version, BuildTime)
			return nil
		}

		prompt, ok, err := readPrompt(cmd.InOrStdin(), stdinPiped(), args)
		if err != nil {
			return err
		}
		if !ok {
			// No input - show help
			return cmd.Help()
		}

		return runQuery(cmd.Context(), defaultDeps, cmd.OutOrStdout(), prompt)
	},
}

// readPrompt picks the prompt from, in order, the -f file, piped stdin and
// the positional argument. ok is false when none supplied one.
func readPrompt(stdin io.Reader, piped bool, args []string) (prompt string, ok bool, err error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if piped {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}
	return "", false, nil
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., llama-3.3-70b-versatile)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&noStreamFlag, "no-stream", false, "Wait for the whole answer instead of streaming it")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(NewChatCmd(defaultDeps))
	rootCmd.AddCommand(NewServeCmd(defaultDeps))
	rootCmd.AddCommand(NewModelsCmd(defaultDeps))
	rootCmd.AddCommand(NewConfigCmd(defaultDeps))
}

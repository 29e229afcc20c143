// Package cli holds the forumctl operator commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/qolzam/forum/internal/pkg/log"
	"github.com/spf13/cobra"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

type rootOptions struct {
	logLevel string
	output   string
}

// NewRootCommand builds the forumctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "forumctl",
		Short: "Operator tools for the forum vote and ranking service",
		Long: `forumctl runs maintenance tasks against the forum database, such as
rebuilding vote counters and reputation from the vote ledger, and
evaluates the ranking functions for given counters.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != OutputText && opts.output != OutputJSON {
				return fmt.Errorf("--output must be %s or %s", OutputText, OutputJSON)
			}
			log.SetLevel(log.ParseLevel(opts.logLevel))
			log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputText, "Output format: text, json")

	root.AddCommand(newReconcileCommand(opts))
	root.AddCommand(newScoreCommand(opts))
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

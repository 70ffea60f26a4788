package cmd

import (
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Scan the bench (or build the simulated one with --sim), put every
instrument into a safe state and start the interactive prompt.

Examples:
  otbench repl
  otbench repl --sim
  otbench repl --config lab-bench.yaml --scripts lab-scripts.json`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	sh, err := buildShell(cmd.Context())
	if err != nil {
		return err
	}
	return sh.Run(cmd.Context())
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script> [name=value ...]",
	Short: "Run one stored script and exit",
	Long: `Connect the bench, run a stored script with the given parameter
bindings, park the instruments and exit.

Examples:
  otbench run power_up
  otbench run sweep start=1 stop=5 step=0.5
  otbench run --sim selftest`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	params := make(map[string]string)
	for _, a := range args[1:] {
		key, value, found := strings.Cut(a, "=")
		if !found || key == "" {
			return fmt.Errorf("parameters take the form name=value, got %q", a)
		}
		params[key] = value
	}

	sh, err := buildShell(cmd.Context())
	if err != nil {
		return err
	}
	defer sh.Shutdown()

	sh.RunScript(args[0], params)
	return nil
}

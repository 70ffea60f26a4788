package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceBench/pkg/script"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts [name]",
	Short: "List or show stored scripts",
	Long: `Inspect the script store without connecting any instruments. With no
argument every stored script is listed; with a name its lines are printed.

Examples:
  otbench scripts
  otbench scripts power_up
  otbench scripts --scripts lab-scripts.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScripts,
}

func init() {
	rootCmd.AddCommand(scriptsCmd)
}

func runScripts(cmd *cobra.Command, args []string) error {
	store := script.NewStore(scriptsPath)
	if err := store.Load(); err != nil {
		return err
	}

	if len(args) == 1 {
		lines, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("script %q not found in %s", args[0], scriptsPath)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	names := store.Names()
	if len(names) == 0 {
		fmt.Printf("no scripts stored in %s\n", scriptsPath)
		return nil
	}
	for _, name := range names {
		lines, _ := store.Get(name)
		fmt.Printf("%-20s %d lines\n", name, len(lines))
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planogramctl",
		Short: "Offline tools for planogram drafts",
		Long: `planogramctl works on saved drafts and detection payloads without the
editor service: export backend coordinates, import a detection result,
check layout invariants and render an SVG preview.`,
		Example: `  planogramctl export --draft draft.json --scale 2
  planogramctl import --payload detection.json --catalog data --layout single-4
  planogramctl validate --draft draft.json
  planogramctl render --draft draft.json --output preview.svg`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRenderCommand())

	return rootCmd
}

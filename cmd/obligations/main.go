// Command obligations renders regulatory obligations found in plain text.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "obligations",
		Short:        "Render regulatory obligations from plain text",
		Long:         "obligations classifies regulatory text into rules and prints each rule as an action statement, core obligations, action list and summary.",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd())
	return root
}

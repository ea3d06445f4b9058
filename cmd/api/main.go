// Sleep Coach API
//
// Turns one night of manually entered sleep phases into a German LLM sleep report.
//
//	@title			Sleep Coach API
//	@version		1.0
//	@description	Sanitizes and validates sleep-phase measurements, asks an LLM for a scored report and returns it as JSON.
//
//	@BasePath	/
//
//	@tag.name			analysis
//	@tag.description	LLM sleep reports
//
//	@tag.name			health
//	@tag.description	Liveness
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "sleep-coach"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sleep-coach",
		Short: "Sleep Coach API",
		Long: `Sleep Coach turns one night of sleep-phase measurements into a German
sleep report written by an LLM.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		newServeCmd(),
		newPromptCmd(),
		newLangfuseCheckCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

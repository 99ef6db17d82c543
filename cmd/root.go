package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "odatasync",
	Short: "Synchronize OData service bindings across UI5 project artifacts",
	Long: `odatasync keeps webapp/manifest.json, the ui5*.yaml middleware configs,
and the localService metadata copies of a UI5 project consistent when an
OData service is added or removed.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

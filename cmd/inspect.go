package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
)

var inspectBase string

func init() {
	inspectCmd.Flags().StringVarP(&inspectBase, "base", "b", ".", "Project base path")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [jsonpath]",
	Short: "Query the project manifest with a JSONPath expression",
	Long: `Evaluates a JSONPath expression against webapp/manifest.json, e.g.

  odatasync inspect '$["sap.app"].dataSources'
  odatasync inspect '$["sap.ui5"].models'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := jp.ParseString(args[0])
		if err != nil {
			return fmt.Errorf("invalid jsonpath '%s': %w", args[0], err)
		}

		p := filepath.Join(inspectBase, "webapp", "manifest.json")
		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		root, err := oj.Parse(content)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		for _, result := range x.Get(root) {
			fmt.Println(oj.JSON(result, 2))
		}
		return nil
	},
}

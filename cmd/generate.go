package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/sync"
)

var (
	basePath     string
	configFile   string
	metadataFile string
	descriptor   api.ServiceDescriptor
	dryRun       bool
)

func init() {
	for _, c := range []*cobra.Command{generateCmd, removeCmd} {
		c.Flags().StringVarP(&basePath, "base", "b", ".", "Project base path")
		c.Flags().StringVarP(&configFile, "config", "c", "", "Service descriptor file (yaml or json)")
		c.Flags().StringVar(&descriptor.Name, "name", "", "Service name (defaults to mainService)")
		c.Flags().StringVar(&descriptor.URL, "url", "", "Backend system url")
		c.Flags().StringVar(&descriptor.Path, "path", "", "Service path on the backend")
		c.Flags().StringVar(&descriptor.Client, "client", "", "Backend client number")
		c.Flags().StringVar(&descriptor.Version, "version", "2", "OData version (2 or 4)")
		c.Flags().StringVar(&descriptor.Model, "model", "", "sap.ui5 model name")
		c.Flags().StringVar(&descriptor.Destination, "destination", "", "BTP destination name")
		c.Flags().StringVar((*string)(&descriptor.Type), "type", "", "Service type (edmx or cds)")
		c.Flags().BoolVar(&dryRun, "dry-run", false, "Show staged changes without writing them")
	}
	generateCmd.Flags().StringVar(&metadataFile, "metadata", "", "File holding the service metadata XML")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(removeCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Add or update an OData service binding in the project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, base, err := loadDescriptor(cmd)
		if err != nil {
			return err
		}
		if metadataFile != "" {
			content, err := os.ReadFile(metadataFile)
			if err != nil {
				return fmt.Errorf("read metadata: %w", err)
			}
			desc.Metadata = string(content)
		}

		ed, err := sync.Generate(base, desc, nil)
		if err != nil {
			return err
		}
		return flush(ed)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove an OData service binding from the project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, base, err := loadDescriptor(cmd)
		if err != nil {
			return err
		}
		ed, err := sync.Remove(base, desc, nil)
		if err != nil {
			return err
		}
		return flush(ed)
	},
}

// loadDescriptor merges the config file (when given) with the direct flags;
// flags win for fields set on both.
func loadDescriptor(cmd *cobra.Command) (*api.ServiceDescriptor, string, error) {
	desc := descriptor
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("read descriptor config: %w", err)
		}
		var fromFile api.ServiceDescriptor
		if err := v.Unmarshal(&fromFile); err != nil {
			return nil, "", fmt.Errorf("parse descriptor config: %w", err)
		}
		mergeDescriptor(&fromFile, &desc, cmd.Flags().Changed("version"))
		desc = fromFile
	}

	base, err := filepath.Abs(basePath)
	if err != nil {
		return nil, "", fmt.Errorf("resolve base path: %w", err)
	}
	return &desc, filepath.ToSlash(base), nil
}

// mergeDescriptor overlays non-empty flag fields onto the file descriptor.
// Version carries a non-empty flag default, so its overlay is keyed on the
// flag having been set explicitly rather than on emptiness.
func mergeDescriptor(dst, flags *api.ServiceDescriptor, versionSet bool) {
	if flags.Name != "" {
		dst.Name = flags.Name
	}
	if flags.URL != "" {
		dst.URL = flags.URL
	}
	if flags.Path != "" {
		dst.Path = flags.Path
	}
	if flags.Client != "" {
		dst.Client = flags.Client
	}
	if versionSet || dst.Version == "" {
		dst.Version = flags.Version
	}
	if flags.Model != "" {
		dst.Model = flags.Model
	}
	if flags.Destination != "" {
		dst.Destination = flags.Destination
	}
	if flags.Type != "" {
		dst.Type = flags.Type
	}
}

// flush reports the staged changes and commits them unless --dry-run.
func flush(ed *editor.Editor) error {
	for _, f := range ed.StagedFiles() {
		fmt.Printf("write %s\n", f)
	}
	for _, f := range ed.DeletedFiles() {
		fmt.Printf("delete %s\n", f)
	}
	if dryRun {
		fmt.Println("Dry run, nothing written.")
		return nil
	}
	return ed.Commit()
}

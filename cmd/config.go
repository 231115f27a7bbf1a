package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/schema"
)

// NewConfigCmd groups configuration inspection commands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSchemaCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Long: `Shows the configuration after file loading, environment expansion, and
defaulting. Useful for debugging configuration issues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			source := opts.ConfigFile
			if source == "" {
				if found, ferr := config.FindConfigFile(); ferr == nil {
					source = found
				}
			}
			if source != "" {
				fmt.Printf("# Source: %s\n", source)
			} else {
				fmt.Println("# Source: built-in defaults")
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for ttydeck.yml",
		Long: `Prints the embedded JSON schema that configuration files are validated
against. Point your editor's YAML language server at it for completion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := os.Stdout.Write(schema.Embedded())
			return err
		},
	}
}

package cmd

import (
	"fmt"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCmd prints the effective configuration after every layer is applied.
func newConfigCmd() *cobra.Command {
	var output string

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}

			var out []byte
			switch output {
			case "yaml":
				out, err = yaml.Marshal(cfg)
			case "json":
				out, err = json.MarshalIndent(cfg, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unknown output format %q, want yaml or json", output)
			}
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	configCmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	return configCmd
}

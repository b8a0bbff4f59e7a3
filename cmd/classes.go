package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/brain-tumor-detection/tumorscan/internal/models"
	"github.com/brain-tumor-detection/tumorscan/internal/render"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newClassesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the tumor classes the classifier can report",
		Example: `  tumorscan classes
  tumorscan classes --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			switch format {
			case "text":
				fmt.Fprintln(out, render.Catalog())
				return nil
			case "yaml":
				encoder := yaml.NewEncoder(out)
				encoder.SetIndent(2)
				if err := encoder.Encode(models.Catalog()); err != nil {
					return err
				}
				return encoder.Close()
			case "json":
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(models.Catalog())
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, yaml, json)")

	return cmd
}

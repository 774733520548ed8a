package cli

import (
	"fmt"

	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the crop catalog as YAML",
		Long:  "Print the crop catalog in the same YAML layout accepted by --catalog and CROPWATCH_CATALOG_PATH.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.LoadFile(opts.catalogPath)
			if err != nil {
				return err
			}

			file := catalog.File{
				Crops:   cat.Crops(),
				Regions: cat.Regions(),
				Markets: cat.Markets(),
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(file); err != nil {
				return fmt.Errorf("failed to encode catalog: %w", err)
			}
			return enc.Close()
		},
	}
}

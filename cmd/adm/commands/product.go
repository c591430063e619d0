package commands

import (
	"fmt"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	"feedbackapp/internal/services"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/views"

	"github.com/spf13/cobra"
)

// ProductCommands returns the catalog commands
func ProductCommands(productService serviceinterfaces.ProductServiceInterface, logger *observability.Logger) *cobra.Command {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Product catalog commands",
		Long: `Product catalog commands for the feedback service.

Available commands:
  seed     - Insert the sample catalog into an empty database
  list     - List the catalog`,
	}

	productCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Seed the sample products",
		Long:  `Insert the sample products. Nothing is inserted when the catalog already has entries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			n, err := productService.SeedProducts(ctx, services.DefaultProducts())
			if err != nil {
				logger.Error(ctx, "Failed to seed products", err)
				return contextutils.WrapError(err, "failed to seed products")
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog already has products, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", n)
			return nil
		},
	})

	productCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			products, err := productService.ListProducts(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to list products", err)
				return contextutils.WrapError(err, "failed to list products")
			}

			summaries := make([]models.ProductSummary, 0, len(products))
			for i := range products {
				summaries = append(summaries, products[i].Summary())
			}
			return views.Products(cmd.OutOrStdout(), summaries)
		},
	})

	return productCmd
}

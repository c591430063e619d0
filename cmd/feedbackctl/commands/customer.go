package commands

import (
	"context"
	"fmt"
	"strings"

	"feedbackapp/internal/models"
	"feedbackapp/internal/views"

	"github.com/spf13/cobra"
)

func productsCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the products feedback can be given for",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return views.Products(cmd.OutOrStdout(), api.Products(cmd.Context()))
		},
	}
}

func submitCmd(api API) *cobra.Command {
	var (
		product string
		rating  int
		req     models.SubmissionRequest
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Rate a product and leave feedback",
		Long: `Rate a product and leave feedback.

--product takes a product id or name. Leave it out for general feedback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			req.ProductID = resolveProduct(ctx, api, product)
			req.Rating = models.NewRatingInput(rating)

			fb, err := api.Submit(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feedback submitted successfully (ID: %s, status: %s)\n", fb.ID, fb.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "Product id or name")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&req.FeedbackType, "type", "", "general, complaint, suggestion, compliment or bug-report (default general)")
	cmd.Flags().StringVar(&req.Message, "message", "", "Feedback text")
	cmd.Flags().StringVar(&req.Suggestions, "suggestions", "", "Optional improvement suggestions")

	return cmd
}

// resolveProduct maps a product name to its id using the catalog. Input that matches no
// catalog entry, including when the catalog could not be loaded, is passed through as an id.
func resolveProduct(ctx context.Context, api API, product string) string {
	product = strings.TrimSpace(product)
	if product == "" {
		return ""
	}
	for _, p := range api.Products(ctx) {
		if p.ID == product || strings.EqualFold(p.Name, product) {
			return p.ID
		}
	}
	return product
}

func historyCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your own feedback, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := api.History(cmd.Context())
			if err != nil {
				return err
			}
			return views.History(cmd.OutOrStdout(), list)
		},
	}
}

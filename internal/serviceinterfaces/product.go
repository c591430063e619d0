package serviceinterfaces

import (
	"context"

	"feedbackapp/internal/models"
)

// ProductCatalog is the read-only view of products used while collecting feedback.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
}

// ProductServiceInterface adds the administrative seed operation to the catalog.
type ProductServiceInterface interface {
	ProductCatalog
	// SeedProducts inserts products only when the catalog is empty and returns how many were added.
	SeedProducts(ctx context.Context, products []models.Product) (int, error)
}

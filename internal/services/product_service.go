package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ProductService implements the read-only product catalog and its seed operation.
type ProductService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewProductService creates a new ProductService instance.
func NewProductService(db *sql.DB, logger *observability.Logger) *ProductService {
	if db == nil {
		panic("NewProductService: db is nil")
	}
	if logger == nil {
		panic("NewProductService: logger is nil")
	}
	return &ProductService{db: db, logger: logger}
}

// DefaultProducts is the sample catalog installed by `adm product seed`.
func DefaultProducts() []models.Product {
	return []models.Product{
		{Name: "Smartphone X1", Description: "Latest flagship smartphone with advanced camera system"},
		{Name: "Laptop Pro", Description: "High-performance laptop for professionals"},
		{Name: "Wireless Headphones", Description: "Noise-cancelling wireless headphones with premium sound"},
		{Name: "Running Shoes", Description: "Lightweight running shoes designed for comfort and speed"},
		{Name: "Coffee Maker", Description: "Programmable coffee maker with built-in grinder"},
	}
}

// ListProducts returns the catalog ordered by name.
func (s *ProductService) ListProducts(ctx context.Context) (result0 []models.Product, err error) {
	ctx, span := observability.TraceProductFunction(ctx, "list_products")
	defer observability.FinishSpan(span, &err)

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM products ORDER BY name`)
	if err != nil {
		return nil, contextutils.NewStorageError("failed to list products", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, contextutils.NewStorageError("failed to scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.NewStorageError("failed to list products", err)
	}
	span.SetAttributes(observability.AttributeResultCount(len(products)))
	return products, nil
}

// GetProductByID looks up one product. Ids that are not UUIDs are reported as not found.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (result0 *models.Product, err error) {
	ctx, span := observability.TraceProductFunction(ctx, "get_product_by_id", observability.AttributeProductID(id))
	defer observability.FinishSpan(span, &err)

	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, contextutils.NewNotFoundError("Product not found")
	}

	var p models.Product
	err = s.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contextutils.NewNotFoundError("Product not found")
		}
		return nil, contextutils.NewStorageError("failed to get product", err)
	}
	return &p, nil
}

// SeedProducts inserts products when the catalog is empty. A non-empty catalog is left
// untouched and 0 is returned.
func (s *ProductService) SeedProducts(ctx context.Context, products []models.Product) (result0 int, err error) {
	ctx, span := observability.TraceProductFunction(ctx, "seed_products", attribute.Int("products.requested", len(products)))
	defer observability.FinishSpan(span, &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, contextutils.NewStorageError("failed to begin seed transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&existing); err != nil {
		return 0, contextutils.NewStorageError("failed to count products", err)
	}
	if existing > 0 {
		s.logger.Info(ctx, "Products already exist, skipping seed", map[string]interface{}{"existing": existing})
		err = tx.Rollback()
		if err != nil {
			return 0, contextutils.NewStorageError("failed to close seed transaction", err)
		}
		return 0, nil
	}

	now := time.Now().UTC()
	for _, p := range products {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO products (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
			id, p.Name, p.Description, now); err != nil {
			return 0, contextutils.NewStorageError("failed to insert product "+p.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, contextutils.NewStorageError("failed to commit product seed", err)
	}
	s.logger.Info(ctx, "Seeded products", map[string]interface{}{"count": len(products)})
	return len(products), nil
}

package repositories

import (
	"database/sql"
	"time"

	"factory_crm_backend/internal/models"
)

// ProductRepository defines the persistence operations for products.
type ProductRepository interface {
	Create(executor SQLExecutor, product *models.Product) (int64, error)
	GetByID(id int64) (*models.Product, error)
	List(includeInactive bool, page, pageSize int) ([]models.Product, int, error)
	Update(executor SQLExecutor, product *models.Product) error
	SoftDelete(executor SQLExecutor, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products (name, description, selling_price, components, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, TRUE, $5, $5)
	          RETURNING id`
	now := time.Now()
	if err := executor.QueryRow(query, product.Name, product.Description, product.SellingPrice, product.Components, now).Scan(&product.ID); err != nil {
		return 0, wrapDBError("creating product", err)
	}
	product.IsActive = true
	product.CreatedAt, product.UpdatedAt = now, now
	return product.ID, nil
}

func (r *productRepository) GetByID(id int64) (*models.Product, error) {
	var p models.Product
	query := `SELECT id, name, description, selling_price, components, is_active, created_at, updated_at
	          FROM products WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.SellingPrice, &p.Components, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, wrapDBError("getting product", err)
	}
	return &p, nil
}

func (r *productRepository) List(includeInactive bool, page, pageSize int) ([]models.Product, int, error) {
	limit, offset := pageOffset(page, pageSize)
	query := `SELECT id, name, description, selling_price, components, is_active, created_at, updated_at,
	                 COUNT(*) OVER() AS total_count
	          FROM products
	          WHERE ($1::boolean OR is_active)
	          ORDER BY name
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(query, includeInactive, limit, offset)
	if err != nil {
		return nil, 0, wrapDBError("listing products", err)
	}
	defer rows.Close()

	products := []models.Product{}
	total := 0
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.SellingPrice, &p.Components, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, wrapDBError("scanning product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating products", err)
	}
	return products, total, nil
}

func (r *productRepository) Update(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, selling_price = $3, components = $4, updated_at = $5
	          WHERE id = $6`
	product.UpdatedAt = time.Now()
	result, err := executor.Exec(query, product.Name, product.Description, product.SellingPrice, product.Components, product.UpdatedAt, product.ID)
	if err != nil {
		return wrapDBError("updating product", err)
	}
	return requireRowsAffected("updating product", result)
}

func (r *productRepository) SoftDelete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return wrapDBError("deleting product", err)
	}
	return requireRowsAffected("deleting product", result)
}

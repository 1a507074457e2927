package repositories

import (
	"database/sql"
	"time"

	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
)

// MaterialRepository defines the persistence operations for materials.
type MaterialRepository interface {
	Create(executor SQLExecutor, material *models.Material) (int64, error)
	GetByID(id int64) (*models.Material, error)
	// GetByIDForUpdate locks the material row until the surrounding transaction ends.
	GetByIDForUpdate(executor SQLExecutor, id int64) (*models.Material, error)
	List(includeInactive bool, page, pageSize int) ([]models.Material, int, error)
	ListLowStock() ([]models.Material, error)
	Update(executor SQLExecutor, material *models.Material) error
	SetStock(executor SQLExecutor, id int64, stock decimal.Decimal) error
	SoftDelete(executor SQLExecutor, id int64) error
}

type materialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new instance of MaterialRepository.
func NewMaterialRepository(db *sql.DB) MaterialRepository {
	return &materialRepository{db: db}
}

const materialColumns = `id, name, unit, current_stock, min_stock_level, selling_price,
	is_order_type, is_active, created_at, updated_at`

func scanMaterial(row scanner) (*models.Material, error) {
	var m models.Material
	err := row.Scan(
		&m.ID, &m.Name, &m.Unit, &m.CurrentStock, &m.MinStockLevel, &m.SellingPrice,
		&m.IsOrderType, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *materialRepository) Create(executor SQLExecutor, material *models.Material) (int64, error) {
	query := `INSERT INTO materials (name, unit, current_stock, min_stock_level, selling_price, is_order_type, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		material.Name, material.Unit, material.CurrentStock, material.MinStockLevel,
		material.SellingPrice, material.IsOrderType, now,
	).Scan(&material.ID)
	if err != nil {
		return 0, wrapDBError("creating material", err)
	}
	material.IsActive = true
	material.CreatedAt, material.UpdatedAt = now, now
	return material.ID, nil
}

func (r *materialRepository) GetByID(id int64) (*models.Material, error) {
	m, err := scanMaterial(r.db.QueryRow(`SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBError("getting material", err)
	}
	return m, nil
}

func (r *materialRepository) GetByIDForUpdate(executor SQLExecutor, id int64) (*models.Material, error) {
	m, err := scanMaterial(executor.QueryRow(`SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBError("locking material", err)
	}
	return m, nil
}

func (r *materialRepository) List(includeInactive bool, page, pageSize int) ([]models.Material, int, error) {
	limit, offset := pageOffset(page, pageSize)
	query := `SELECT ` + materialColumns + `, COUNT(*) OVER() AS total_count
	          FROM materials
	          WHERE ($1::boolean OR is_active)
	          ORDER BY name
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(query, includeInactive, limit, offset)
	if err != nil {
		return nil, 0, wrapDBError("listing materials", err)
	}
	defer rows.Close()

	materials := []models.Material{}
	total := 0
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Unit, &m.CurrentStock, &m.MinStockLevel, &m.SellingPrice,
			&m.IsOrderType, &m.IsActive, &m.CreatedAt, &m.UpdatedAt, &total,
		); err != nil {
			return nil, 0, wrapDBError("scanning material", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating materials", err)
	}
	return materials, total, nil
}

func (r *materialRepository) ListLowStock() ([]models.Material, error) {
	query := `SELECT ` + materialColumns + `
	          FROM materials
	          WHERE is_active AND min_stock_level > 0 AND current_stock <= min_stock_level
	          ORDER BY (current_stock / NULLIF(min_stock_level, 0)), name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, wrapDBError("listing low stock materials", err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, wrapDBError("scanning low stock material", err)
		}
		materials = append(materials, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating low stock materials", err)
	}
	return materials, nil
}

func (r *materialRepository) Update(executor SQLExecutor, material *models.Material) error {
	query := `UPDATE materials
	          SET name = $1, unit = $2, min_stock_level = $3, selling_price = $4, is_order_type = $5, updated_at = $6
	          WHERE id = $7`
	material.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		material.Name, material.Unit, material.MinStockLevel, material.SellingPrice,
		material.IsOrderType, material.UpdatedAt, material.ID,
	)
	if err != nil {
		return wrapDBError("updating material", err)
	}
	return requireRowsAffected("updating material", result)
}

func (r *materialRepository) SetStock(executor SQLExecutor, id int64, stock decimal.Decimal) error {
	result, err := executor.Exec(`UPDATE materials SET current_stock = $1, updated_at = $2 WHERE id = $3`, stock, time.Now(), id)
	if err != nil {
		return wrapDBError("setting material stock", err)
	}
	return requireRowsAffected("setting material stock", result)
}

func (r *materialRepository) SoftDelete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE materials SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return wrapDBError("deleting material", err)
	}
	return requireRowsAffected("deleting material", result)
}

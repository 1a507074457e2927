package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"factory_crm_backend/internal/models"
)

// InventoryRecordRepository persists the append-only stock ledger.
type InventoryRecordRepository interface {
	Create(executor SQLExecutor, record *models.InventoryRecord) (int64, error)
	List(filters models.InventoryRecordFilters) ([]models.InventoryRecord, int, error)
}

type inventoryRecordRepository struct {
	db *sql.DB
}

// NewInventoryRecordRepository creates a new instance of InventoryRecordRepository.
func NewInventoryRecordRepository(db *sql.DB) InventoryRecordRepository {
	return &inventoryRecordRepository{db: db}
}

func (r *inventoryRecordRepository) Create(executor SQLExecutor, record *models.InventoryRecord) (int64, error) {
	query := `INSERT INTO inventory_records
	          (material_id, type, previous_stock, system_stock, actual_stock, difference, reason, notes,
	           order_id, reference, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	err := executor.QueryRow(query,
		record.MaterialID, record.Type, record.PreviousStock, record.SystemStock, record.ActualStock,
		record.Difference, record.Reason, record.Notes, record.OrderID, record.Reference,
		record.CreatedBy, record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return 0, wrapDBError("creating inventory record", err)
	}
	return record.ID, nil
}

func (r *inventoryRecordRepository) List(filters models.InventoryRecordFilters) ([]models.InventoryRecord, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    ir.id, ir.material_id, ir.type, ir.previous_stock, ir.system_stock, ir.actual_stock, ir.difference,
	    ir.reason, ir.notes, ir.order_id, ir.reference, ir.created_by, ir.created_at,
	    m.name AS material_name,
	    COUNT(*) OVER() AS total_count
	  FROM inventory_records ir
	  JOIN materials m ON ir.material_id = m.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.MaterialID != nil {
		conditions = append(conditions, fmt.Sprintf("ir.material_id = $%d", argCount))
		args = append(args, *filters.MaterialID)
		argCount++
	}
	if filters.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("ir.order_id = $%d", argCount))
		args = append(args, *filters.OrderID)
		argCount++
	}
	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("ir.type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	limit, offset := pageOffset(filters.Page, filters.PageSize)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY ir.created_at DESC, ir.id DESC LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting inventory records", err)
	}
	defer rows.Close()

	records := []models.InventoryRecord{}
	total := 0
	for rows.Next() {
		var rec models.InventoryRecord
		if err := rows.Scan(
			&rec.ID, &rec.MaterialID, &rec.Type, &rec.PreviousStock, &rec.SystemStock, &rec.ActualStock,
			&rec.Difference, &rec.Reason, &rec.Notes, &rec.OrderID, &rec.Reference, &rec.CreatedBy,
			&rec.CreatedAt, &rec.MaterialName, &total,
		); err != nil {
			return nil, 0, wrapDBError("scanning inventory record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating inventory records", err)
	}
	return records, total, nil
}

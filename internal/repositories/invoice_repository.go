package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"factory_crm_backend/internal/models"
)

// InvoiceRepository defines the persistence operations for invoices.
type InvoiceRepository interface {
	Create(executor SQLExecutor, invoice *models.Invoice) (int64, error)
	GetByID(executor SQLExecutor, invoiceID int64) (*models.Invoice, error)
	List(filters models.InvoiceFilters) ([]models.Invoice, int, error)
	Update(executor SQLExecutor, invoice *models.Invoice) error
	// UpdateTotals writes only the derived subtotal/total/totalRemaining columns.
	UpdateTotals(executor SQLExecutor, invoice *models.Invoice) error
	Delete(executor SQLExecutor, invoiceID int64) error
}

type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, client_id, client_name, client_phone, client_factory_name, tax, shipping, discount,
	subtotal, total, total_remaining, notes, created_by, created_at, updated_at`

func invoiceScanTargets(inv *models.Invoice) []interface{} {
	return []interface{}{
		&inv.ID, &inv.ClientID, &inv.ClientSnapshot.Name, &inv.ClientSnapshot.Phone, &inv.ClientSnapshot.FactoryName,
		&inv.Tax, &inv.Shipping, &inv.Discount, &inv.Subtotal, &inv.Total, &inv.TotalRemaining,
		&inv.Notes, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	}
}

func (r *invoiceRepository) Create(executor SQLExecutor, invoice *models.Invoice) (int64, error) {
	query := `INSERT INTO invoices
	            (client_id, client_name, client_phone, client_factory_name, tax, shipping, discount,
	             subtotal, total, total_remaining, notes, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		invoice.ClientID, invoice.ClientSnapshot.Name, invoice.ClientSnapshot.Phone, invoice.ClientSnapshot.FactoryName,
		invoice.Tax, invoice.Shipping, invoice.Discount, invoice.Subtotal, invoice.Total, invoice.TotalRemaining,
		invoice.Notes, invoice.CreatedBy, now,
	).Scan(&invoice.ID)
	if err != nil {
		return 0, wrapDBError("creating invoice", err)
	}
	invoice.CreatedAt, invoice.UpdatedAt = now, now
	return invoice.ID, nil
}

func (r *invoiceRepository) GetByID(executor SQLExecutor, invoiceID int64) (*models.Invoice, error) {
	if executor == nil {
		executor = r.db
	}
	var inv models.Invoice
	if err := executor.QueryRow(`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, invoiceID).Scan(invoiceScanTargets(&inv)...); err != nil {
		return nil, wrapDBError(fmt.Sprintf("getting invoice %d", invoiceID), err)
	}
	return &inv, nil
}

func (r *invoiceRepository) List(filters models.InvoiceFilters) ([]models.Invoice, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + invoiceColumns + `, COUNT(*) OVER() AS total_count FROM invoices`)

	var args []interface{}
	argCounter := 1
	if filters.ClientID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE client_id = $%d", argCounter))
		args = append(args, *filters.ClientID)
		argCounter++
	}
	limit, offset := pageOffset(filters.Page, filters.PageSize)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argCounter, argCounter+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("querying invoices", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	total := 0
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(append(invoiceScanTargets(&inv), &total)...); err != nil {
			return nil, 0, wrapDBError("scanning invoice", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating invoices", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepository) Update(executor SQLExecutor, invoice *models.Invoice) error {
	query := `UPDATE invoices SET tax = $1, shipping = $2, discount = $3, notes = $4, updated_at = $5 WHERE id = $6`
	invoice.UpdatedAt = time.Now()
	result, err := executor.Exec(query, invoice.Tax, invoice.Shipping, invoice.Discount, invoice.Notes, invoice.UpdatedAt, invoice.ID)
	if err != nil {
		return wrapDBError(fmt.Sprintf("updating invoice %d", invoice.ID), err)
	}
	return requireRowsAffected("updating invoice", result)
}

func (r *invoiceRepository) UpdateTotals(executor SQLExecutor, invoice *models.Invoice) error {
	query := `UPDATE invoices SET subtotal = $1, total = $2, total_remaining = $3, updated_at = $4 WHERE id = $5`
	invoice.UpdatedAt = time.Now()
	result, err := executor.Exec(query, invoice.Subtotal, invoice.Total, invoice.TotalRemaining, invoice.UpdatedAt, invoice.ID)
	if err != nil {
		return wrapDBError(fmt.Sprintf("updating totals of invoice %d", invoice.ID), err)
	}
	return requireRowsAffected("updating invoice totals", result)
}

func (r *invoiceRepository) Delete(executor SQLExecutor, invoiceID int64) error {
	if _, err := executor.Exec(`DELETE FROM orders WHERE invoice_id = $1`, invoiceID); err != nil {
		return wrapDBError(fmt.Sprintf("deleting orders of invoice %d", invoiceID), err)
	}
	result, err := executor.Exec(`DELETE FROM invoices WHERE id = $1`, invoiceID)
	if err != nil {
		return wrapDBError(fmt.Sprintf("deleting invoice %d", invoiceID), err)
	}
	return requireRowsAffected("deleting invoice", result)
}

package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	Create(executor SQLExecutor, order *models.Order) (int64, error)
	GetByID(orderID int64) (*models.Order, error)
	// GetByIDForUpdate locks the order row until the surrounding transaction ends.
	GetByIDForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error)
	List(filters models.OrderFilters) ([]models.Order, int, error)
	ListByInvoice(executor SQLExecutor, invoiceID int64) ([]models.Order, error)
	Update(executor SQLExecutor, order *models.Order) error
	// MarkStockDeducted flips stock_deducted from false to true and reports
	// whether this call performed the flip.
	MarkStockDeducted(executor SQLExecutor, orderID int64) (bool, error)
	Delete(executor SQLExecutor, orderID int64) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `o.id, o.client_id, o.client_name, o.client_phone, o.client_factory_name,
	o.invoice_id, o.material_id, o.product_id, o.type, o.repeats, o.sheet_width, o.sheet_height,
	o.order_size, o.total_price, o.deposit, o.remaining_amount, o.order_state, o.design_link,
	o.notes, o.stock_deducted, o.created_by, o.created_at, o.updated_at`

const orderRefColumns = `m.name, m.unit, m.selling_price, p.name, p.selling_price`

const orderRefJoins = `LEFT JOIN materials m ON o.material_id = m.id
	LEFT JOIN products p ON o.product_id = p.id`

func orderScanTargets(o *models.Order) []interface{} {
	return []interface{}{
		&o.ID, &o.ClientID, &o.ClientSnapshot.Name, &o.ClientSnapshot.Phone, &o.ClientSnapshot.FactoryName,
		&o.InvoiceID, &o.MaterialID, &o.ProductID, &o.Type, &o.Repeats, &o.SheetWidth, &o.SheetHeight,
		&o.OrderSize, &o.TotalPrice, &o.Deposit, &o.RemainingAmount, &o.OrderState, &o.DesignLink,
		&o.Notes, &o.StockDeducted, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	}
}

type orderRefs struct {
	materialName, materialUnit sql.NullString
	materialPrice              decimal.NullDecimal
	productName                sql.NullString
	productPrice               decimal.NullDecimal
}

func (refs *orderRefs) targets() []interface{} {
	return []interface{}{&refs.materialName, &refs.materialUnit, &refs.materialPrice, &refs.productName, &refs.productPrice}
}

func (refs *orderRefs) attach(o *models.Order) {
	if o.MaterialID != nil && refs.materialName.Valid {
		o.MaterialRef = &models.MaterialRef{
			ID:           *o.MaterialID,
			Name:         refs.materialName.String,
			Unit:         refs.materialUnit.String,
			SellingPrice: refs.materialPrice,
		}
	}
	if o.ProductID != nil && refs.productName.Valid {
		o.ProductRef = &models.ProductRef{
			ID:           *o.ProductID,
			Name:         refs.productName.String,
			SellingPrice: refs.productPrice.Decimal,
		}
	}
}

func (r *orderRepository) Create(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (client_id, client_name, client_phone, client_factory_name, invoice_id, material_id, product_id,
	             type, repeats, sheet_width, sheet_height, order_size, total_price, deposit, remaining_amount,
	             order_state, design_link, notes, stock_deducted, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, FALSE, $19, $20, $20)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		order.ClientID, order.ClientSnapshot.Name, order.ClientSnapshot.Phone, order.ClientSnapshot.FactoryName,
		order.InvoiceID, order.MaterialID, order.ProductID, order.Type, order.Repeats, order.SheetWidth,
		order.SheetHeight, order.OrderSize, order.TotalPrice, order.Deposit, order.RemainingAmount,
		order.OrderState, order.DesignLink, order.Notes, order.CreatedBy, now,
	).Scan(&order.ID)
	if err != nil {
		return 0, wrapDBError("creating order", err)
	}
	order.CreatedAt, order.UpdatedAt = now, now
	return order.ID, nil
}

func (r *orderRepository) GetByID(orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + `, ` + orderRefColumns + `
	          FROM orders o ` + orderRefJoins + `
	          WHERE o.id = $1`
	var o models.Order
	var refs orderRefs
	if err := r.db.QueryRow(query, orderID).Scan(append(orderScanTargets(&o), refs.targets()...)...); err != nil {
		return nil, wrapDBError(fmt.Sprintf("getting order %d", orderID), err)
	}
	refs.attach(&o)
	return &o, nil
}

func (r *orderRepository) GetByIDForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1 FOR UPDATE`
	var o models.Order
	if err := executor.QueryRow(query, orderID).Scan(orderScanTargets(&o)...); err != nil {
		return nil, wrapDBError(fmt.Sprintf("locking order %d", orderID), err)
	}
	return &o, nil
}

func (r *orderRepository) List(filters models.OrderFilters) ([]models.Order, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, ` + orderRefColumns + `, COUNT(*) OVER() AS total_count
	                          FROM orders o ` + orderRefJoins)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.State != nil && *filters.State != "" {
		conditions = append(conditions, fmt.Sprintf("o.order_state = $%d", argCounter))
		args = append(args, *filters.State)
		argCounter++
	}
	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("o.client_id = $%d", argCounter))
		args = append(args, *filters.ClientID)
		argCounter++
	}
	if filters.InvoiceID != nil {
		conditions = append(conditions, fmt.Sprintf("o.invoice_id = $%d", argCounter))
		args = append(args, *filters.InvoiceID)
		argCounter++
	}
	if filters.MaterialID != nil {
		conditions = append(conditions, fmt.Sprintf("o.material_id = $%d", argCounter))
		args = append(args, *filters.MaterialID)
		argCounter++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	limit, offset := pageOffset(filters.Page, filters.PageSize)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", argCounter, argCounter+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("querying orders", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	total := 0
	for rows.Next() {
		var o models.Order
		var refs orderRefs
		targets := append(orderScanTargets(&o), refs.targets()...)
		if err := rows.Scan(append(targets, &total)...); err != nil {
			return nil, 0, wrapDBError("scanning order", err)
		}
		refs.attach(&o)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating order rows", err)
	}
	return orders, total, nil
}

func (r *orderRepository) ListByInvoice(executor SQLExecutor, invoiceID int64) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + `, ` + orderRefColumns + `
	          FROM orders o ` + orderRefJoins + `
	          WHERE o.invoice_id = $1
	          ORDER BY o.created_at, o.id`
	rows, err := executor.Query(query, invoiceID)
	if err != nil {
		return nil, wrapDBError(fmt.Sprintf("querying orders of invoice %d", invoiceID), err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var refs orderRefs
		if err := rows.Scan(append(orderScanTargets(&o), refs.targets()...)...); err != nil {
			return nil, wrapDBError("scanning invoice order", err)
		}
		refs.attach(&o)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating invoice orders", err)
	}
	return orders, nil
}

func (r *orderRepository) Update(executor SQLExecutor, order *models.Order) error {
	query := `UPDATE orders
	          SET client_id = $1, client_name = $2, client_phone = $3, client_factory_name = $4, invoice_id = $5,
	              material_id = $6, product_id = $7, type = $8, repeats = $9, sheet_width = $10, sheet_height = $11,
	              order_size = $12, total_price = $13, deposit = $14, remaining_amount = $15, order_state = $16,
	              design_link = $17, notes = $18, updated_at = $19
	          WHERE id = $20`
	order.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		order.ClientID, order.ClientSnapshot.Name, order.ClientSnapshot.Phone, order.ClientSnapshot.FactoryName,
		order.InvoiceID, order.MaterialID, order.ProductID, order.Type, order.Repeats, order.SheetWidth,
		order.SheetHeight, order.OrderSize, order.TotalPrice, order.Deposit, order.RemainingAmount,
		order.OrderState, order.DesignLink, order.Notes, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return wrapDBError(fmt.Sprintf("updating order %d", order.ID), err)
	}
	return requireRowsAffected("updating order", result)
}

func (r *orderRepository) MarkStockDeducted(executor SQLExecutor, orderID int64) (bool, error) {
	result, err := executor.Exec(`UPDATE orders SET stock_deducted = TRUE WHERE id = $1 AND stock_deducted = FALSE`, orderID)
	if err != nil {
		return false, wrapDBError(fmt.Sprintf("marking stock deducted for order %d", orderID), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: rows affected for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return n == 1, nil
}

func (r *orderRepository) Delete(executor SQLExecutor, orderID int64) error {
	result, err := executor.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return wrapDBError(fmt.Sprintf("deleting order %d", orderID), err)
	}
	return requireRowsAffected("deleting order", result)
}

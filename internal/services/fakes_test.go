package services

import (
	"sort"
	"sync"
	"time"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// fakeTx runs the function without a real transaction. Fakes ignore the executor.
type fakeTx struct{}

func (fakeTx) WithinTx(fn repositories.TxFunc) error { return fn(nil) }

type fakeOrderRepo struct {
	orders map[int64]models.Order
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo { return &fakeOrderRepo{orders: map[int64]models.Order{}} }

func (r *fakeOrderRepo) Create(_ repositories.SQLExecutor, o *models.Order) (int64, error) {
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt, o.UpdatedAt = time.Now(), time.Now()
	o.StockDeducted = false
	r.orders[o.ID] = *o
	return o.ID, nil
}

func (r *fakeOrderRepo) GetByID(id int64) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetByIDForUpdate(_ repositories.SQLExecutor, id int64) (*models.Order, error) {
	return r.GetByID(id)
}

func (r *fakeOrderRepo) List(f models.OrderFilters) ([]models.Order, int, error) {
	out := []models.Order{}
	for _, o := range r.sorted() {
		if f.State != nil && string(o.OrderState) != *f.State {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) ListByInvoice(_ repositories.SQLExecutor, invoiceID int64) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range r.sorted() {
		if o.InvoiceID != nil && *o.InvoiceID == invoiceID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Update(_ repositories.SQLExecutor, o *models.Order) error {
	stored, ok := r.orders[o.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	updated := *o
	updated.StockDeducted = stored.StockDeducted
	r.orders[o.ID] = updated
	return nil
}

func (r *fakeOrderRepo) MarkStockDeducted(_ repositories.SQLExecutor, id int64) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.StockDeducted {
		return false, nil
	}
	o.StockDeducted = true
	r.orders[id] = o
	return true, nil
}

func (r *fakeOrderRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) sorted() []models.Order {
	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeMaterialRepo struct {
	materials map[int64]models.Material
	nextID    int64
	stockSets int
}

func newFakeMaterialRepo() *fakeMaterialRepo {
	return &fakeMaterialRepo{materials: map[int64]models.Material{}}
}

func (r *fakeMaterialRepo) add(m models.Material) *models.Material {
	r.nextID++
	m.ID = r.nextID
	m.IsActive = true
	r.materials[m.ID] = m
	return &m
}

func (r *fakeMaterialRepo) Create(_ repositories.SQLExecutor, m *models.Material) (int64, error) {
	r.nextID++
	m.ID = r.nextID
	m.IsActive = true
	r.materials[m.ID] = *m
	return m.ID, nil
}

func (r *fakeMaterialRepo) GetByID(id int64) (*models.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (r *fakeMaterialRepo) GetByIDForUpdate(_ repositories.SQLExecutor, id int64) (*models.Material, error) {
	return r.GetByID(id)
}

func (r *fakeMaterialRepo) List(bool, int, int) ([]models.Material, int, error) {
	out := []models.Material{}
	for _, m := range r.materials {
		out = append(out, m)
	}
	return out, len(out), nil
}

func (r *fakeMaterialRepo) ListLowStock() ([]models.Material, error) {
	out := []models.Material{}
	for _, m := range r.materials {
		if m.IsLowStock() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) Update(_ repositories.SQLExecutor, m *models.Material) error {
	stored, ok := r.materials[m.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	updated := *m
	updated.CurrentStock = stored.CurrentStock
	r.materials[m.ID] = updated
	return nil
}

func (r *fakeMaterialRepo) SetStock(_ repositories.SQLExecutor, id int64, stock decimal.Decimal) error {
	m, ok := r.materials[id]
	if !ok {
		return repositories.ErrNotFound
	}
	m.CurrentStock = stock
	r.materials[id] = m
	r.stockSets++
	return nil
}

func (r *fakeMaterialRepo) SoftDelete(_ repositories.SQLExecutor, id int64) error {
	m, ok := r.materials[id]
	if !ok {
		return repositories.ErrNotFound
	}
	m.IsActive = false
	r.materials[id] = m
	return nil
}

type fakeProductRepo struct {
	products map[int64]models.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo { return &fakeProductRepo{products: map[int64]models.Product{}} }

func (r *fakeProductRepo) add(p models.Product) *models.Product {
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	r.products[p.ID] = p
	return &p
}

func (r *fakeProductRepo) Create(_ repositories.SQLExecutor, p *models.Product) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	r.products[p.ID] = *p
	return p.ID, nil
}

func (r *fakeProductRepo) GetByID(id int64) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) List(bool, int, int) ([]models.Product, int, error) {
	out := []models.Product{}
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *fakeProductRepo) Update(_ repositories.SQLExecutor, p *models.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) SoftDelete(_ repositories.SQLExecutor, id int64) error {
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.IsActive = false
	r.products[id] = p
	return nil
}

type fakeClientRepo struct {
	clients map[int64]models.Client
	nextID  int64
}

func newFakeClientRepo() *fakeClientRepo { return &fakeClientRepo{clients: map[int64]models.Client{}} }

func (r *fakeClientRepo) add(name string) *models.Client {
	r.nextID++
	c := models.Client{ID: r.nextID, Name: name}
	r.clients[c.ID] = c
	return &c
}

func (r *fakeClientRepo) CreateClient(_ repositories.SQLExecutor, c *models.Client) (int64, error) {
	for _, existing := range r.clients {
		if c.Phone != nil && existing.Phone != nil && *existing.Phone == *c.Phone {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.clients[c.ID] = *c
	return c.ID, nil
}

func (r *fakeClientRepo) GetClientByID(id int64) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *fakeClientRepo) GetClients(int, int, *string) ([]models.Client, int, error) {
	out := []models.Client{}
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *fakeClientRepo) UpdateClient(_ repositories.SQLExecutor, c *models.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range r.clients {
		if id != c.ID && c.Phone != nil && existing.Phone != nil && *existing.Phone == *c.Phone {
			return repositories.ErrDuplicateKey
		}
	}
	r.clients[c.ID] = *c
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[int64]models.Invoice
	orders   *fakeOrderRepo
	nextID   int64
}

func newFakeInvoiceRepo(orders *fakeOrderRepo) *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[int64]models.Invoice{}, orders: orders}
}

func (r *fakeInvoiceRepo) Create(_ repositories.SQLExecutor, inv *models.Invoice) (int64, error) {
	r.nextID++
	inv.ID = r.nextID
	r.invoices[inv.ID] = *inv
	return inv.ID, nil
}

func (r *fakeInvoiceRepo) GetByID(_ repositories.SQLExecutor, id int64) (*models.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	inv.Orders = nil
	return &inv, nil
}

func (r *fakeInvoiceRepo) List(models.InvoiceFilters) ([]models.Invoice, int, error) {
	out := []models.Invoice{}
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (r *fakeInvoiceRepo) Update(_ repositories.SQLExecutor, inv *models.Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Tax, stored.Shipping, stored.Discount, stored.Notes = inv.Tax, inv.Shipping, inv.Discount, inv.Notes
	r.invoices[inv.ID] = stored
	return nil
}

func (r *fakeInvoiceRepo) UpdateTotals(_ repositories.SQLExecutor, inv *models.Invoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Subtotal, stored.Total, stored.TotalRemaining = inv.Subtotal, inv.Total, inv.TotalRemaining
	r.invoices[inv.ID] = stored
	return nil
}

func (r *fakeInvoiceRepo) Delete(_ repositories.SQLExecutor, id int64) error {
	if _, ok := r.invoices[id]; !ok {
		return repositories.ErrNotFound
	}
	for oid, o := range r.orders.orders {
		if o.InvoiceID != nil && *o.InvoiceID == id {
			delete(r.orders.orders, oid)
		}
	}
	delete(r.invoices, id)
	return nil
}

type fakeInventoryRepo struct {
	records []models.InventoryRecord
}

func (r *fakeInventoryRepo) Create(_ repositories.SQLExecutor, rec *models.InventoryRecord) (int64, error) {
	if rec.Type == models.InventoryUsage && rec.OrderID != nil {
		for _, existing := range r.records {
			if existing.Type == models.InventoryUsage && existing.OrderID != nil && *existing.OrderID == *rec.OrderID {
				return 0, repositories.ErrDuplicateKey
			}
		}
	}
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, *rec)
	return rec.ID, nil
}

func (r *fakeInventoryRepo) List(models.InventoryRecordFilters) ([]models.InventoryRecord, int, error) {
	return r.records, len(r.records), nil
}

func (r *fakeInventoryRepo) ofType(t models.InventoryRecordType) []models.InventoryRecord {
	var out []models.InventoryRecord
	for _, rec := range r.records {
		if rec.Type == t {
			out = append(out, rec)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []DomainEvent
}

func (p *recordingPublisher) Publish(e DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateStats() { c.calls++ }

// testEnv wires the order, invoice and material services over fakes.
type testEnv struct {
	orders    *fakeOrderRepo
	materials *fakeMaterialRepo
	products  *fakeProductRepo
	clients   *fakeClientRepo
	invoices  *fakeInvoiceRepo
	inventory *fakeInventoryRepo
	events    *recordingPublisher
	stats     *countingInvalidator

	materialSvc MaterialService
	invoiceSvc  InvoiceService
	orderSvc    OrderService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orders:    newFakeOrderRepo(),
		materials: newFakeMaterialRepo(),
		products:  newFakeProductRepo(),
		clients:   newFakeClientRepo(),
		inventory: &fakeInventoryRepo{},
		events:    &recordingPublisher{},
		stats:     &countingInvalidator{},
	}
	env.invoices = newFakeInvoiceRepo(env.orders)
	env.materialSvc = NewMaterialService(env.materials, env.inventory, fakeTx{}, env.events)
	env.invoiceSvc = NewInvoiceService(env.invoices, env.orders, env.clients, fakeTx{}, env.events, env.stats)
	env.orderSvc = NewOrderService(OrderServiceDeps{
		Orders:    env.orders,
		Materials: env.materials,
		Products:  env.products,
		Clients:   env.clients,
		Invoices:  env.invoices,
		Stock:     env.materialSvc,
		Totals:    env.invoiceSvc,
		Tx:        fakeTx{},
		Events:    env.events,
		Stats:     env.stats,
	})
	return env
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

var (
	admin        = models.Actor{UserID: 1, Role: models.RoleAdmin}
	designer     = models.Actor{UserID: 2, Role: models.RoleDesigner}
	worker       = models.Actor{UserID: 3, Role: models.RoleWorker}
	financial    = models.Actor{UserID: 4, Role: models.RoleFinancial}
	receptionist = models.Actor{UserID: 5, Role: models.RoleReceptionist}
)

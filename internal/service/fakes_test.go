package service

import (
	"time"

	"go-apotek-pos/internal/model"
	"go-apotek-pos/internal/repository"
	"go-apotek-pos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repositories backing the service tests. They honor the same
// contracts as the GORM implementations, including the not-found sentinel.

func newTestHub() *ws.Hub {
	hub := ws.NewHub()
	go hub.Run()
	return hub
}

type memProductRepo struct {
	order    []uuid.UUID
	products map[uuid.UUID]*model.Product
	logs     []model.InventoryLog
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *memProductRepo) add(name string, price int64, stock int) *model.Product {
	p := &model.Product{
		SKU:   "SKU-" + name,
		Name:  name,
		Price: price,
		Stock: stock,
	}
	r.Create(p)
	return p
}

func (r *memProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.order = append(r.order, product.ID)
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) FindAll() ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.products[id])
	}
	return out, nil
}

func (r *memProductRepo) FindActive() ([]model.Product, error) {
	var out []model.Product
	for _, id := range r.order {
		if r.products[id].Price > 0 {
			out = append(out, *r.products[id])
		}
	}
	return out, nil
}

func (r *memProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memProductRepo) FindBySKU(sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProductRepo) FindLowStock() ([]model.Product, error) {
	var out []model.Product
	for _, id := range r.order {
		p := r.products[id]
		if p.MinStock > 0 && p.Stock < p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Update(product *model.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *memProductRepo) UpdateLocked(product *model.Product) error {
	current, ok := r.products[product.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if current.Stock != product.Stock {
		qty := product.Stock - current.Stock
		if qty < 0 {
			qty = -qty
		}
		r.logs = append(r.logs, model.InventoryLog{
			ProductID:     product.ID,
			Type:          model.LogAdjustment,
			Quantity:      qty,
			PreviousStock: current.Stock,
			CurrentStock:  product.Stock,
			Reference:     "EDIT-" + product.SKU,
		})
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *memProductRepo) UpdateStock(_ *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = newStock
	p.UpdatedBy = updatedBy
	return nil
}

func (r *memProductRepo) Delete(id uuid.UUID, _ string) error {
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) stockOf(id uuid.UUID) int {
	return r.products[id].Stock
}

type memOpnameRepo struct {
	products *memProductRepo
	sessions map[uuid.UUID]*model.StockOpnameSession
	items    map[uuid.UUID]*model.StockOpnameItem
	itemsOf  map[uuid.UUID][]uuid.UUID
	logs     []model.InventoryLog
}

func newMemOpnameRepo(products *memProductRepo) *memOpnameRepo {
	return &memOpnameRepo{
		products: products,
		sessions: make(map[uuid.UUID]*model.StockOpnameSession),
		items:    make(map[uuid.UUID]*model.StockOpnameItem),
		itemsOf:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memOpnameRepo) FindActive() (*model.StockOpnameSession, error) {
	for _, s := range r.sessions {
		if s.IsActive() {
			clone := *s
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOpnameRepo) FindByID(id uuid.UUID) (*model.StockOpnameSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *memOpnameRepo) FindRecent(limit int) ([]model.StockOpnameSession, error) {
	var out []model.StockOpnameSession
	for _, s := range r.sessions {
		out = append(out, *s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memOpnameRepo) CreateSessionWithItems(session *model.StockOpnameSession, items []model.StockOpnameItem) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	clone := *session
	r.sessions[session.ID] = &clone

	for i := range items {
		items[i].SessionID = session.ID
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		itemClone := items[i]
		r.items[itemClone.ID] = &itemClone
		r.itemsOf[session.ID] = append(r.itemsOf[session.ID], itemClone.ID)
	}
	return nil
}

func (r *memOpnameRepo) FindItems(sessionID uuid.UUID) ([]model.StockOpnameItem, error) {
	ids, ok := r.itemsOf[sessionID]
	if !ok {
		return nil, nil
	}
	out := make([]model.StockOpnameItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.items[id])
	}
	return out, nil
}

func (r *memOpnameRepo) FindItem(id uuid.UUID) (*model.StockOpnameItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *memOpnameRepo) UpdateCountedStock(itemID uuid.UUID, counted *int, updatedBy string) error {
	item, ok := r.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CountedStock = counted
	item.UpdatedBy = updatedBy
	return nil
}

func (r *memOpnameRepo) UpdateStatus(sessionID uuid.UUID, status model.OpnameStatus, updatedBy string) error {
	s, ok := r.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	s.UpdatedBy = updatedBy
	return nil
}

func (r *memOpnameRepo) Finalize(session *model.StockOpnameSession, adjustments []repository.StockAdjustment) error {
	stored, ok := r.sessions[session.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Status != model.OpnameInProgress {
		return repository.ErrSessionClosed
	}

	for _, adj := range adjustments {
		if err := r.products.UpdateStock(nil, adj.ProductID, adj.NewStock, session.UpdatedBy); err != nil {
			return err
		}
		qty := adj.NewStock - adj.PreviousStock
		if qty < 0 {
			qty = -qty
		}
		r.logs = append(r.logs, model.InventoryLog{
			ProductID:     adj.ProductID,
			Type:          model.LogAdjustment,
			Quantity:      qty,
			PreviousStock: adj.PreviousStock,
			CurrentStock:  adj.NewStock,
			Reference:     session.Code,
		})
	}

	stored.Status = session.Status
	stored.CompletedAt = session.CompletedAt
	stored.TotalAdjusted = session.TotalAdjusted
	stored.TotalDifference = session.TotalDifference
	stored.UpdatedBy = session.UpdatedBy
	return nil
}

type memVendorRepo struct {
	vendors map[uuid.UUID]*model.Vendor
}

func newMemVendorRepo() *memVendorRepo {
	return &memVendorRepo{vendors: make(map[uuid.UUID]*model.Vendor)}
}

func (r *memVendorRepo) Create(vendor *model.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	clone := *vendor
	r.vendors[vendor.ID] = &clone
	return nil
}

func (r *memVendorRepo) FindAll() ([]model.Vendor, error) {
	var out []model.Vendor
	for _, v := range r.vendors {
		out = append(out, *v)
	}
	return out, nil
}

func (r *memVendorRepo) FindByID(id uuid.UUID) (*model.Vendor, error) {
	v, ok := r.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memVendorRepo) FindByCode(code string) (*model.Vendor, error) {
	for _, v := range r.vendors {
		if v.Code == code {
			clone := *v
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memVendorRepo) Update(vendor *model.Vendor) error {
	if _, ok := r.vendors[vendor.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *vendor
	r.vendors[vendor.ID] = &clone
	return nil
}

func (r *memVendorRepo) Delete(id uuid.UUID, _ string) error {
	delete(r.vendors, id)
	return nil
}

type memLogRepo struct {
	logs []model.InventoryLog
}

func (r *memLogRepo) Create(_ *gorm.DB, logRow *model.InventoryLog) error {
	r.logs = append(r.logs, *logRow)
	return nil
}

func (r *memLogRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.InventoryLog, error) {
	var out []model.InventoryLog
	for _, l := range r.logs {
		if l.ProductID == productID {
			out = append(out, l)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memLogRepo) FindByReference(reference string) ([]model.InventoryLog, error) {
	var out []model.InventoryLog
	for _, l := range r.logs {
		if l.Reference == reference {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindRecent(limit int) ([]model.InventoryLog, error) {
	if limit > 0 && limit < len(r.logs) {
		return r.logs[len(r.logs)-limit:], nil
	}
	return r.logs, nil
}

type memSettingsRepo struct {
	settings model.StoreSettings
}

func (r *memSettingsRepo) Get() (*model.StoreSettings, error) {
	clone := r.settings
	return &clone, nil
}

func (r *memSettingsRepo) Update(settings *model.StoreSettings) error {
	r.settings = *settings
	return nil
}

type memShiftRepo struct {
	shifts map[uuid.UUID]*model.Shift
}

func newMemShiftRepo() *memShiftRepo {
	return &memShiftRepo{shifts: make(map[uuid.UUID]*model.Shift)}
}

func (r *memShiftRepo) Create(shift *model.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	clone := *shift
	r.shifts[shift.ID] = &clone
	return nil
}

func (r *memShiftRepo) FindOpen() (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.Status == model.ShiftOpen {
			clone := *s
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memShiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *memShiftRepo) FindRecent(limit int) ([]model.Shift, error) {
	var out []model.Shift
	for _, s := range r.shifts {
		out = append(out, *s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memShiftRepo) Update(shift *model.Shift) error {
	if _, ok := r.shifts[shift.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *shift
	r.shifts[shift.ID] = &clone
	return nil
}

func (r *memShiftRepo) openShift() *model.Shift {
	shift := &model.Shift{
		UserID:   uuid.New(),
		Status:   model.ShiftOpen,
		OpenedAt: time.Now(),
	}
	r.Create(shift)
	return shift
}

type memOrderRepo struct {
	products *memProductRepo
	orders   map[uuid.UUID]*model.Order
	logs     []model.InventoryLog
}

func newMemOrderRepo(products *memProductRepo) *memOrderRepo {
	return &memOrderRepo{
		products: products,
		orders:   make(map[uuid.UUID]*model.Order),
	}
}

func (r *memOrderRepo) CreateWithStock(order *model.Order, decrements []repository.StockDecrement) error {
	for _, dec := range decrements {
		p, ok := r.products.products[dec.ProductID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if p.Stock < dec.Qty {
			return repository.ErrInsufficientStock
		}
	}
	for _, dec := range decrements {
		p := r.products.products[dec.ProductID]
		prev := p.Stock
		p.Stock -= dec.Qty
		r.logs = append(r.logs, model.InventoryLog{
			ProductID:     dec.ProductID,
			Type:          model.LogSale,
			Quantity:      dec.Qty,
			PreviousStock: prev,
			CurrentStock:  p.Stock,
			Reference:     order.Code,
		})
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) CancelWithRestock(order *model.Order) error {
	stored, ok := r.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, item := range stored.Items {
		p := r.products.products[item.ProductID]
		prev := p.Stock
		p.Stock += item.Qty
		r.logs = append(r.logs, model.InventoryLog{
			ProductID:     item.ProductID,
			Type:          model.LogRestock,
			Quantity:      item.Qty,
			PreviousStock: prev,
			CurrentStock:  p.Stock,
			Reference:     stored.Code,
		})
	}
	stored.Status = model.OrderCancelled
	return nil
}

func (r *memOrderRepo) FindAll(status model.OrderStatus, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *memOrderRepo) FindByCode(code string) (*model.Order, error) {
	for _, o := range r.orders {
		if o.Code == code {
			clone := *o
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) FindByGatewayRef(ref string) (*model.Order, error) {
	for _, o := range r.orders {
		if o.GatewayRef == ref {
			clone := *o
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) Update(order *model.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) GetDashboardStats() (*repository.DashboardStats, error) {
	return &repository.DashboardStats{}, nil
}

func (r *memOrderRepo) GetSalesSummary(_, _ time.Time) ([]repository.SalesSummaryRow, error) {
	return nil, nil
}

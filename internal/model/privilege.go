package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Vendors
	{Code: "vendor:view", Name: "View Vendor"},
	{Code: "vendor:manage", Name: "Manage Vendor"},
	// Orders / POS
	{Code: "order:view", Name: "View Order"},
	{Code: "order:create", Name: "Create Order"},
	{Code: "order:update", Name: "Update Order"},
	{Code: "order:cancel", Name: "Cancel Order"},
	// Register shifts
	{Code: "shift:view", Name: "View Shift"},
	{Code: "shift:manage", Name: "Open/Close Shift"},
	// Stock opname
	{Code: "opname:view", Name: "View Stock Opname"},
	{Code: "opname:manage", Name: "Run Stock Opname"},
	{Code: "opname:finalize", Name: "Finalize Stock Opname"},
	// Reports & dashboard
	{Code: "report:view", Name: "View Reports"},
	// Settings
	{Code: "settings:view", Name: "View Settings"},
	{Code: "settings:manage", Name: "Update Settings"},
}

// CashierPrivileges are the codes granted to the CASHIER role on seed.
var CashierPrivileges = []string{
	"product:view",
	"order:view",
	"order:create",
	"shift:view",
	"shift:manage",
}

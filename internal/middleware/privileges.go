package middleware

// Privilege codes carried in operator tokens.
const (
	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"
	PrivProductImport = "product:import"
	PrivProductExport = "product:export"

	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivTransactionUpdate = "transaction:update"
	PrivTransactionDelete = "transaction:delete"
	PrivTransactionImport = "transaction:import"
	PrivTransactionExport = "transaction:export"

	PrivInventoryView   = "inventory:view"
	PrivInventoryExport = "inventory:export"

	PrivDashboardView = "dashboard:view"
)

// AllPrivileges is granted to tokens issued without an explicit list.
var AllPrivileges = []string{
	PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete, PrivProductImport, PrivProductExport,
	PrivTransactionView, PrivTransactionCreate, PrivTransactionUpdate, PrivTransactionDelete, PrivTransactionImport, PrivTransactionExport,
	PrivInventoryView, PrivInventoryExport,
	PrivDashboardView,
}

// ReadOnlyPrivileges covers every view and export privilege.
var ReadOnlyPrivileges = []string{
	PrivProductView, PrivProductExport,
	PrivTransactionView, PrivTransactionExport,
	PrivInventoryView, PrivInventoryExport,
	PrivDashboardView,
}

package handler

import (
	"go-inventory-tracker/internal/middleware"
	"go-inventory-tracker/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Products     *ProductHandler
	Transactions *TransactionHandler
	Inventory    *InventoryHandler
	Dashboard    *DashboardHandler
}

// Register mounts every API route under router. All routes require a bearer token.
func (h *Handlers) Register(router fiber.Router, tokens *jwt.Manager) {
	protected := router.Group("", middleware.RequireAuth(tokens))
	priv := middleware.RequirePrivilege

	// Dashboard Routes
	protected.Get("/dashboard/stats", priv(middleware.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(middleware.PrivDashboardView), h.Dashboard.GetStockMovement)
	protected.Get("/dashboard/stock-movement/export", priv(middleware.PrivDashboardView), h.Dashboard.ExportStockMovement)

	// Product Routes
	protected.Get("/products", priv(middleware.PrivProductView), h.Products.GetProducts)
	protected.Get("/products/export", priv(middleware.PrivProductExport), h.Products.ExportProducts)
	protected.Post("/products/import", priv(middleware.PrivProductImport), h.Products.ImportProducts)
	protected.Get("/products/:id", priv(middleware.PrivProductView), h.Products.GetProduct)
	protected.Post("/products", priv(middleware.PrivProductCreate), h.Products.CreateProduct)
	protected.Put("/products/:id", priv(middleware.PrivProductUpdate), h.Products.UpdateProduct)
	protected.Delete("/products/:id", priv(middleware.PrivProductDelete), h.Products.DeleteProduct)

	// Transaction Routes
	protected.Get("/transactions", priv(middleware.PrivTransactionView), h.Transactions.GetTransactions)
	protected.Get("/transactions/export", priv(middleware.PrivTransactionExport), h.Transactions.ExportTransactions)
	protected.Post("/transactions/import", priv(middleware.PrivTransactionImport), h.Transactions.ImportTransactions)
	protected.Get("/transactions/:id", priv(middleware.PrivTransactionView), h.Transactions.GetTransaction)
	protected.Post("/transactions", priv(middleware.PrivTransactionCreate), h.Transactions.CreateTransaction)
	protected.Put("/transactions/:id", priv(middleware.PrivTransactionUpdate), h.Transactions.UpdateTransaction)
	protected.Put("/transactions/:id/status", priv(middleware.PrivTransactionUpdate), h.Transactions.UpdateStatus)
	protected.Post("/transactions/:id/duplicate", priv(middleware.PrivTransactionCreate), h.Transactions.DuplicateTransaction)
	protected.Delete("/transactions/:id", priv(middleware.PrivTransactionDelete), h.Transactions.DeleteTransaction)

	// Inventory Item Routes
	protected.Get("/inventory-items", priv(middleware.PrivInventoryView), h.Inventory.GetInventoryItems)
	protected.Get("/inventory-items/export", priv(middleware.PrivInventoryExport), h.Inventory.ExportInventoryItems)
}

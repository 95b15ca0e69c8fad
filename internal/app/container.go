// Package app wires repositories and services over one database handle.
package app

import (
	"go-inventory-tracker/config"
	"go-inventory-tracker/internal/handler"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Repositories struct {
	Products         repository.ProductRepository
	Transactions     repository.TransactionRepository
	TransactionItems repository.TransactionItemRepository
	InventoryItems   repository.InventoryItemRepository
}

type Services struct {
	Repos             Repositories
	Ledger            service.LedgerService
	Products          service.ProductService
	ProductImport     service.ProductImportService
	Transactions      service.TransactionService
	TransactionImport service.TransactionImportService
	Dashboard         service.DashboardService
	Export            service.ExportService
}

// NewServices builds the service graph. notifier may be nil.
func NewServices(db *gorm.DB, cfg *config.Config, log *zap.Logger, notifier service.Notifier) *Services {
	repos := Repositories{
		Products:         repository.NewProductRepo(db),
		Transactions:     repository.NewTransactionRepo(db),
		TransactionItems: repository.NewTransactionItemRepo(db),
		InventoryItems:   repository.NewInventoryItemRepo(db),
	}
	chunk := cfg.Transfer.IDChunkSize

	ledger := service.NewLedgerService(repos.Products, repos.InventoryItems, log)
	dashboard := service.NewDashboardService(repos.Transactions)

	return &Services{
		Repos:             repos,
		Ledger:            ledger,
		Products:          service.NewProductService(repos.Products, notifier, log),
		ProductImport:     service.NewProductImportService(repos.Products, notifier, log),
		Transactions:      service.NewTransactionService(repos.Transactions, repos.TransactionItems, repos.Products, ledger, notifier, log, chunk),
		TransactionImport: service.NewTransactionImportService(repos.Transactions, repos.TransactionItems, repos.Products, ledger, notifier, log),
		Dashboard:         dashboard,
		Export: service.NewExportService(repos.Products, repos.Transactions, repos.TransactionItems, repos.InventoryItems,
			dashboard, log, cfg.Transfer.ExportPageSize, chunk),
	}
}

// Handlers builds the HTTP handlers over s.
func (s *Services) Handlers(cfg *config.Config, log *zap.Logger) *handler.Handlers {
	timeout := cfg.Transfer.ExportTimeout
	return &handler.Handlers{
		Products:     handler.NewProductHandler(s.Products, s.ProductImport, s.Export, timeout, log),
		Transactions: handler.NewTransactionHandler(s.Transactions, s.TransactionImport, s.Export, timeout, log),
		Inventory:    handler.NewInventoryHandler(s.Repos.InventoryItems, s.Export, timeout),
		Dashboard:    handler.NewDashboardHandler(s.Dashboard, s.Export, timeout),
	}
}

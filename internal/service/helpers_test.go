package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	db       *gorm.DB
	products repository.ProductRepository
	txs      repository.TransactionRepository
	lines    repository.TransactionItemRepository
	items    repository.InventoryItemRepository
	ledger   LedgerService
	events   *recordingNotifier
	log      *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	log := zap.NewNop()
	products := repository.NewProductRepo(db)
	items := repository.NewInventoryItemRepo(db)
	return &testEnv{
		db:       db,
		products: products,
		txs:      repository.NewTransactionRepo(db),
		lines:    repository.NewTransactionItemRepo(db),
		items:    items,
		ledger:   NewLedgerService(products, items, log),
		events:   &recordingNotifier{},
		log:      log,
	}
}

func (e *testEnv) seedProduct(t *testing.T, name, code string, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: name, ProductCode: code, Stock: stock, CostPrice: decimal.NewFromInt(100)}
	if err := e.products.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return p
}

func (e *testEnv) setStock(t *testing.T, id uuid.UUID, stock int) {
	t.Helper()
	if err := e.products.UpdateStock(context.Background(), id, stock, "test"); err != nil {
		t.Fatalf("set stock: %v", err)
	}
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Stock
}

// insertTx stores a transaction with one line per (product, quantity) pair.
func (e *testEnv) insertTx(t *testing.T, dir model.Direction, date time.Time, lines ...model.TransactionItem) *model.Transaction {
	t.Helper()
	tx := &model.Transaction{
		Direction: dir,
		Status:    model.StatusScheduled,
		Category:  model.DefaultCategory(dir),
		Date:      model.DateOnly(date),
	}
	if err := insertTransaction(context.Background(), e.txs, e.lines, tx, lines); err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
	return tx
}

func (e *testEnv) countItems(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.InventoryItem{}).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	return n
}

func (e *testEnv) countTransactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&model.Transaction{}).Count(&n).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return n
}

func line(productID uuid.UUID, qty int, price int64) model.TransactionItem {
	return model.TransactionItem{ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ws.Event
}

func (n *recordingNotifier) Publish(e ws.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Action
	}
	return out
}

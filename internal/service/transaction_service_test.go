package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (e *testEnv) transactions() *transactionService {
	svc := NewTransactionService(e.txs, e.lines, e.products, e.ledger, e.events, e.log, 2).(*transactionService)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestTransactionCreate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()
	p := env.seedProduct(t, "Widget", "W-1", 0)
	q := env.seedProduct(t, "Gadget", "G-1", 0)

	req := &model.Transaction{
		Direction: model.TxIn,
		Status:    model.StatusCompleted,
		Category:  model.CategoryShip,
		Items:     []model.TransactionItem{line(p.ID, 2, 100), line(q.ID, 3, 10)},
	}
	tx, err := svc.Create(context.Background(), req, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.Status != model.StatusScheduled {
		t.Errorf("status = %s, want SCHEDULED", tx.Status)
	}
	if tx.Category != model.CategoryRestock {
		t.Errorf("category = %s, want RESTOCK", tx.Category)
	}
	if got := tx.Date.Format("2006-01-02"); got != "2024-06-01" {
		t.Errorf("date = %s", got)
	}
	if !tx.TotalAmount.Equal(decimal.NewFromInt(230)) {
		t.Errorf("total = %s, want 230", tx.TotalAmount)
	}

	stored, err := svc.Get(context.Background(), tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items) != 2 || stored.Items[0].LineNo != 1 || stored.Items[1].ProductID != q.ID {
		t.Errorf("items = %+v", stored.Items)
	}
	if stored.Items[0].Product == nil || stored.Items[0].Product.Name != "Widget" {
		t.Errorf("product not preloaded: %+v", stored.Items[0].Product)
	}
	if got := env.stockOf(t, p.ID); got != 0 {
		t.Errorf("stock = %d, scheduled transactions must not move stock", got)
	}
}

func TestTransactionCreateRejectsUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()

	req := &model.Transaction{Direction: model.TxOut, Items: []model.TransactionItem{line(uuid.New(), 1, 100)}}
	if _, err := svc.Create(context.Background(), req, "alice"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
	if n := env.countTransactions(t); n != 0 {
		t.Errorf("transactions = %d, want 0", n)
	}
}

func TestTransactionStatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 1)

	tx, err := svc.Create(ctx, &model.Transaction{Direction: model.TxIn, Items: []model.TransactionItem{line(p.ID, 4, 100)}}, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	change, err := svc.UpdateStatus(ctx, tx.ID, model.StatusCompleted, "alice")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !change.Changed || change.Ledger == nil || change.Ledger.ItemsCreated != 4 {
		t.Fatalf("change = %+v", change)
	}
	if got := env.stockOf(t, p.ID); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}

	again, err := svc.UpdateStatus(ctx, tx.ID, model.StatusCompleted, "alice")
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if again.Changed || again.Ledger != nil {
		t.Errorf("repeat transition = %+v, want no-op", again)
	}
	if got := env.stockOf(t, p.ID); got != 5 {
		t.Errorf("stock after no-op = %d, want 5", got)
	}

	if _, err := svc.UpdateStatus(ctx, tx.ID, model.StatusScheduled, "alice"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := env.stockOf(t, p.ID); got != 1 {
		t.Errorf("stock after reopen = %d, want 1", got)
	}
	if n, _ := env.items.CountByTransaction(ctx, tx.ID); n != 0 {
		t.Errorf("items = %d, want 0", n)
	}

	stored, _ := svc.Get(ctx, tx.ID)
	if stored.Status != model.StatusScheduled {
		t.Errorf("status = %s", stored.Status)
	}

	var stockEvents int
	for _, a := range env.events.actions() {
		if a == "transaction_COMPLETED" || a == "transaction_SCHEDULED" {
			stockEvents++
		}
	}
	if stockEvents != 2 {
		t.Errorf("stock events = %d, want 2 (%v)", stockEvents, env.events.actions())
	}
}

func TestTransactionUpdateStatusErrors(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), "SHIPPED", "alice"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), model.StatusCompleted, "alice"); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("err = %v, want ErrTransactionNotFound", err)
	}
}

func TestTransactionUpdateReappliesCompleted(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 0)

	tx, err := svc.Create(ctx, &model.Transaction{Direction: model.TxIn, Items: []model.TransactionItem{line(p.ID, 2, 100)}}, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, tx.ID, model.StatusCompleted, "alice"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	updated, err := svc.Update(ctx, tx.ID, &model.Transaction{
		Direction: model.TxIn,
		Date:      day("2024-05-20"),
		Partner:   "Acme",
		Items:     []model.TransactionItem{line(p.ID, 5, 120)},
	}, "bob")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Errorf("status = %s", updated.Status)
	}
	if !updated.TotalAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("total = %s, want 600", updated.TotalAmount)
	}
	if got := env.stockOf(t, p.ID); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if n, _ := env.items.CountByTransaction(ctx, tx.ID); n != 5 {
		t.Errorf("items = %d, want 5", n)
	}

	stored, _ := svc.Get(ctx, tx.ID)
	if len(stored.Items) != 1 || stored.Items[0].Quantity != 5 || stored.Partner != "Acme" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestTransactionDuplicate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 0)

	src, err := svc.Create(ctx, &model.Transaction{
		Direction:  model.TxOut,
		Category:   model.CategoryResend,
		Date:       day("2024-01-01"),
		Partner:    "Acme",
		TrackingID: "T-1",
		OrderCode:  "O-1",
		Items:      []model.TransactionItem{line(p.ID, 2, 100)},
	}, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, src.ID, model.StatusCompleted, "alice"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	dup, err := svc.Duplicate(ctx, src.ID, "bob")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.ID == src.ID || dup.Status != model.StatusScheduled {
		t.Errorf("dup = %+v", dup)
	}
	if dup.Category != model.CategoryResend || dup.Partner != "Acme" {
		t.Errorf("dup fields = %s %q", dup.Category, dup.Partner)
	}
	if dup.TrackingID != "" || dup.OrderCode != "" {
		t.Errorf("identifiers copied: %q %q", dup.TrackingID, dup.OrderCode)
	}
	if got := dup.Date.Format("2006-01-02"); got != "2024-06-01" {
		t.Errorf("date = %s", got)
	}
	stored, _ := svc.Get(ctx, dup.ID)
	if len(stored.Items) != 1 || stored.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", stored.Items)
	}
	if got := env.stockOf(t, p.ID); got != -2 {
		t.Errorf("stock = %d, duplicate must not apply stock", got)
	}
}

func TestTransactionDeleteReversesCompleted(t *testing.T) {
	env := newTestEnv(t)
	svc := env.transactions()
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 0)

	tx, err := svc.Create(ctx, &model.Transaction{Direction: model.TxIn, Items: []model.TransactionItem{line(p.ID, 3, 100)}}, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, tx.ID, model.StatusCompleted, "alice"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if err := svc.Delete(ctx, tx.ID, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := env.stockOf(t, p.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
	if n := env.countItems(t, "product_id = ?", p.ID); n != 0 {
		t.Errorf("inventory items = %d, want 0", n)
	}
	if _, err := svc.Get(ctx, tx.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if lines, _ := env.lines.FindByTransactionID(ctx, tx.ID); len(lines) != 0 {
		t.Errorf("lines = %d, want 0", len(lines))
	}
}

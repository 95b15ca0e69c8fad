package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
)

func TestLedgerApplyReverseInbound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 2)
	tx := env.insertTx(t, model.TxIn, day("2024-01-01"), line(p.ID, 3, 100))

	res, err := env.ledger.Apply(ctx, tx, tx.Items, "alice")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Complete() {
		t.Fatalf("expected complete apply, skipped %+v", res.Skipped)
	}
	if got := env.stockOf(t, p.ID); got != 5 {
		t.Errorf("stock after apply = %d, want 5", got)
	}
	if res.ItemsCreated != 3 {
		t.Errorf("items created = %d, want 3", res.ItemsCreated)
	}
	if n := env.countItems(t, "inbound_transaction_id = ? AND status = ?", tx.ID, model.ItemInStock); n != 3 {
		t.Errorf("in-stock items = %d, want 3", n)
	}

	res, err = env.ledger.Reverse(ctx, tx, tx.Items, "alice")
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if got := env.stockOf(t, p.ID); got != 2 {
		t.Errorf("stock after reverse = %d, want 2", got)
	}
	if res.ItemsDeleted != 3 {
		t.Errorf("items deleted = %d, want 3", res.ItemsDeleted)
	}
	if n, _ := env.items.CountByTransaction(ctx, tx.ID); n != 0 {
		t.Errorf("items left for transaction = %d, want 0", n)
	}
}

func TestLedgerApplyReverseOutbound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 0)

	in := env.insertTx(t, model.TxIn, day("2024-01-01"), line(p.ID, 4, 100))
	if _, err := env.ledger.Apply(ctx, in, in.Items, "alice"); err != nil {
		t.Fatalf("apply inbound: %v", err)
	}

	out := env.insertTx(t, model.TxOut, day("2024-01-05"), line(p.ID, 3, 150))
	out.ShippingCode = "SHIP-9"
	res, err := env.ledger.Apply(ctx, out, out.Items, "bob")
	if err != nil {
		t.Fatalf("apply outbound: %v", err)
	}
	if res.ItemsShipped != 3 || len(res.Shortfalls) != 0 {
		t.Fatalf("shipped %d shortfalls %+v", res.ItemsShipped, res.Shortfalls)
	}
	if got := env.stockOf(t, p.ID); got != 1 {
		t.Errorf("stock after outbound = %d, want 1", got)
	}
	if n := env.countItems(t, "outbound_transaction_id = ? AND status = ? AND shipping_code = ?", out.ID, model.ItemShipped, "SHIP-9"); n != 3 {
		t.Errorf("shipped items = %d, want 3", n)
	}

	res, err = env.ledger.Reverse(ctx, out, out.Items, "bob")
	if err != nil {
		t.Fatalf("reverse outbound: %v", err)
	}
	if res.ItemsRestored != 3 {
		t.Errorf("items restored = %d, want 3", res.ItemsRestored)
	}
	if got := env.stockOf(t, p.ID); got != 4 {
		t.Errorf("stock after reverse = %d, want 4", got)
	}
	if n := env.countItems(t, "status = ?", model.ItemInStock); n != 4 {
		t.Errorf("in-stock items = %d, want 4", n)
	}
	if n := env.countItems(t, "outbound_transaction_id IS NOT NULL OR outbound_date IS NOT NULL OR shipping_code <> ''"); n != 0 {
		t.Errorf("%d items still carry shipment fields", n)
	}
}

func TestLedgerShipsEarliestInboundFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 0)

	// Received out of date order so insertion order cannot stand in for FIFO.
	late := env.insertTx(t, model.TxIn, day("2024-03-01"), line(p.ID, 2, 100))
	early := env.insertTx(t, model.TxIn, day("2024-01-01"), line(p.ID, 2, 100))
	for _, tx := range []*model.Transaction{late, early} {
		if _, err := env.ledger.Apply(ctx, tx, tx.Items, "alice"); err != nil {
			t.Fatalf("apply inbound: %v", err)
		}
	}

	out := env.insertTx(t, model.TxOut, day("2024-04-01"), line(p.ID, 3, 100))
	if _, err := env.ledger.Apply(ctx, out, out.Items, "bob"); err != nil {
		t.Fatalf("apply outbound: %v", err)
	}

	if n := env.countItems(t, "inbound_transaction_id = ? AND status = ?", early.ID, model.ItemShipped); n != 2 {
		t.Errorf("shipped from earliest receipt = %d, want 2", n)
	}
	if n := env.countItems(t, "inbound_transaction_id = ? AND status = ?", late.ID, model.ItemShipped); n != 1 {
		t.Errorf("shipped from later receipt = %d, want 1", n)
	}
}

func TestLedgerReverseStockFloor(t *testing.T) {
	tests := []struct {
		name      string
		direction model.Direction
		want      int
	}{
		{"outbound adds back without clamping", model.TxOut, 7},
		{"inbound subtracts and clamps at zero", model.TxIn, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			p := env.seedProduct(t, "Widget", "W-1", 2)
			tx := env.insertTx(t, tt.direction, day("2024-01-01"), line(p.ID, 5, 100))

			if _, err := env.ledger.Reverse(context.Background(), tx, tx.Items, "alice"); err != nil {
				t.Fatalf("reverse: %v", err)
			}
			if got := env.stockOf(t, p.ID); got != tt.want {
				t.Errorf("stock = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLedgerApplyRecordsShortfall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "Widget", "W-1", 1)

	in := env.insertTx(t, model.TxIn, day("2024-01-01"), line(p.ID, 1, 100))
	if _, err := env.ledger.Apply(ctx, in, in.Items, "alice"); err != nil {
		t.Fatalf("apply inbound: %v", err)
	}

	out := env.insertTx(t, model.TxOut, day("2024-01-02"), line(p.ID, 4, 100))
	res, err := env.ledger.Apply(ctx, out, out.Items, "bob")
	if err != nil {
		t.Fatalf("apply outbound: %v", err)
	}
	if got := env.stockOf(t, p.ID); got != -2 {
		t.Errorf("stock = %d, want -2", got)
	}
	if len(res.Shortfalls) != 1 {
		t.Fatalf("shortfalls = %+v, want one", res.Shortfalls)
	}
	if sf := res.Shortfalls[0]; sf.Requested != 4 || sf.Shipped != 1 {
		t.Errorf("shortfall = %+v", sf)
	}
	if res.ItemsShipped != 1 {
		t.Errorf("items shipped = %d, want 1", res.ItemsShipped)
	}
}

// flakyProducts fails reads for one product ID.
type flakyProducts struct {
	repository.ProductRepository
	broken uuid.UUID
}

func (f *flakyProducts) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if id == f.broken {
		return nil, errors.New("connection reset")
	}
	return f.ProductRepository.FindByID(ctx, id)
}

func TestLedgerSkipsLinesWithUnreadableStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	good := env.seedProduct(t, "Good", "G-1", 0)
	bad := env.seedProduct(t, "Bad", "B-1", 0)
	ledger := NewLedgerService(&flakyProducts{ProductRepository: env.products, broken: bad.ID}, env.items, env.log)

	tx := env.insertTx(t, model.TxIn, day("2024-01-01"), line(good.ID, 2, 100), line(bad.ID, 1, 100))
	res, err := ledger.Apply(ctx, tx, tx.Items, "alice")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Complete() {
		t.Fatal("expected an incomplete result")
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ProductID != bad.ID {
		t.Fatalf("skipped = %+v", res.Skipped)
	}
	if !strings.Contains(res.Skipped[0].Reason, "connection reset") {
		t.Errorf("reason = %q", res.Skipped[0].Reason)
	}
	if got := env.stockOf(t, good.ID); got != 2 {
		t.Errorf("good stock = %d, want 2", got)
	}
	if got := env.stockOf(t, bad.ID); got != 0 {
		t.Errorf("bad stock = %d, want 0", got)
	}
	if res.ItemsCreated != 3 {
		t.Errorf("items created = %d, want 3", res.ItemsCreated)
	}
}

func TestBuildReceivedItemsTrackingNumbers(t *testing.T) {
	id := uuid.MustParse("0f1e2d3c-0000-4000-8000-000000000000")
	productA, productB := uuid.New(), uuid.New()
	lines := []model.TransactionItem{{ProductID: productA, Quantity: 2}, {ProductID: productB, Quantity: 1}}

	tx := &model.Transaction{BaseModel: model.BaseModel{ID: id}, Direction: model.TxIn, Date: day("2024-01-01")}
	got := buildReceivedItems(tx, lines, "alice")
	want := []string{"0f1e2d3c-1", "0f1e2d3c-2", "0f1e2d3c-3"}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i, item := range got {
		if item.TrackingNumber != want[i] {
			t.Errorf("item %d tracking number = %q, want %q", i, item.TrackingNumber, want[i])
		}
		if item.Status != model.ItemInStock || *item.InboundTransactionID != id {
			t.Errorf("item %d = %+v", i, item)
		}
	}
	if got[2].ProductID != productB {
		t.Errorf("third unit belongs to %s, want %s", got[2].ProductID, productB)
	}

	tx.TrackingID = "LOT-7"
	for _, item := range buildReceivedItems(tx, lines, "alice") {
		if item.TrackingNumber != "LOT-7" {
			t.Errorf("tracking number = %q, want LOT-7", item.TrackingNumber)
		}
	}
}

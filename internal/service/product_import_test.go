package service

import (
	"context"
	"errors"
	"testing"

	"go-inventory-tracker/internal/model"

	"github.com/shopspring/decimal"
)

func (e *testEnv) productsByName(t *testing.T) map[string]model.Product {
	t.Helper()
	all, err := e.products.FindAll(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	out := make(map[string]model.Product, len(all))
	for _, p := range all {
		out[p.Name] = p
	}
	return out
}

func TestProductImportCurrentLayout(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductImportService(env.products, env.events, env.log)

	text := csvLines(
		"商品名,商品コード,バーコード,原価,売価,仕入先,数量,メモ",
		`"Widget, large",W-L,4901234,"¥1,200",1800,Acme,12,"says ""hi"""`,
		",,,,,,,",
		",NO-NAME,,100,200,,1,",
		"Gadget,G-1,,300,450,Beta,-3,",
	)
	n, err := svc.Import(context.Background(), text, "alice")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported = %d, want 2", n)
	}

	got := env.productsByName(t)
	w, ok := got["Widget, large"]
	if !ok {
		t.Fatalf("products = %v", got)
	}
	if w.ProductCode != "W-L" || w.Barcode != "4901234" || w.Supplier != "Acme" || w.Stock != 12 || w.Memo != `says "hi"` {
		t.Errorf("widget = %+v", w)
	}
	if !w.CostPrice.Equal(decimal.NewFromInt(1200)) || !w.SellingPrice.Equal(decimal.NewFromInt(1800)) || !w.UnitPrice.Equal(w.CostPrice) {
		t.Errorf("widget prices = %s/%s/%s", w.CostPrice, w.SellingPrice, w.UnitPrice)
	}
	if got["Gadget"].Stock != -3 {
		t.Errorf("gadget stock = %d, want -3", got["Gadget"].Stock)
	}
	if w.CreatedBy != "alice" {
		t.Errorf("created_by = %q", w.CreatedBy)
	}
	if acts := env.events.actions(); len(acts) != 1 || acts[0] != "products_imported" {
		t.Errorf("events = %v", acts)
	}
}

func TestProductImportLegacyLayout(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductImportService(env.products, nil, env.log)

	text := csvLines(
		"商品名,バーコード,数量,単価,メモ",
		"Widget,4901,5,$250,old stock",
	)
	n, err := svc.Import(context.Background(), text, "alice")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported = %d, want 1", n)
	}
	w := env.productsByName(t)["Widget"]
	if w.Barcode != "4901" || w.Stock != 5 || w.Memo != "old stock" {
		t.Errorf("widget = %+v", w)
	}
	if !w.CostPrice.Equal(decimal.NewFromInt(250)) || !w.SellingPrice.IsZero() {
		t.Errorf("prices = %s/%s", w.CostPrice, w.SellingPrice)
	}
}

func TestIsLegacyProductHeader(t *testing.T) {
	tests := []struct {
		header []string
		want   bool
	}{
		{[]string{"商品名", "バーコード", "数量", "単価", "メモ"}, true},
		{[]string{"name", "barcode", "quantity", "unit_price", "memo", "extra"}, true},
		{[]string{"商品名", "商品コード", "バーコード", "原価", "売価", "仕入先", "数量", "メモ"}, false},
	}
	for _, tt := range tests {
		if got := isLegacyProductHeader(tt.header); got != tt.want {
			t.Errorf("isLegacyProductHeader(%v) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestProductImportRejectsEmptyInput(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductImportService(env.products, nil, env.log)

	if _, err := svc.Import(context.Background(), "商品名,バーコード", "alice"); !errors.Is(err, ErrNoData) {
		t.Errorf("header only err = %v, want ErrNoData", err)
	}
	if _, err := svc.Import(context.Background(), "商品名,バーコード\n,123\n\n", "alice"); !errors.Is(err, ErrNoRows) {
		t.Errorf("nameless rows err = %v, want ErrNoRows", err)
	}
	if all, _ := env.products.FindAll(context.Background()); len(all) != 0 {
		t.Errorf("products = %d, want 0", len(all))
	}
}

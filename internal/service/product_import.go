package service

import (
	"context"
	"fmt"
	"strings"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/csvutil"
	"go-inventory-tracker/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Product CSV layouts.
//
//	current: name, product_code, barcode, cost_price, selling_price, supplier, quantity, memo
//	legacy:  name, barcode, quantity, unit_price, memo
var (
	productExportHeader = []string{"商品名", "商品コード", "バーコード", "原価", "売価", "仕入先", "数量", "メモ"}
	legacyProductPairs  = [][2]string{{"商品名", "バーコード"}, {"name", "barcode"}}
)

const legacyProductColumns = 5

type ProductImportService interface {
	// Import inserts one product per data row and returns how many were inserted.
	Import(ctx context.Context, text string, actor string) (int, error)
}

type productImportService struct {
	productRepo repository.ProductRepository
	notifier    Notifier
	log         *zap.Logger
}

func NewProductImportService(pRepo repository.ProductRepository, notifier Notifier, log *zap.Logger) ProductImportService {
	return &productImportService{
		productRepo: pRepo,
		notifier:    orNop(notifier),
		log:         log.Named("product_import"),
	}
}

func isLegacyProductHeader(header []string) bool {
	if len(header) <= legacyProductColumns {
		return true
	}
	first := strings.ToLower(strings.TrimSpace(header[0]))
	second := strings.ToLower(strings.TrimSpace(header[1]))
	for _, pair := range legacyProductPairs {
		if first == pair[0] && second == pair[1] {
			return true
		}
	}
	return false
}

func mapLegacyProductRow(row []string) model.Product {
	unitPrice := decimal.NewFromInt(csvutil.ParseNum(cell(row, 3)))
	return model.Product{
		Name:         cell(row, 0),
		Barcode:      cell(row, 1),
		Stock:        int(csvutil.ParseNum(cell(row, 2))),
		CostPrice:    unitPrice,
		UnitPrice:    unitPrice,
		SellingPrice: decimal.Zero,
		Memo:         cell(row, 4),
	}
}

func mapCurrentProductRow(row []string) model.Product {
	cost := decimal.NewFromInt(csvutil.ParseNum(cell(row, 3)))
	return model.Product{
		Name:         cell(row, 0),
		ProductCode:  cell(row, 1),
		Barcode:      cell(row, 2),
		CostPrice:    cost,
		UnitPrice:    cost,
		SellingPrice: decimal.NewFromInt(csvutil.ParseNum(cell(row, 4))),
		Supplier:     cell(row, 5),
		Stock:        int(csvutil.ParseNum(cell(row, 6))),
		Memo:         cell(row, 7),
	}
}

func (s *productImportService) Import(ctx context.Context, text string, actor string) (int, error) {
	rows := csvutil.Decode(text)
	if len(rows) < 2 {
		return 0, ErrNoData
	}

	// 1. Layout
	legacy := isLegacyProductHeader(rows[0])
	mapRow := mapCurrentProductRow
	if legacy {
		mapRow = mapLegacyProductRow
	}

	// 2. Payloads; rows without a name are not products
	var products []model.Product
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		p := mapRow(row)
		if validator.Check(&p) != nil {
			continue
		}
		p.CreatedBy = actor
		p.UpdatedBy = actor
		products = append(products, p)
	}
	if len(products) == 0 {
		return 0, ErrNoRows
	}

	// 3. Insert
	if err := s.productRepo.CreateBatch(ctx, products); err != nil {
		return 0, fmt.Errorf("insert products: %w", err)
	}

	s.log.Info("products imported", zap.Int("count", len(products)), zap.Bool("legacy", legacy), zap.String("actor", actor))
	s.notifier.Publish(ws.Event{
		Type:    "import",
		Action:  "products_imported",
		Actor:   actor,
		Message: fmt.Sprintf("%s imported %d products", actor, len(products)),
		Data:    map[string]int{"count": len(products)},
	})
	return len(products), nil
}

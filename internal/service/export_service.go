package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/pkg/csvutil"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParseExportFormat accepts "", "csv" and "xlsx".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService pages through the record store and renders downloads. Every
// export checks ctx between pages and fails with ErrExportCancelled once it is
// done, never returning a partial file.
type ExportService interface {
	ExportProducts(ctx context.Context, filter repository.ProductFilter, format ExportFormat) (*ExportFile, error)
	ExportTransactions(ctx context.Context, filter repository.TransactionFilter, format ExportFormat) (*ExportFile, error)
	ExportInventoryItems(ctx context.Context, filter repository.InventoryItemFilter, format ExportFormat) (*ExportFile, error)
	ExportStockMovement(ctx context.Context, days int, format ExportFormat) (*ExportFile, error)
}

type exportService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	itemRepo    repository.TransactionItemRepository
	invRepo     repository.InventoryItemRepository
	dashboard   DashboardService
	log         *zap.Logger
	pageSize    int
	idChunkSize int
	now         func() time.Time
}

func NewExportService(
	productRepo repository.ProductRepository,
	txRepo repository.TransactionRepository,
	itemRepo repository.TransactionItemRepository,
	invRepo repository.InventoryItemRepository,
	dashboard DashboardService,
	log *zap.Logger,
	pageSize, idChunkSize int,
) ExportService {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &exportService{
		productRepo: productRepo,
		txRepo:      txRepo,
		itemRepo:    itemRepo,
		invRepo:     invRepo,
		dashboard:   dashboard,
		log:         log.Named("export"),
		pageSize:    pageSize,
		idChunkSize: idChunkSize,
		now:         time.Now,
	}
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrExportCancelled, err)
	}
	return nil
}

// paginate calls fetch for successive pages until a short page or total is reached.
func (s *exportService) paginate(ctx context.Context, fetch func(page repository.Page) (int, int64, error)) error {
	for offset := 0; ; offset += s.pageSize {
		if err := cancelled(ctx); err != nil {
			return err
		}
		n, total, err := fetch(repository.Page{Offset: offset, Limit: s.pageSize})
		if err != nil {
			if cerr := cancelled(ctx); cerr != nil {
				return cerr
			}
			return err
		}
		if n < s.pageSize || int64(offset+n) >= total {
			return nil
		}
	}
}

func (s *exportService) ExportProducts(ctx context.Context, filter repository.ProductFilter, format ExportFormat) (*ExportFile, error) {
	rows := [][]string{productExportHeader}
	err := s.paginate(ctx, func(page repository.Page) (int, int64, error) {
		products, total, err := s.productRepo.FindPage(ctx, filter, page)
		for _, p := range products {
			rows = append(rows, []string{
				p.Name, p.ProductCode, p.Barcode,
				p.CostPrice.String(), p.SellingPrice.String(),
				p.Supplier, strconv.Itoa(p.Stock), p.Memo,
			})
		}
		return len(products), total, err
	})
	if err != nil {
		return nil, err
	}
	return s.render("products", rows, format)
}

func (s *exportService) ExportTransactions(ctx context.Context, filter repository.TransactionFilter, format ExportFormat) (*ExportFile, error) {
	rows := [][]string{transactionExportHeader}
	products := make(map[uuid.UUID]model.Product)

	err := s.paginate(ctx, func(page repository.Page) (int, int64, error) {
		txs, total, err := s.txRepo.FindPage(ctx, filter, page)
		if err != nil {
			return 0, 0, err
		}

		ids := make([]uuid.UUID, len(txs))
		for i, tx := range txs {
			ids[i] = tx.ID
		}
		itemsByTx, err := loadItems(ctx, s.itemRepo, ids, s.idChunkSize)
		if err != nil {
			return 0, 0, err
		}
		var productIDs []uuid.UUID
		for _, items := range itemsByTx {
			for _, it := range items {
				productIDs = append(productIDs, it.ProductID)
			}
		}
		if err := loadProducts(ctx, s.productRepo, productIDs, s.idChunkSize, products); err != nil {
			return 0, 0, err
		}

		for _, tx := range txs {
			rows = append(rows, transactionRows(tx, itemsByTx[tx.ID], products)...)
		}
		return len(txs), total, nil
	})
	if err != nil {
		return nil, err
	}
	return s.render("transactions", rows, format)
}

// transactionRows writes the transaction fields on the first line only;
// continuation lines carry product, quantity and price.
func transactionRows(tx model.Transaction, items []model.TransactionItem, products map[uuid.UUID]model.Product) [][]string {
	head := []string{
		formatDate(tx.Date),
		directionLabels[tx.Direction],
		categoryLabels[tx.Category],
		statusLabels[tx.Status],
		"", "", "", "",
		tx.Partner,
		tx.TrackingID,
		tx.OrderCode,
		tx.ShippingCode,
		tx.PurchaseOrderCode,
		formatDatePtr(tx.OrderDate),
		tx.CustomerName,
		tx.OrderID,
		tx.Memo,
	}
	if len(items) == 0 {
		return [][]string{head}
	}

	out := make([][]string, 0, len(items))
	for i, it := range items {
		row := head
		if i > 0 {
			row = make([]string, len(transactionExportHeader))
		}
		p := products[it.ProductID]
		row[4] = p.Name
		row[5] = p.ProductCode
		row[6] = strconv.Itoa(it.Quantity)
		row[7] = it.UnitPrice.String()
		out = append(out, row)
	}
	return out
}

func (s *exportService) ExportInventoryItems(ctx context.Context, filter repository.InventoryItemFilter, format ExportFormat) (*ExportFile, error) {
	rows := [][]string{{"追跡番号", "商品名", "商品コード", "ステータス", "入庫日", "出庫日", "管理番号", "注文コード", "追跡コード", "取引先", "メモ"}}
	products := make(map[uuid.UUID]model.Product)

	err := s.paginate(ctx, func(page repository.Page) (int, int64, error) {
		items, total, err := s.invRepo.FindPage(ctx, filter, page)
		if err != nil {
			return 0, 0, err
		}
		ids := make([]uuid.UUID, len(items))
		for i, it := range items {
			ids[i] = it.ProductID
		}
		if err := loadProducts(ctx, s.productRepo, ids, s.idChunkSize, products); err != nil {
			return 0, 0, err
		}
		for _, it := range items {
			p := products[it.ProductID]
			rows = append(rows, []string{
				it.TrackingNumber, p.Name, p.ProductCode, itemStatusLabels[it.Status],
				formatDate(it.InboundDate), formatDatePtr(it.OutboundDate),
				it.TrackingID, it.OrderCode, it.ShippingCode, it.Partner, it.Memo,
			})
		}
		return len(items), total, nil
	})
	if err != nil {
		return nil, err
	}
	return s.render("inventory_items", rows, format)
}

func (s *exportService) ExportStockMovement(ctx context.Context, days int, format ExportFormat) (*ExportFile, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	data, err := s.dashboard.GetStockMovement(ctx, days)
	if err != nil {
		if cerr := cancelled(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	rows := [][]string{{"日付", "入庫数", "出庫数"}}
	for _, d := range data {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.Inbound), strconv.Itoa(d.Outbound)})
	}
	return s.render("stock_movement", rows, format)
}

func (s *exportService) render(name string, rows [][]string, format ExportFormat) (*ExportFile, error) {
	now := s.now()
	file := &ExportFile{Rows: len(rows) - 1}

	switch format {
	case "", ExportCSV:
		file.Filename = csvutil.Filename(name, now, "csv")
		file.ContentType = csvutil.ContentType
		file.Body = []byte(csvutil.Encode(rows))
	case ExportXLSX:
		body, err := renderXLSX(rows)
		if err != nil {
			return nil, err
		}
		file.Filename = csvutil.Filename(name, now, "xlsx")
		file.ContentType = xlsxContentType
		file.Body = body
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	s.log.Info("export rendered", zap.String("file", file.Filename), zap.Int("rows", file.Rows))
	return file, nil
}

func renderXLSX(rows [][]string) ([]byte, error) {
	const sheet = "Sheet1"
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// IsCancelled reports whether err came from an aborted export.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrExportCancelled)
}

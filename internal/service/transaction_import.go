package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/csvutil"
	"go-inventory-tracker/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ImportFormat string

const (
	FormatCurrent ImportFormat = "current"
	FormatLegacy  ImportFormat = "legacy"
)

// ImportResult is returned when at least one transaction was inserted. A
// non-empty Skipped list makes the import a partial success.
type ImportResult struct {
	Format   ImportFormat `json:"format"`
	Inserted int          `json:"inserted"`
	Skipped  []RowError   `json:"skipped,omitempty"`
}

// Warning summarises skipped lines, or returns "" when nothing was skipped.
func (r *ImportResult) Warning() string {
	if len(r.Skipped) == 0 {
		return ""
	}
	return fmt.Sprintf("%d transactions imported; %d lines skipped: %s", r.Inserted, len(r.Skipped), joinRowErrors(r.Skipped))
}

type TransactionImportService interface {
	// Import rebuilds transactions from CSV text. Rows belonging to one
	// transaction must be contiguous in the file.
	Import(ctx context.Context, text string, actor string) (*ImportResult, error)
}

type transactionImportService struct {
	txRepo      repository.TransactionRepository
	itemRepo    repository.TransactionItemRepository
	productRepo repository.ProductRepository
	ledger      LedgerService
	notifier    Notifier
	log         *zap.Logger
}

func NewTransactionImportService(
	txRepo repository.TransactionRepository,
	itemRepo repository.TransactionItemRepository,
	productRepo repository.ProductRepository,
	ledger LedgerService,
	notifier Notifier,
	log *zap.Logger,
) TransactionImportService {
	return &transactionImportService{
		txRepo:      txRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
		ledger:      ledger,
		notifier:    orNop(notifier),
		log:         log.Named("transaction_import"),
	}
}

// baseContext holds the transaction-level fields of the row that opened it.
type baseContext struct {
	line      int
	date      time.Time
	direction model.Direction
	status    model.TransactionStatus
	category  model.Category
	invalid   string

	trackingID        string
	orderCode         string
	shippingCode      string
	purchaseOrderCode string
	orderDate         *time.Time
	customerName      string
	orderID           string
	partner           string
	memo              string
}

type clusterKey struct {
	date       string
	direction  model.Direction
	status     model.TransactionStatus
	trackingID string
	orderCode  string
}

func (b *baseContext) key() clusterKey {
	return clusterKey{
		date:       formatDate(b.date),
		direction:  b.direction,
		status:     b.status,
		trackingID: b.trackingID,
		orderCode:  b.orderCode,
	}
}

type parsedLine struct {
	line        int
	base        *baseContext
	productName string
	productCode string
	quantity    int64
	unitPrice   int64
}

func (l parsedLine) label() string {
	if l.productName != "" {
		return l.productName
	}
	return l.productCode
}

type cluster struct {
	key   clusterKey
	base  *baseContext
	lines []parsedLine
}

// productIndex resolves free-text product references, case-insensitively.
type productIndex struct {
	byCode map[string]uuid.UUID
	byName map[string]uuid.UUID
}

func newProductIndex(products []model.Product) *productIndex {
	idx := &productIndex{byCode: make(map[string]uuid.UUID), byName: make(map[string]uuid.UUID)}
	for _, p := range products {
		if code := strings.ToLower(strings.TrimSpace(p.ProductCode)); code != "" {
			if _, ok := idx.byCode[code]; !ok {
				idx.byCode[code] = p.ID
			}
		}
		if name := strings.ToLower(strings.TrimSpace(p.Name)); name != "" {
			if _, ok := idx.byName[name]; !ok {
				idx.byName[name] = p.ID
			}
		}
	}
	return idx
}

// resolve tries the code, then the name, then the code as a name.
func (idx *productIndex) resolve(code, name string) (uuid.UUID, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	name = strings.ToLower(strings.TrimSpace(name))
	if code != "" {
		if id, ok := idx.byCode[code]; ok {
			return id, true
		}
	}
	if name != "" {
		if id, ok := idx.byName[name]; ok {
			return id, true
		}
	}
	if code != "" {
		if id, ok := idx.byName[code]; ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (s *transactionImportService) Import(ctx context.Context, text string, actor string) (*ImportResult, error) {
	rows := csvutil.Decode(text)
	if len(rows) < 2 {
		return nil, ErrNoData
	}

	var (
		res *ImportResult
		err error
	)
	if isCurrentTransactionHeader(rows[0]) {
		res, err = s.importCurrent(ctx, rows, actor)
	} else {
		res, err = s.importLegacy(ctx, rows, actor)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("transactions imported",
		zap.String("format", string(res.Format)),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", len(res.Skipped)),
		zap.String("actor", actor))
	s.notifier.Publish(ws.Event{
		Type:    "import",
		Action:  "transactions_imported",
		Actor:   actor,
		Message: fmt.Sprintf("%s imported %d transactions", actor, res.Inserted),
		Data:    res,
	})
	return res, nil
}

func (s *transactionImportService) importCurrent(ctx context.Context, rows [][]string, actor string) (*ImportResult, error) {
	idx := buildHeaderIndex(rows[0])
	res := &ImportResult{Format: FormatCurrent}

	// 1. Walk rows, inheriting the last base context on continuation rows
	var (
		lines []parsedLine
		base  *baseContext
	)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		date := idx.get(row, colDate)
		name := idx.get(row, colProductName)
		code := idx.get(row, colProductCode)
		if date == "" && name == "" && code == "" {
			continue
		}
		if date != "" {
			base = parseBaseRow(idx, row, line)
		}
		if name == "" && code == "" {
			continue
		}
		pl := parsedLine{
			line:        line,
			base:        base,
			productName: name,
			productCode: code,
			quantity:    csvutil.ParseNum(idx.get(row, colQuantity)),
			unitPrice:   csvutil.ParseNum(idx.get(row, colUnitPrice)),
		}
		switch {
		case base == nil:
			res.Skipped = append(res.Skipped, RowError{Line: line, Label: pl.label(), Reason: "no transaction date above this row"})
			continue
		case base.invalid != "":
			res.Skipped = append(res.Skipped, RowError{Line: line, Label: pl.label(), Reason: base.invalid})
			continue
		}
		lines = append(lines, pl)
	}

	// 2. Group consecutive lines sharing a key
	clusters := groupLines(lines)

	// 3. Resolve and insert
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	index := newProductIndex(products)
	unresolved := make(map[string]bool)

	for _, c := range clusters {
		var items []model.TransactionItem
		for _, l := range c.lines {
			productID, ok := index.resolve(l.productCode, l.productName)
			if !ok {
				if label := l.label(); !unresolved[label] {
					unresolved[label] = true
					res.Skipped = append(res.Skipped, RowError{Line: l.line, Label: label, Reason: "product not found"})
				}
				continue
			}
			qty := l.quantity
			if qty <= 0 {
				qty = 1
			}
			items = append(items, model.TransactionItem{
				ProductID: productID,
				Quantity:  int(qty),
				UnitPrice: decimal.NewFromInt(l.unitPrice),
			})
		}
		if len(items) == 0 {
			continue
		}

		tx := c.base.transaction(actor)
		if err := s.insert(ctx, tx, items, actor); err != nil {
			return nil, err
		}
		res.Inserted++
	}

	if res.Inserted == 0 {
		if len(res.Skipped) > 0 {
			return nil, &ImportError{Rows: res.Skipped}
		}
		return nil, ErrNoRows
	}
	return res, nil
}

func parseBaseRow(idx headerIndex, row []string, line int) *baseContext {
	b := &baseContext{
		line:              line,
		trackingID:        idx.get(row, colTrackingID),
		orderCode:         idx.get(row, colOrderCode),
		shippingCode:      idx.get(row, colShippingCode),
		purchaseOrderCode: idx.get(row, colPurchaseOrderCode),
		customerName:      idx.get(row, colCustomerName),
		orderID:           idx.get(row, colOrderID),
		partner:           idx.get(row, colPartner),
		memo:              idx.get(row, colMemo),
	}

	rawDate := idx.get(row, colDate)
	date, ok := parseDate(rawDate)
	if !ok {
		b.invalid = fmt.Sprintf("invalid date %q", rawDate)
	}
	b.date = date

	rawDirection := idx.get(row, colDirection)
	direction, ok := parseDirection(rawDirection)
	if !ok && b.invalid == "" {
		b.invalid = fmt.Sprintf("unknown direction %q", rawDirection)
	}
	b.direction = direction

	b.status = parseStatus(idx.get(row, colStatus))
	b.category = parseCategory(idx.get(row, colCategory), direction)
	if od, ok := parseDate(idx.get(row, colOrderDate)); ok {
		b.orderDate = &od
	}
	return b
}

// groupLines merges runs of adjacent lines with equal keys. Equal keys that
// are not adjacent start separate clusters.
func groupLines(lines []parsedLine) []cluster {
	var clusters []cluster
	for _, l := range lines {
		k := l.base.key()
		if n := len(clusters); n > 0 && clusters[n-1].key == k {
			clusters[n-1].lines = append(clusters[n-1].lines, l)
			continue
		}
		clusters = append(clusters, cluster{key: k, base: l.base, lines: []parsedLine{l}})
	}
	return clusters
}

func (b *baseContext) transaction(actor string) *model.Transaction {
	tx := &model.Transaction{
		Direction:         b.direction,
		Status:            b.status,
		Category:          b.category,
		Date:              b.date,
		TrackingID:        b.trackingID,
		OrderCode:         b.orderCode,
		ShippingCode:      b.shippingCode,
		PurchaseOrderCode: b.purchaseOrderCode,
		OrderDate:         b.orderDate,
		CustomerName:      b.customerName,
		OrderID:           b.orderID,
		Partner:           b.partner,
		Memo:              b.memo,
	}
	tx.CreatedBy = actor
	tx.UpdatedBy = actor
	return tx
}

// insert writes one transaction and, if it arrives completed, applies its
// ledger effects so stock matches completed lines.
func (s *transactionImportService) insert(ctx context.Context, tx *model.Transaction, items []model.TransactionItem, actor string) error {
	if err := validator.Check(tx); err != nil {
		return err
	}
	if err := insertTransaction(ctx, s.txRepo, s.itemRepo, tx, items); err != nil {
		return err
	}
	if tx.Status == model.StatusCompleted {
		if _, err := s.ledger.Apply(ctx, tx, tx.Items, actor); err != nil {
			return fmt.Errorf("apply imported transaction: %w", err)
		}
	}
	return nil
}

// Legacy layout, fully positional:
// type, status, category, date, tracking, order_code, shipping_code, partner, amount, memo
func (s *transactionImportService) importLegacy(ctx context.Context, rows [][]string, actor string) (*ImportResult, error) {
	res := &ImportResult{Format: FormatLegacy}

	start := 0
	if _, ok := parseDirection(cell(rows[0], 0)); !ok {
		start = 1
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		if isBlankRow(row) {
			continue
		}

		direction, ok := parseDirection(cell(row, 0))
		if !ok {
			res.Skipped = append(res.Skipped, RowError{Line: line, Label: cell(row, 0), Reason: "unknown direction"})
			continue
		}
		date, ok := parseDate(cell(row, 3))
		if !ok {
			res.Skipped = append(res.Skipped, RowError{Line: line, Label: cell(row, 3), Reason: "invalid date"})
			continue
		}

		tx := &model.Transaction{
			Direction:    direction,
			Status:       parseStatus(cell(row, 1)),
			Category:     parseCategory(cell(row, 2), direction),
			Date:         date,
			TrackingID:   cell(row, 4),
			OrderCode:    cell(row, 5),
			ShippingCode: cell(row, 6),
			Partner:      cell(row, 7),
			// Legacy rows carry no lines; the amount column is kept as recorded.
			TotalAmount: decimal.NewFromInt(csvutil.ParseNum(cell(row, 8))),
			Memo:        cell(row, 9),
		}
		tx.CreatedBy = actor
		tx.UpdatedBy = actor
		if err := validator.Check(tx); err != nil {
			return nil, err
		}
		if err := s.txRepo.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		res.Inserted++
	}

	if res.Inserted == 0 {
		if len(res.Skipped) > 0 {
			return nil, &ImportError{Rows: res.Skipped}
		}
		return nil, ErrNoRows
	}
	return res, nil
}

package service

import (
	"context"
	"fmt"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService applies and reverses the stock and tracked-item effects of a
// transaction changing status.
//
// Reconciliation is best effort, not transactional: a line whose product stock
// cannot be read or written is skipped and reported in ReconcileResult.Skipped,
// while failures writing inventory items are returned to the caller.
type LedgerService interface {
	Apply(ctx context.Context, tx *model.Transaction, items []model.TransactionItem, actor string) (*ReconcileResult, error)
	Reverse(ctx context.Context, tx *model.Transaction, items []model.TransactionItem, actor string) (*ReconcileResult, error)
}

type StockChange struct {
	ProductID uuid.UUID `json:"product_id"`
	Before    int       `json:"before"`
	After     int       `json:"after"`
}

type SkippedLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
}

// Shortfall records an outbound line that found fewer IN_STOCK items than requested.
type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Shipped   int       `json:"shipped"`
}

type ReconcileResult struct {
	StockChanges  []StockChange `json:"stock_changes"`
	Skipped       []SkippedLine `json:"skipped,omitempty"`
	Shortfalls    []Shortfall   `json:"shortfalls,omitempty"`
	ItemsCreated  int           `json:"items_created"`
	ItemsShipped  int           `json:"items_shipped"`
	ItemsDeleted  int64         `json:"items_deleted"`
	ItemsRestored int64         `json:"items_restored"`
}

// Complete reports whether every line's stock update went through.
func (r *ReconcileResult) Complete() bool {
	return len(r.Skipped) == 0
}

type ledgerService struct {
	productRepo repository.ProductRepository
	itemRepo    repository.InventoryItemRepository
	log         *zap.Logger
}

func NewLedgerService(pRepo repository.ProductRepository, iRepo repository.InventoryItemRepository, log *zap.Logger) LedgerService {
	return &ledgerService{
		productRepo: pRepo,
		itemRepo:    iRepo,
		log:         log.Named("ledger"),
	}
}

func (s *ledgerService) Apply(ctx context.Context, tx *model.Transaction, items []model.TransactionItem, actor string) (*ReconcileResult, error) {
	res := &ReconcileResult{}

	// 1. Stock counters, unclamped
	for _, it := range items {
		delta := it.Quantity
		if tx.Direction == model.TxOut {
			delta = -delta
		}
		s.adjustStock(ctx, it, delta, false, actor, res)
	}

	// 2. Tracked items
	switch tx.Direction {
	case model.TxIn:
		created := buildReceivedItems(tx, items, actor)
		if err := s.itemRepo.CreateBatch(ctx, created); err != nil {
			return res, fmt.Errorf("create inventory items: %w", err)
		}
		res.ItemsCreated = len(created)

	case model.TxOut:
		for _, it := range items {
			if it.Quantity <= 0 {
				continue
			}
			available, err := s.itemRepo.FindInStockFIFO(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return res, fmt.Errorf("select items to ship: %w", err)
			}
			if len(available) < it.Quantity {
				res.Shortfalls = append(res.Shortfalls, Shortfall{ProductID: it.ProductID, Requested: it.Quantity, Shipped: len(available)})
				s.log.Warn("not enough tracked items in stock",
					zap.String("transaction_id", tx.ID.String()),
					zap.String("product_id", it.ProductID.String()),
					zap.Int("requested", it.Quantity),
					zap.Int("available", len(available)))
			}

			ids := make([]uuid.UUID, len(available))
			for i, item := range available {
				ids[i] = item.ID
			}
			err = s.itemRepo.MarkShipped(ctx, ids, repository.Shipment{
				TransactionID: tx.ID,
				Date:          tx.Date,
				ShippingCode:  tx.ShippingCode,
				OrderCode:     tx.OrderCode,
				UpdatedBy:     actor,
			})
			if err != nil {
				return res, fmt.Errorf("mark items shipped: %w", err)
			}
			res.ItemsShipped += len(ids)
		}
	}

	s.log.Info("transaction applied",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("direction", string(tx.Direction)),
		zap.Int("lines", len(items)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (s *ledgerService) Reverse(ctx context.Context, tx *model.Transaction, items []model.TransactionItem, actor string) (*ReconcileResult, error) {
	res := &ReconcileResult{}

	// 1. Mirror-image stock delta, never below zero
	for _, it := range items {
		delta := -it.Quantity
		if tx.Direction == model.TxOut {
			delta = it.Quantity
		}
		s.adjustStock(ctx, it, delta, true, actor, res)
	}

	// 2. Tracked items
	switch tx.Direction {
	case model.TxIn:
		n, err := s.itemRepo.DeleteByInboundTransaction(ctx, tx.ID)
		if err != nil {
			return res, fmt.Errorf("delete received items: %w", err)
		}
		res.ItemsDeleted = n

	case model.TxOut:
		n, err := s.itemRepo.RestoreByOutboundTransaction(ctx, tx.ID, actor)
		if err != nil {
			return res, fmt.Errorf("restore shipped items: %w", err)
		}
		res.ItemsRestored = n
	}

	s.log.Info("transaction reversed",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("direction", string(tx.Direction)),
		zap.Int("lines", len(items)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (s *ledgerService) adjustStock(ctx context.Context, it model.TransactionItem, delta int, clampAtZero bool, actor string, res *ReconcileResult) {
	product, err := s.productRepo.FindByID(ctx, it.ProductID)
	if err != nil {
		s.skip(res, it, "read stock", err)
		return
	}

	newStock := product.Stock + delta
	if clampAtZero && newStock < 0 {
		newStock = 0
	}
	if err := s.productRepo.UpdateStock(ctx, product.ID, newStock, actor); err != nil {
		s.skip(res, it, "write stock", err)
		return
	}
	res.StockChanges = append(res.StockChanges, StockChange{ProductID: product.ID, Before: product.Stock, After: newStock})
}

func (s *ledgerService) skip(res *ReconcileResult, it model.TransactionItem, step string, err error) {
	res.Skipped = append(res.Skipped, SkippedLine{
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Reason:    fmt.Sprintf("%s: %v", step, err),
	})
	s.log.Warn("stock update skipped",
		zap.String("product_id", it.ProductID.String()),
		zap.String("step", step),
		zap.Error(err))
}

// buildReceivedItems fans each inbound line out into one IN_STOCK item per unit.
func buildReceivedItems(tx *model.Transaction, items []model.TransactionItem, actor string) []model.InventoryItem {
	txID := tx.ID
	var out []model.InventoryItem
	seq := 0
	for _, it := range items {
		for n := 0; n < it.Quantity; n++ {
			seq++
			trackingNumber := tx.TrackingID
			if trackingNumber == "" {
				trackingNumber = model.SynthesizeTrackingNumber(tx.ID, seq)
			}
			item := model.InventoryItem{
				ProductID:            it.ProductID,
				TrackingNumber:       trackingNumber,
				TrackingID:           tx.TrackingID,
				OrderCode:            tx.OrderCode,
				ShippingCode:         tx.ShippingCode,
				Status:               model.ItemInStock,
				InboundTransactionID: &txID,
				InboundDate:          model.DateOnly(tx.Date),
				Partner:              tx.Partner,
			}
			item.CreatedBy = actor
			item.UpdatedBy = actor
			out = append(out, item)
		}
	}
	return out
}

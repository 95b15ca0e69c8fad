package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionService interface {
	Create(ctx context.Context, req *model.Transaction, actor string) (*model.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, req *model.Transaction, actor string) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus, actor string) (*StatusChange, error)
	Duplicate(ctx context.Context, id uuid.UUID, actor string) (*model.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]model.Transaction, int64, error)
}

// StatusChange reports a status transition and, when one ran, its reconciliation.
type StatusChange struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	From          model.TransactionStatus `json:"from"`
	To            model.TransactionStatus `json:"to"`
	Changed       bool                    `json:"changed"`
	Ledger        *ReconcileResult        `json:"ledger,omitempty"`
}

type transactionService struct {
	txRepo      repository.TransactionRepository
	itemRepo    repository.TransactionItemRepository
	productRepo repository.ProductRepository
	ledger      LedgerService
	notifier    Notifier
	log         *zap.Logger
	idChunkSize int
	now         func() time.Time
}

func NewTransactionService(
	txRepo repository.TransactionRepository,
	itemRepo repository.TransactionItemRepository,
	productRepo repository.ProductRepository,
	ledger LedgerService,
	notifier Notifier,
	log *zap.Logger,
	idChunkSize int,
) TransactionService {
	return &transactionService{
		txRepo:      txRepo,
		itemRepo:    itemRepo,
		productRepo: productRepo,
		ledger:      ledger,
		notifier:    orNop(notifier),
		log:         log.Named("transactions"),
		idChunkSize: idChunkSize,
		now:         time.Now,
	}
}

// insertTransaction writes the transaction row, then its items tied to the new ID.
// The two writes are not atomic: a failed item insert leaves the row behind.
func insertTransaction(ctx context.Context, txRepo repository.TransactionRepository, itemRepo repository.TransactionItemRepository, tx *model.Transaction, items []model.TransactionItem) error {
	tx.Items = nil
	tx.TotalAmount = model.SumItems(items)
	if err := txRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for i := range items {
		items[i].ID = uuid.Nil
		items[i].TransactionID = tx.ID
		items[i].LineNo = i + 1
		items[i].Product = nil
		items[i].CreatedBy = tx.CreatedBy
		items[i].UpdatedBy = tx.UpdatedBy
	}
	if err := itemRepo.CreateBatch(ctx, items); err != nil {
		return fmt.Errorf("insert transaction items: %w", err)
	}
	tx.Items = items
	return nil
}

func (s *transactionService) normalize(req *model.Transaction) {
	if req.Date.IsZero() {
		req.Date = s.now()
	}
	req.Date = model.DateOnly(req.Date)
	if req.OrderDate != nil {
		d := model.DateOnly(*req.OrderDate)
		req.OrderDate = &d
	}
	if req.Category == "" || !req.Category.Allows(req.Direction) {
		req.Category = model.DefaultCategory(req.Direction)
	}
}

// checkProducts verifies every item references an existing product.
func (s *transactionService) checkProducts(ctx context.Context, items []model.TransactionItem) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	found := make(map[uuid.UUID]model.Product)
	if err := loadProducts(ctx, s.productRepo, ids, s.idChunkSize, found); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}
	return nil
}

func (s *transactionService) Create(ctx context.Context, req *model.Transaction, actor string) (*model.Transaction, error) {
	// 1. New transactions always start scheduled
	req.Status = model.StatusScheduled
	s.normalize(req)
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	items := append([]model.TransactionItem(nil), req.Items...)
	if err := s.checkProducts(ctx, items); err != nil {
		return nil, err
	}

	// 2. Row, then items
	req.ID = uuid.Nil
	req.CreatedBy = actor
	req.UpdatedBy = actor
	if err := insertTransaction(ctx, s.txRepo, s.itemRepo, req, items); err != nil {
		return nil, err
	}

	s.log.Info("transaction created", zap.String("transaction_id", req.ID.String()), zap.Int("items", len(items)))
	s.notifier.Publish(ws.Event{
		Type:    "transaction",
		Action:  "transaction_created",
		Actor:   actor,
		Message: fmt.Sprintf("%s scheduled a %s transaction", actor, req.Direction),
		Data:    map[string]interface{}{"id": req.ID, "direction": req.Direction, "total_amount": req.TotalAmount},
	})
	return req, nil
}

func (s *transactionService) Update(ctx context.Context, id uuid.UUID, req *model.Transaction, actor string) (*model.Transaction, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Status = existing.Status
	s.normalize(req)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	items := append([]model.TransactionItem(nil), req.Items...)
	if err := s.checkProducts(ctx, items); err != nil {
		return nil, err
	}

	// 1. A completed transaction's effects are taken back before its lines change
	completed := existing.Status == model.StatusCompleted
	if completed {
		if _, err := s.ledger.Reverse(ctx, existing, existing.Items, actor); err != nil {
			return nil, err
		}
	}

	// 2. Replace fields and lines wholesale
	existing.Direction = req.Direction
	existing.Category = req.Category
	existing.Date = req.Date
	existing.TrackingID = req.TrackingID
	existing.OrderCode = req.OrderCode
	existing.ShippingCode = req.ShippingCode
	existing.PurchaseOrderCode = req.PurchaseOrderCode
	existing.OrderDate = req.OrderDate
	existing.CustomerName = req.CustomerName
	existing.OrderID = req.OrderID
	existing.Partner = req.Partner
	existing.Memo = req.Memo
	existing.TotalAmount = model.SumItems(items)
	existing.UpdatedBy = actor
	existing.Items = nil

	if err := s.txRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := s.itemRepo.DeleteByTransactionID(ctx, id); err != nil {
		return nil, fmt.Errorf("delete transaction items: %w", err)
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].TransactionID = id
		items[i].LineNo = i + 1
		items[i].Product = nil
		items[i].CreatedBy = actor
		items[i].UpdatedBy = actor
	}
	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("insert transaction items: %w", err)
	}
	existing.Items = items

	// 3. Re-apply with the new lines
	if completed {
		if _, err := s.ledger.Apply(ctx, existing, items, actor); err != nil {
			return nil, err
		}
	}

	return existing, nil
}

func (s *transactionService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus, actor string) (*StatusChange, error) {
	if status != model.StatusScheduled && status != model.StatusCompleted {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	tx, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	change := &StatusChange{TransactionID: id, From: tx.Status, To: status}
	if tx.Status == status {
		return change, nil
	}

	// 1. Reconcile
	if status == model.StatusCompleted {
		change.Ledger, err = s.ledger.Apply(ctx, tx, tx.Items, actor)
	} else {
		change.Ledger, err = s.ledger.Reverse(ctx, tx, tx.Items, actor)
	}
	if err != nil {
		return nil, err
	}

	// 2. Persist the new status
	if err := s.txRepo.UpdateStatus(ctx, id, status, actor); err != nil {
		return nil, fmt.Errorf("update transaction status: %w", err)
	}
	change.Changed = true

	s.log.Info("transaction status changed",
		zap.String("transaction_id", id.String()),
		zap.String("from", string(change.From)),
		zap.String("to", string(status)))
	s.notifier.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "transaction_" + string(status),
		Actor:   actor,
		Message: fmt.Sprintf("%s marked a %s transaction %s", actor, tx.Direction, status),
		Data:    change,
	})
	return change, nil
}

func (s *transactionService) Duplicate(ctx context.Context, id uuid.UUID, actor string) (*model.Transaction, error) {
	src, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	dup := &model.Transaction{
		Direction: src.Direction,
		Status:    model.StatusScheduled,
		Category:  src.Category,
		Date:      model.DateOnly(s.now()),
		Partner:   src.Partner,
		Memo:      src.Memo,
	}
	dup.CreatedBy = actor
	dup.UpdatedBy = actor

	items := make([]model.TransactionItem, len(src.Items))
	for i, it := range src.Items {
		items[i] = model.TransactionItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	if err := insertTransaction(ctx, s.txRepo, s.itemRepo, dup, items); err != nil {
		return nil, err
	}
	return dup, nil
}

func (s *transactionService) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	tx, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if tx.Status == model.StatusCompleted {
		if _, err := s.ledger.Reverse(ctx, tx, tx.Items, actor); err != nil {
			return err
		}
	}
	if err := s.itemRepo.DeleteByTransactionID(ctx, id); err != nil {
		return fmt.Errorf("delete transaction items: %w", err)
	}
	if err := s.txRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.log.Info("transaction deleted", zap.String("transaction_id", id.String()), zap.String("actor", actor))
	return nil
}

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.load(ctx, id)
}

func (s *transactionService) List(ctx context.Context, filter repository.TransactionFilter, page repository.Page) ([]model.Transaction, int64, error) {
	return s.txRepo.FindPage(ctx, filter, page)
}

func (s *transactionService) load(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

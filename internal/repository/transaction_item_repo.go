package repository

import (
	"context"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionItemRepository interface {
	CreateBatch(ctx context.Context, items []model.TransactionItem) error
	FindByTransactionID(ctx context.Context, txID uuid.UUID) ([]model.TransactionItem, error)
	FindByTransactionIDs(ctx context.Context, txIDs []uuid.UUID) ([]model.TransactionItem, error)
	DeleteByTransactionID(ctx context.Context, txID uuid.UUID) error
}

type transactionItemRepo struct {
	db *gorm.DB
}

func NewTransactionItemRepo(db *gorm.DB) TransactionItemRepository {
	return &transactionItemRepo{db}
}

func (r *transactionItemRepo) CreateBatch(ctx context.Context, items []model.TransactionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").CreateInBatches(&items, 200).Error
}

func (r *transactionItemRepo) FindByTransactionID(ctx context.Context, txID uuid.UUID) ([]model.TransactionItem, error) {
	var items []model.TransactionItem
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", txID).
		Order("line_no ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *transactionItemRepo) FindByTransactionIDs(ctx context.Context, txIDs []uuid.UUID) ([]model.TransactionItem, error) {
	var items []model.TransactionItem
	if len(txIDs) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("transaction_id IN ?", txIDs).
		Order("line_no ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *transactionItemRepo) DeleteByTransactionID(ctx context.Context, txID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("transaction_id = ?", txID).Delete(&model.TransactionItem{}).Error
}

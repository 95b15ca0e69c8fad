package repository

import (
	"context"
	"time"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryItemFilter struct {
	ProductID *uuid.UUID
	Status    model.ItemStatus
	// TrackingNumber matches exactly.
	TrackingNumber string
}

// Shipment stamps the outbound side of items leaving stock.
type Shipment struct {
	TransactionID uuid.UUID
	Date          time.Time
	ShippingCode  string
	OrderCode     string
	UpdatedBy     string
}

type InventoryItemRepository interface {
	CreateBatch(ctx context.Context, items []model.InventoryItem) error
	FindPage(ctx context.Context, filter InventoryItemFilter, page Page) ([]model.InventoryItem, int64, error)
	// FindInStockFIFO returns up to limit IN_STOCK items of a product, oldest inbound date first.
	FindInStockFIFO(ctx context.Context, productID uuid.UUID, limit int) ([]model.InventoryItem, error)
	MarkShipped(ctx context.Context, ids []uuid.UUID, shipment Shipment) error
	DeleteByInboundTransaction(ctx context.Context, txID uuid.UUID) (int64, error)
	RestoreByOutboundTransaction(ctx context.Context, txID uuid.UUID, updatedBy string) (int64, error)
	CountByTransaction(ctx context.Context, txID uuid.UUID) (int64, error)
}

type inventoryItemRepo struct {
	db *gorm.DB
}

func NewInventoryItemRepo(db *gorm.DB) InventoryItemRepository {
	return &inventoryItemRepo{db}
}

func (r *inventoryItemRepo) CreateBatch(ctx context.Context, items []model.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").CreateInBatches(&items, 500).Error
}

func (r *inventoryItemRepo) FindPage(ctx context.Context, filter InventoryItemFilter, page Page) ([]model.InventoryItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TrackingNumber != "" {
		q = q.Where("tracking_number = ?", filter.TrackingNumber)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.InventoryItem
	err := page.apply(q.Order("inbound_date ASC, tracking_number ASC, id ASC")).Find(&items).Error
	return items, total, err
}

func (r *inventoryItemRepo) FindInStockFIFO(ctx context.Context, productID uuid.UUID, limit int) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if limit <= 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, model.ItemInStock).
		Order("inbound_date ASC, created_at ASC, tracking_number ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *inventoryItemRepo) MarkShipped(ctx context.Context, ids []uuid.UUID, shipment Shipment) error {
	if len(ids) == 0 {
		return nil
	}
	txID := shipment.TransactionID
	date := model.DateOnly(shipment.Date)
	return r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":                  model.ItemShipped,
			"outbound_transaction_id": &txID,
			"outbound_date":           &date,
			"shipping_code":           shipment.ShippingCode,
			"order_code":              shipment.OrderCode,
			"updated_by":              shipment.UpdatedBy,
		}).Error
}

func (r *inventoryItemRepo) DeleteByInboundTransaction(ctx context.Context, txID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("inbound_transaction_id = ?", txID).Delete(&model.InventoryItem{})
	return res.RowsAffected, res.Error
}

// RestoreByOutboundTransaction puts every item shipped by txID back in stock.
func (r *inventoryItemRepo) RestoreByOutboundTransaction(ctx context.Context, txID uuid.UUID, updatedBy string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("outbound_transaction_id = ?", txID).
		Updates(map[string]interface{}{
			"status":                  model.ItemInStock,
			"outbound_transaction_id": nil,
			"outbound_date":           nil,
			"shipping_code":           "",
			"updated_by":              updatedBy,
		})
	return res.RowsAffected, res.Error
}

// CountByTransaction counts items received or shipped by txID.
func (r *inventoryItemRepo) CountByTransaction(ctx context.Context, txID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).
		Where("inbound_transaction_id = ? OR outbound_transaction_id = ?", txID, txID).
		Count(&n).Error
	return n, err
}

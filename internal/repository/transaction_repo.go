package repository

import (
	"context"
	"strings"
	"time"

	"go-inventory-tracker/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionFilter struct {
	Direction model.Direction
	Status    model.TransactionStatus
	From      *time.Time
	To        *time.Time
	// Partner matches as a case-insensitive substring.
	Partner string
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindPage(ctx context.Context, filter TransactionFilter, page Page) ([]model.Transaction, int64, error)
	Update(ctx context.Context, tx *model.Transaction) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData is one day of completed unit movement.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts      int64           `json:"total_products"`
	LowStockCount      int64           `json:"low_stock_count"`
	NegativeStockCount int64           `json:"negative_stock_count"`
	TotalValuation     decimal.Decimal `json:"total_valuation"`
	ScheduledCount     int64           `json:"scheduled_count"`
	InStockItems       int64           `json:"in_stock_items"`
}

// LowStockThreshold is the stock level at or below which a product counts as low.
const LowStockThreshold = 10

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create inserts the transaction row only; line items are written separately.
func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Omit("Items").Create(tx).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC, id ASC") }).
		Preload("Items.Product").
		First(&tx, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tx, nil
}

func (r *transactionRepo) FindPage(ctx context.Context, filter TransactionFilter, page Page) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.Direction != "" {
		q = q.Where("direction = ?", filter.Direction)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if p := strings.TrimSpace(filter.Partner); p != "" {
		q = q.Where("LOWER(partner) LIKE ?", "%"+strings.ToLower(p)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []model.Transaction
	err := page.apply(q.Order("date DESC, created_at DESC, id ASC")).Find(&txs).Error
	return txs, total, err
}

func (r *transactionRepo) Update(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Omit("Items").Save(tx).Error
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TransactionStatus, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStockMovement sums completed line-item quantities per day, joining items to
// their transactions.
func (r *transactionRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.WithContext(ctx).Model(&model.TransactionItem{}).
		Select(`
			DATE(transactions.date) as day,
			COALESCE(SUM(CASE WHEN transactions.direction = 'IN' THEN transaction_items.quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN transactions.direction = 'OUT' THEN transaction_items.quantity ELSE 0 END), 0) as outbound
		`).
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.status = ?", model.StatusCompleted).
		Where("transactions.date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(transactions.date)").
		Order("day ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *transactionRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock <= ?", LowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < 0").Count(&stats.NegativeStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Transaction{}).Where("status = ?", model.StatusScheduled).Count(&stats.ScheduledCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.InventoryItem{}).Where("status = ?", model.ItemInStock).Count(&stats.InStockItems).Error; err != nil {
		return nil, err
	}

	// Valuation at cost for positive stock only.
	var products []model.Product
	if err := db.Select("stock", "cost_price").Where("stock > 0").Find(&products).Error; err != nil {
		return nil, err
	}
	stats.TotalValuation = decimal.Zero
	for _, p := range products {
		stats.TotalValuation = stats.TotalValuation.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))))
	}

	return &stats, nil
}

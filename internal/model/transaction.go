package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Direction string

const (
	TxIn  Direction = "IN"
	TxOut Direction = "OUT"
)

type TransactionStatus string

const (
	StatusScheduled TransactionStatus = "SCHEDULED"
	StatusCompleted TransactionStatus = "COMPLETED"
)

type Category string

const (
	CategoryRestock Category = "RESTOCK"
	CategoryReturn  Category = "RETURN"
	CategoryAudit   Category = "AUDIT"
	CategoryShip    Category = "SHIP"
	CategoryResend  Category = "RESEND"
)

// DefaultCategory is used when an import row or request leaves category blank.
func DefaultCategory(d Direction) Category {
	if d == TxOut {
		return CategoryShip
	}
	return CategoryRestock
}

// Allows reports whether c is a valid category for direction d.
func (c Category) Allows(d Direction) bool {
	switch c {
	case CategoryAudit:
		return true
	case CategoryRestock, CategoryReturn:
		return d == TxIn
	case CategoryShip, CategoryResend:
		return d == TxOut
	}
	return false
}

type Transaction struct {
	BaseModel
	Direction Direction         `gorm:"type:varchar(10);not null;index" json:"direction" validate:"required,direction"`
	Status    TransactionStatus `gorm:"type:varchar(20);not null;index" json:"status" validate:"required,tx_status"`
	Category  Category          `gorm:"type:varchar(20);not null" json:"category" validate:"required"`
	Date      time.Time         `gorm:"type:date;not null;index" json:"date" validate:"required"`

	// Three identifier slots: internal management number, order code, carrier tracking code.
	TrackingID   string `gorm:"type:varchar(255);index" json:"tracking_id"`
	OrderCode    string `gorm:"type:varchar(255)" json:"order_code"`
	ShippingCode string `gorm:"type:varchar(255)" json:"shipping_code"`

	PurchaseOrderCode string     `gorm:"type:varchar(255)" json:"purchase_order_code"`
	OrderDate         *time.Time `gorm:"type:date" json:"order_date,omitempty"`
	CustomerName      string     `gorm:"type:varchar(255)" json:"customer_name"`
	OrderID           string     `gorm:"type:varchar(255)" json:"order_id"`

	// Partner is the supplier for IN and the customer for OUT.
	Partner     string          `gorm:"type:varchar(255)" json:"partner"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"total_amount"`
	Memo        string          `gorm:"type:text" json:"memo"`

	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty" validate:"dive"`
}

type TransactionItem struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	LineNo        int             `gorm:"not null;default:0" json:"line_no"`
	Quantity      int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"unit_price"`
}

func (i TransactionItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems is the total_amount a transaction with these items must carry.
func SumItems(items []TransactionItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

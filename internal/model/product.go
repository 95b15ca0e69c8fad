package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	ProductCode  string          `gorm:"type:varchar(100);index" json:"product_code"`
	Barcode      string          `gorm:"type:varchar(100)" json:"barcode"`
	ImageURL     string          `gorm:"type:text" json:"image_url"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"selling_price"`
	// UnitPrice is the default price offered when the product is added to a transaction.
	UnitPrice decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"unit_price"`
	Supplier  string          `gorm:"type:varchar(255)" json:"supplier"`
	// Stock is a cached counter; it may go negative when shipments outrun receipts.
	Stock int    `gorm:"default:0" json:"stock"`
	Memo  string `gorm:"type:text" json:"memo"`
}

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ItemStatus string

const (
	ItemInStock ItemStatus = "IN_STOCK"
	ItemShipped ItemStatus = "SHIPPED"
)

// InventoryItem tracks one physical unit (or one tracking-number batch) from
// receipt to shipment. An item is SHIPPED exactly when OutboundTransactionID
// and OutboundDate are set.
type InventoryItem struct {
	BaseModel
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product        *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	TrackingNumber string     `gorm:"type:varchar(255);not null;index" json:"tracking_number" validate:"required"`
	TrackingID     string     `gorm:"type:varchar(255)" json:"tracking_id"`
	OrderCode      string     `gorm:"type:varchar(255)" json:"order_code"`
	ShippingCode   string     `gorm:"type:varchar(255)" json:"shipping_code"`
	Status         ItemStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	InboundTransactionID  *uuid.UUID `gorm:"type:uuid;index" json:"inbound_transaction_id"`
	OutboundTransactionID *uuid.UUID `gorm:"type:uuid;index" json:"outbound_transaction_id"`
	InboundDate           time.Time  `gorm:"type:date;index" json:"inbound_date"`
	OutboundDate          *time.Time `gorm:"type:date" json:"outbound_date"`

	Partner string `gorm:"type:varchar(255)" json:"partner"`
	Memo    string `gorm:"type:text" json:"memo"`
}

// SynthesizeTrackingNumber names the seq-th unit received by a transaction that
// carries no identifier of its own. Transactions sharing an 8-character ID
// prefix produce colliding numbers.
func SynthesizeTrackingNumber(txID uuid.UUID, seq int) string {
	return fmt.Sprintf("%s-%d", txID.String()[:8], seq)
}

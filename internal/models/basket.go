package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Basket holds a client's pending items before they are turned into a
// draft invoice. One basket per client, created on first use.
//
// Unlike invoice items, basket items keep a live reference to their
// service: the snapshot of name, price and VAT rate is only taken when
// the basket is invoiced.
type Basket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientID uint `gorm:"uniqueIndex;not null" json:"client_id"`

	Items []BasketItem `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE" json:"items"`
}

// ItemForService returns the basket item referencing the given service,
// or nil.
func (b *Basket) ItemForService(serviceID uint) *BasketItem {
	for idx := range b.Items {
		if b.Items[idx].ServiceID == serviceID {
			return &b.Items[idx]
		}
	}
	return nil
}

// BasketItem is a pending quantity of a service in a client's basket.
type BasketItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BasketID  uint            `gorm:"index;not null" json:"basket_id"`
	ServiceID uint            `gorm:"index;not null" json:"service_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`
}

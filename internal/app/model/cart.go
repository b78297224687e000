package model

import (
	"time"
)

type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID" json:"-"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one raw line row. Adding the same product twice inserts a
// second row; rows are only merged at read time by the aggregator.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cart_id"`
	ProductID string    `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Metadata  *string   `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartWithCount is a cart row annotated with its aggregated item count,
// used by the list-carts query.
type CartWithCount struct {
	Cart
	ItemCount int64 `json:"item_count"`
}

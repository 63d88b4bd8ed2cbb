package sandbox

import "time"

// サンドボックス用のDBモデル。
// 本番バックエンドの代わりに開発・デモでAPI全面を提供するためのもの。

type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Address      string
	Phone        string
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
}

type Product struct {
	ID       string `gorm:"type:varchar(36);primaryKey"`
	Name     string `gorm:"not null"`
	Price    int64  `gorm:"not null"`
	Image    string
	IsActive bool `gorm:"not null;default:true"`
}

type CartItem struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	UserID            string `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_cart_user_product"`
	ProductID         string `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	Quantity          int64  `gorm:"not null"`
	UnitPriceSnapshot int64  `gorm:"not null;column:unit_price_snapshot"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Order struct {
	ID              string `gorm:"type:varchar(36);primaryKey"`
	UserID          string `gorm:"type:varchar(36);not null;index"`
	TotalAmount     int64  `gorm:"not null"`
	Currency        string `gorm:"type:varchar(8);not null"`
	PaymentStatus   string `gorm:"type:varchar(20);not null;index"`
	PaymentID       string
	DeliveryAddress string    `gorm:"not null"`
	DeliveryPhone   string    `gorm:"not null"`
	IdempotencyKey  string    `gorm:"type:varchar(255);index"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime"`
}

type OrderItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"type:varchar(36);not null;index"`
	ProductID string `gorm:"type:varchar(36);not null"`
	Name      string `gorm:"not null"`
	Price     int64  `gorm:"not null"`
	Quantity  int64  `gorm:"not null"`
	Image     string
}

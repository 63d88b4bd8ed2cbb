package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// 配送先。注文作成前に必ず揃っていること。
type DeliveryInfo struct {
	Address string `json:"deliveryAddress"`
	Phone   string `json:"deliveryPhone"`
}

// 注文明細。作成時点の価格スナップショット。
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"qty"`
	Image     string `json:"image,omitempty"`
}

// 確定済み注文。paymentStatusは検証ステップで一度だけ変わる。
// totalAmountは作成時点の明細価格×数量の合計で、以後のカタログ価格変更の影響を受けない。
type Order struct {
	ID              string        `json:"id"`
	Items           []OrderItem   `json:"items"`
	TotalAmount     int64         `json:"totalAmount"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	DeliveryAddress string        `json:"deliveryAddress"`
	DeliveryPhone   string        `json:"deliveryPhone"`
	CreatedAt       time.Time     `json:"createdAt"`
}

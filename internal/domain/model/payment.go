package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

// バックエンドが作る支払い待ちの注文。
// 検証するか破棄するかのどちらか。1回のチェックアウトで同時に2つ作らない。
type PendingOrder struct {
	OrderID   string    `json:"orderId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// 支払い証明。形はストラテジー共通。
// 暗号学的に意味があるのは本物のゲートウェイ経由のみ。
type PaymentProof struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

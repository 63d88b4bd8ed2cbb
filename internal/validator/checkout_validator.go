package validator

import (
	"errors"
	"strings"

	"ecobasket/internal/domain/model"
)

var (
	// 配送先の住所か電話番号が空
	ErrMissingDeliveryFields = errors.New("delivery address and phone are required")

	// カートが空
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidateDelivery は配送先を検証する。
// 注文作成前に同期的に実行する唯一のゲート（ネットワーク呼び出しはしない）。
func ValidateDelivery(d model.DeliveryInfo) error {
	if strings.TrimSpace(d.Address) == "" || strings.TrimSpace(d.Phone) == "" {
		return ErrMissingDeliveryFields
	}
	return nil
}

// ValidateCart はカートが空でないことを検証する。
func ValidateCart(c model.Cart) error {
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

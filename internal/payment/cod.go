package payment

import (
	"context"

	"ecobasket/internal/domain/model"
)

// CashOnDelivery はクライアント側で支払いを回収しない。
// 注文作成エンドポイント自体が代引き確定を行うため、
// Beginは番兵の証明を即座に返すだけ。検証ステップは通らない。
type CashOnDelivery struct{}

func NewCashOnDelivery() *CashOnDelivery {
	return &CashOnDelivery{}
}

func (s *CashOnDelivery) Begin(_ context.Context, order model.PendingOrder, _ model.DeliveryInfo) (model.PaymentProof, error) {
	return model.PaymentProof{
		OrderID:   order.OrderID,
		PaymentID: "cod",
		Signature: "cash_on_delivery",
	}, nil
}

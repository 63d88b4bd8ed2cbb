package usecase

import (
	"context"

	"ecobasket/internal/backend"
	"ecobasket/internal/domain/model"
)

// OrderUsecase は注文履歴（読み取り専用）。
type OrderUsecase struct {
	api backend.PaymentAPI
}

func NewOrderUsecase(api backend.PaymentAPI) *OrderUsecase {
	return &OrderUsecase{api: api}
}

// ListMyOrders は自分の注文一覧を返す。
func (u *OrderUsecase) ListMyOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := u.api.ListOrders(ctx)
	if err != nil {
		return nil, WrapFlowError(KindNetwork, "failed to load orders", err)
	}
	return orders, nil
}

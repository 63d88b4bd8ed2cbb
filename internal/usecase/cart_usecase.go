package usecase

import (
	"context"

	"ecobasket/internal/backend"
	"ecobasket/internal/domain/model"
)

// CartUsecase はサーバーカートを操作する。
// 変更のたびに必ず取り直す（常にサーバーを信頼する。楽観更新はしない）。
type CartUsecase struct {
	api backend.CartAPI
}

func NewCartUsecase(api backend.CartAPI) *CartUsecase {
	return &CartUsecase{api: api}
}

// Fetch は現在のカートを取得する。
func (u *CartUsecase) Fetch(ctx context.Context) (model.Cart, error) {
	cart, err := u.api.FetchCart(ctx)
	if err != nil {
		return model.Cart{}, WrapFlowError(KindNetwork, "failed to load cart", err)
	}
	return cart, nil
}

// Add は商品を追加して最新カートを返す。
func (u *CartUsecase) Add(ctx context.Context, productID string, qty int64) (model.Cart, error) {
	if productID == "" {
		return model.Cart{}, NewFlowError(KindValidation, "invalid product id")
	}
	if qty < 1 {
		return model.Cart{}, NewFlowError(KindValidation, "invalid quantity")
	}

	if err := u.api.AddToCart(ctx, productID, qty); err != nil {
		return model.Cart{}, WrapFlowError(KindNetwork, "failed to add to cart", err)
	}
	return u.Fetch(ctx)
}

// SetQuantity は数量を変更して最新カートを返す。
// 要求が0以下でも1に切り上げてから送る（0や負数は送信しない）。
func (u *CartUsecase) SetQuantity(ctx context.Context, productID string, qty int64) (model.Cart, error) {
	if productID == "" {
		return model.Cart{}, NewFlowError(KindValidation, "invalid product id")
	}
	if qty < 1 {
		qty = 1
	}

	if err := u.api.SetQuantity(ctx, productID, qty); err != nil {
		return model.Cart{}, WrapFlowError(KindNetwork, "failed to update quantity", err)
	}
	return u.Fetch(ctx)
}

// Remove は明細を削除して最新カートを返す。
func (u *CartUsecase) Remove(ctx context.Context, productID string) (model.Cart, error) {
	if productID == "" {
		return model.Cart{}, NewFlowError(KindValidation, "invalid product id")
	}

	if err := u.api.RemoveFromCart(ctx, productID); err != nil {
		return model.Cart{}, WrapFlowError(KindNetwork, "failed to remove item", err)
	}
	return u.Fetch(ctx)
}

package backend

import (
	"context"
	"errors"

	"ecobasket/internal/domain/model"
)

// 対象が存在しない
var ErrNotFound = errors.New("not found")

// サインイン/サインアップの結果
type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// AuthAPI は /auth 系エンドポイントの約束。
type AuthAPI interface {
	SignUp(ctx context.Context, name, email, password string) (AuthResult, error)
	SignIn(ctx context.Context, email, password string) (AuthResult, error)
}

// CatalogAPI は商品一覧（読み取り専用）。
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// CartAPI はサーバーカートへのコマンド。
// 業務ロジックは持たない。失敗はそのまま呼び出し側へ返す。
type CartAPI interface {
	FetchCart(ctx context.Context) (model.Cart, error)
	AddToCart(ctx context.Context, productID string, qty int64) error
	SetQuantity(ctx context.Context, productID string, qty int64) error
	RemoveFromCart(ctx context.Context, productID string) error
}

// PaymentAPI は注文作成・検証・履歴のエンドポイント。
type PaymentAPI interface {
	// 支払い待ち注文を作る。idemKeyは二重送信防止キー。
	CreateOrder(ctx context.Context, amount int64, delivery model.DeliveryInfo, idemKey string) (model.PendingOrder, error)

	// 代引き注文を作る。作成と同時に注文が確定する。
	CreateCODOrder(ctx context.Context, delivery model.DeliveryInfo) (model.Order, error)

	// 支払い証明をバックエンドに提出する。リトライはしない。
	VerifyPayment(ctx context.Context, proof model.PaymentProof) (model.Order, error)

	ListOrders(ctx context.Context) ([]model.Order, error)
}

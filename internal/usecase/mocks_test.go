package usecase

import (
	"context"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"ecobasket/internal/domain/model"
)

// =====================
// Mock: CartAPI
// =====================

type MockCartAPI struct {
	mock.Mock
}

func (m *MockCartAPI) FetchCart(ctx context.Context) (model.Cart, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *MockCartAPI) AddToCart(ctx context.Context, productID string, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *MockCartAPI) SetQuantity(ctx context.Context, productID string, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *MockCartAPI) RemoveFromCart(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// =====================
// Mock: PaymentAPI
// =====================

type MockPaymentAPI struct {
	mock.Mock
}

func (m *MockPaymentAPI) CreateOrder(ctx context.Context, amount int64, delivery model.DeliveryInfo, idemKey string) (model.PendingOrder, error) {
	args := m.Called(ctx, amount, delivery, idemKey)
	o, _ := args.Get(0).(model.PendingOrder)
	return o, args.Error(1)
}

func (m *MockPaymentAPI) CreateCODOrder(ctx context.Context, delivery model.DeliveryInfo) (model.Order, error) {
	args := m.Called(ctx, delivery)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockPaymentAPI) VerifyPayment(ctx context.Context, proof model.PaymentProof) (model.Order, error) {
	args := m.Called(ctx, proof)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockPaymentAPI) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

// =====================
// Fake: payment.Strategy
// =====================

// fakeStrategy は固定結果を返すストラテジー。
// unblockが設定されていれば、そこが閉じるまでBeginで待つ。
type fakeStrategy struct {
	proof   model.PaymentProof
	err     error
	entered chan struct{} // Beginに入ったら閉じる（再入テスト用）
	unblock chan struct{}
	calls   int32
}

func (s *fakeStrategy) Begin(ctx context.Context, order model.PendingOrder, _ model.DeliveryInfo) (model.PaymentProof, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.entered != nil {
		close(s.entered)
		s.entered = nil
	}
	if s.unblock != nil {
		select {
		case <-s.unblock:
		case <-ctx.Done():
			return model.PaymentProof{}, ctx.Err()
		}
	}
	if s.err != nil {
		return model.PaymentProof{}, s.err
	}
	if s.proof.OrderID == "" {
		s.proof.OrderID = order.OrderID
	}
	return s.proof, nil
}

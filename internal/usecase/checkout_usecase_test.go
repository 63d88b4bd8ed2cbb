package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ecobasket/internal/domain/model"
	"ecobasket/internal/infra/rest"
	"ecobasket/internal/payment"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func cartFixture() model.Cart {
	return model.Cart{Items: []model.CartItem{
		{ProductID: "p1", Name: "Brown Rice (5kg)", UnitPrice: 499, Quantity: 1},
	}}
}

func deliveryFixture() model.DeliveryInfo {
	return model.DeliveryInfo{Address: "12 Green Lane", Phone: "9876543210"}
}

func newCheckout(payments *MockPaymentAPI, carts *MockCartAPI, online payment.Strategy) *CheckoutUsecase {
	return NewCheckoutUsecase(payments, carts, online, NewPaymentVerifier(payments), time.Minute, testLogger())
}

func TestCheckout_CODCompletesWithoutVerifier(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateCODOrder", mock.Anything, deliveryFixture()).
		Return(model.Order{ID: "o1", TotalAmount: 499, PaymentStatus: model.PaymentStatusCompleted}, nil)

	uc := newCheckout(payments, carts, &fakeStrategy{})
	res, err := uc.Checkout(context.Background(), model.PaymentMethodCOD, deliveryFixture())

	assert.NoError(t, err)
	assert.Equal(t, StateCompleted, res.State)
	assert.Equal(t, "o1", res.Order.ID)

	//代引きは検証も汎用作成エンドポイントも通らない
	payments.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_MissingAddressRejectedBeforeAnyCall(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	uc := newCheckout(payments, carts, &fakeStrategy{})
	_, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, model.DeliveryInfo{Phone: "9876543210"})

	fe, ok := AsFlowError(err)
	assert.True(t, ok)
	assert.Equal(t, KindValidation, fe.Kind)
	assert.Equal(t, StateFailed, uc.State())

	//外向きリクエストはゼロ
	carts.AssertNotCalled(t, "FetchCart", mock.Anything)
	payments.AssertExpectations(t)
}

func TestCheckout_EmptyCartIsDistinctError(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(model.Cart{}, nil)

	uc := newCheckout(payments, carts, &fakeStrategy{})
	_, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())

	fe, ok := AsFlowError(err)
	assert.True(t, ok)
	assert.Equal(t, KindEmptyCart, fe.Kind)
	payments.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_OnlineHappyPath(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	pending := model.PendingOrder{OrderID: "pend-1", Amount: 499, Currency: "INR"}
	proof := model.PaymentProof{OrderID: "pend-1", PaymentID: "pay-1", Signature: "sig"}

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateOrder", mock.Anything, int64(499), deliveryFixture(), mock.MatchedBy(func(key string) bool {
		//試行ごとに新しい二重送信防止キーが付く
		return key != ""
	})).Return(pending, nil)
	payments.On("VerifyPayment", mock.Anything, proof).
		Return(model.Order{ID: "o1", TotalAmount: 499, PaymentStatus: model.PaymentStatusCompleted}, nil)

	uc := newCheckout(payments, carts, &fakeStrategy{proof: proof})
	res, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())

	assert.NoError(t, err)
	assert.Equal(t, StateCompleted, res.State)
	assert.Equal(t, model.PaymentStatusCompleted, res.Order.PaymentStatus)
	payments.AssertExpectations(t)
}

func TestCheckout_UserCancellation(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.PendingOrder{OrderID: "pend-1", Amount: 499}, nil)

	uc := newCheckout(payments, carts, &fakeStrategy{err: payment.ErrCancelled})
	res, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())

	assert.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	payments.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestCheckout_GatewayFailureIsCancelledWithReason(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.PendingOrder{OrderID: "pend-1", Amount: 499}, nil)

	uc := newCheckout(payments, carts, &fakeStrategy{err: &payment.GatewayError{Reason: "card declined"}})
	res, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())

	assert.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, "card declined", res.Reason)
	payments.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestCheckout_VerificationRejectionFails(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	proof := model.PaymentProof{OrderID: "pend-1", PaymentID: "pay-1", Signature: "bad"}

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.PendingOrder{OrderID: "pend-1", Amount: 499}, nil)
	payments.On("VerifyPayment", mock.Anything, proof).
		Return(model.Order{}, &rest.StatusError{Status: 400, Message: "invalid signature"})

	uc := newCheckout(payments, carts, &fakeStrategy{proof: proof})
	_, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())

	fe, ok := AsFlowError(err)
	assert.True(t, ok)
	assert.Equal(t, KindVerification, fe.Kind)
	assert.Equal(t, StateFailed, uc.State())

	var ve *VerificationError
	assert.True(t, errors.As(err, &ve))
	assert.False(t, ve.Transient)
}

func TestCheckout_CreateOrderNetworkFailure(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.PendingOrder{}, errors.New("connection refused"))

	uc := newCheckout(payments, carts, &fakeStrategy{})
	_, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())

	fe, ok := AsFlowError(err)
	assert.True(t, ok)
	assert.Equal(t, KindNetwork, fe.Kind)
}

func TestCheckout_ReentrantInvocationIsRejected(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(model.PendingOrder{OrderID: "pend-1", Amount: 499}, nil)
	payments.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(model.Order{ID: "o1", PaymentStatus: model.PaymentStatusCompleted}, nil)

	entered := make(chan struct{})
	unblock := make(chan struct{})
	strategy := &fakeStrategy{
		proof:   model.PaymentProof{OrderID: "pend-1", PaymentID: "pay-1", Signature: "sig"},
		entered: entered,
		unblock: unblock,
	}

	uc := newCheckout(payments, carts, strategy)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())
	}()

	//1回目が支払い回収に入るまで待ってから連打する
	<-entered
	_, err := uc.Checkout(context.Background(), model.PaymentMethodOnline, deliveryFixture())
	assert.ErrorIs(t, err, ErrBusy)

	close(unblock)
	<-done

	//PendingOrderの作成はちょうど1回
	payments.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestCheckout_GuardReleasedAfterFailure(t *testing.T) {
	carts := new(MockCartAPI)
	payments := new(MockPaymentAPI)

	carts.On("FetchCart", mock.Anything).Return(model.Cart{}, errors.New("timeout")).Once()
	carts.On("FetchCart", mock.Anything).Return(cartFixture(), nil)
	payments.On("CreateCODOrder", mock.Anything, mock.Anything).
		Return(model.Order{ID: "o2", PaymentStatus: model.PaymentStatusCompleted}, nil)

	uc := newCheckout(payments, carts, &fakeStrategy{})

	//1回目は失敗するが、ガードは解除されて次の試行ができる
	_, err := uc.Checkout(context.Background(), model.PaymentMethodCOD, deliveryFixture())
	assert.Error(t, err)

	res, err := uc.Checkout(context.Background(), model.PaymentMethodCOD, deliveryFixture())
	assert.NoError(t, err)
	assert.Equal(t, StateCompleted, res.State)
}

package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"ecobasket/internal/backend"
	"ecobasket/internal/domain/model"
	"ecobasket/internal/payment"
	"ecobasket/internal/validator"
)

// チェックアウトの状態
type CheckoutState string

const (
	StateIdle                 CheckoutState = "IDLE"
	StateValidatingInput      CheckoutState = "VALIDATING_INPUT"
	StateCreatingPendingOrder CheckoutState = "CREATING_PENDING_ORDER"
	StateCollectingPayment    CheckoutState = "COLLECTING_PAYMENT"
	StateVerifyingPayment     CheckoutState = "VERIFYING_PAYMENT"
	StateCompleted            CheckoutState = "COMPLETED"
	StateFailed               CheckoutState = "FAILED"
	StateCancelled            CheckoutState = "CANCELLED"
)

// 1回のチェックアウト試行の結果
type CheckoutResult struct {
	State  CheckoutState
	Order  model.Order
	Reason string // キャンセル・ゲートウェイ失敗時の補足
}

// CheckoutUsecase はカートのスナップショット→注文作成→支払い回収→検証→確定
// を進める状態機械。1試行内の各ステップは厳密に逐次実行する。
type CheckoutUsecase struct {
	payments backend.PaymentAPI
	carts    backend.CartAPI
	cod      payment.Strategy
	online   payment.Strategy
	verifier *PaymentVerifier
	timeout  time.Duration
	logger   *slog.Logger

	// processing は再入を防ぐ唯一の共有状態。
	// 最初のネットワーク呼び出しの前に立てて、全ての出口で必ず下ろす。
	processing atomic.Bool

	mu    sync.Mutex
	state CheckoutState
}

func NewCheckoutUsecase(
	payments backend.PaymentAPI,
	carts backend.CartAPI,
	online payment.Strategy,
	verifier *PaymentVerifier,
	timeout time.Duration,
	logger *slog.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		payments: payments,
		carts:    carts,
		cod:      payment.NewCashOnDelivery(),
		online:   online,
		verifier: verifier,
		timeout:  timeout,
		logger:   logger,
		state:    StateIdle,
	}
}

// State は現在の状態を返す。
func (u *CheckoutUsecase) State() CheckoutState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *CheckoutUsecase) setState(s CheckoutState) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
	u.logger.Debug("checkout state", "state", string(s))
}

// Checkout は1回のチェックアウト試行を実行する。
// 処理中の再呼び出しは何もせずErrBusyを返す（送信ボタン連打対策）。
func (u *CheckoutUsecase) Checkout(ctx context.Context, method model.PaymentMethod, delivery model.DeliveryInfo) (CheckoutResult, error) {
	if !u.processing.CompareAndSwap(false, true) {
		return CheckoutResult{State: u.State()}, ErrBusy
	}
	//成功・失敗・キャンセルのどの出口でも必ず解除する
	defer u.processing.Store(false)

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	//入力検証。ネットワーク呼び出しの前にローカルで弾く。
	u.setState(StateValidatingInput)
	if err := validator.ValidateDelivery(delivery); err != nil {
		u.setState(StateFailed)
		return CheckoutResult{State: StateFailed}, WrapFlowError(KindValidation, "missing delivery fields", err)
	}

	//カートのスナップショットを取る
	cart, err := u.carts.FetchCart(ctx)
	if err != nil {
		u.setState(StateFailed)
		return CheckoutResult{State: StateFailed}, WrapFlowError(KindNetwork, "failed to load cart", err)
	}
	if err := validator.ValidateCart(cart); err != nil {
		u.setState(StateFailed)
		return CheckoutResult{State: StateFailed}, WrapFlowError(KindEmptyCart, "cart is empty", err)
	}

	amount := cart.Subtotal()

	//代引きは専用エンドポイントで作成即確定。回収ステップも検証も通らない。
	if method == model.PaymentMethodCOD {
		u.setState(StateCreatingPendingOrder)
		order, err := u.payments.CreateCODOrder(ctx, delivery)
		if err != nil {
			u.setState(StateFailed)
			return CheckoutResult{State: StateFailed}, WrapFlowError(KindNetwork, "failed to create cod order", err)
		}

		//代引きストラテジーは番兵の証明を即座に返すだけ。検証には使わない。
		proof, _ := u.cod.Begin(ctx, model.PendingOrder{OrderID: order.ID, Amount: order.TotalAmount}, delivery)

		u.setState(StateCompleted)
		u.logger.Info("checkout completed", "order_id", order.ID, "method", string(method), "payment_id", proof.PaymentID)
		return CheckoutResult{State: StateCompleted, Order: order}, nil
	}

	//支払い待ち注文を作る。試行ごとに新しい二重送信防止キーを振る。
	u.setState(StateCreatingPendingOrder)
	idemKey := uuid.NewString()

	pending, err := u.payments.CreateOrder(ctx, amount, delivery, idemKey)
	if err != nil {
		u.setState(StateFailed)
		return CheckoutResult{State: StateFailed}, WrapFlowError(KindNetwork, "failed to create order", err)
	}

	//支払い回収。キャンセルできるのはこの間だけ。
	u.setState(StateCollectingPayment)
	proof, err := u.online.Begin(ctx, pending, delivery)
	if err != nil {
		if ge, ok := payment.AsGatewayError(err); ok {
			//ゲートウェイ失敗はキャンセル扱い。理由は記録する。
			u.logger.Warn("gateway failure", "order_id", pending.OrderID, "reason", ge.Reason)
			u.setState(StateCancelled)
			return CheckoutResult{State: StateCancelled, Reason: ge.Reason}, nil
		}
		if err == payment.ErrCancelled || ctx.Err() != nil {
			u.setState(StateCancelled)
			return CheckoutResult{State: StateCancelled}, nil
		}

		u.setState(StateFailed)
		return CheckoutResult{State: StateFailed}, WrapFlowError(KindNetwork, "payment collection failed", err)
	}

	//検証。ここから先はキャンセル不可、完了か失敗まで走り切る。
	//クライアントとバックエンドの金銭状態がずれ得る唯一の箇所。
	u.setState(StateVerifyingPayment)
	order, err := u.verifier.Verify(ctx, proof)
	if err != nil {
		u.setState(StateFailed)
		return CheckoutResult{State: StateFailed}, WrapFlowError(KindVerification, "payment verification failed", err)
	}

	u.setState(StateCompleted)
	u.logger.Info("checkout completed", "order_id", order.ID, "method", string(method), "amount", amount)
	return CheckoutResult{State: StateCompleted, Order: order}, nil
}

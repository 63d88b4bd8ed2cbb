package usecase

import (
	"context"
	"fmt"
	"net/http"

	"ecobasket/internal/backend"
	"ecobasket/internal/domain/model"
	"ecobasket/internal/infra/rest"
)

// VerificationError は検証失敗。
// Transient=true はネットワーク起因、false はバックエンドによる拒否。
// 自動リトライはしない（金銭的な冪等性はサーバー側で保証するべきもの）。
type VerificationError struct {
	Transient bool
	Message   string
	Err       error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verification failed: %s: %v", e.Message, e.Err)
	}
	return "verification failed: " + e.Message
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// PaymentVerifier は支払い証明をバックエンドの検証エンドポイントに提出する。
type PaymentVerifier struct {
	api backend.PaymentAPI
}

func NewPaymentVerifier(api backend.PaymentAPI) *PaymentVerifier {
	return &PaymentVerifier{api: api}
}

// Verify は証明を提出して確定済み注文を返す。
func (v *PaymentVerifier) Verify(ctx context.Context, proof model.PaymentProof) (model.Order, error) {
	order, err := v.api.VerifyPayment(ctx, proof)
	if err == nil {
		return order, nil
	}

	//4xxは明示的な拒否、それ以外は一時的な失敗として区別する
	if se, ok := rest.AsStatusError(err); ok && se.Status >= http.StatusBadRequest && se.Status < http.StatusInternalServerError {
		return model.Order{}, &VerificationError{Transient: false, Message: se.Message, Err: err}
	}
	return model.Order{}, &VerificationError{Transient: true, Message: "verification request failed", Err: err}
}

package usecase

import (
	"errors"
	"fmt"
)

// チェックアウト処理中の再入
var ErrBusy = errors.New("checkout already in progress")

type ErrorKind string

const (
	// 入力不備（配送先欠落）。ネットワーク呼び出し前にローカルで弾く。
	KindValidation ErrorKind = "VALIDATION"

	// カートが空。Validationとは区別する。
	KindEmptyCart ErrorKind = "EMPTY_CART"

	// リクエスト失敗。試行は中断、部分状態は残さない
	// （作成済みPendingOrderは孤児になる）。
	KindNetwork ErrorKind = "NETWORK"

	// ゲートウェイ自身の失敗通知
	KindGateway ErrorKind = "GATEWAY"

	// 検証の拒否または検証中のエラー。
	// 実際に支払いが発生した後の可能性がある最重要クラス。
	KindVerification ErrorKind = "VERIFICATION"
)

// FlowError はチェックアウトフローのエラー。
type FlowError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func NewFlowError(kind ErrorKind, message string) error {
	return &FlowError{Kind: kind, Message: message}
}

func WrapFlowError(kind ErrorKind, message string, err error) error {
	return &FlowError{Kind: kind, Message: message, Err: err}
}

func AsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	ok := errors.As(err, &fe)
	return fe, ok
}

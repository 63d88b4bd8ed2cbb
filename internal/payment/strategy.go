package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ecobasket/internal/config"
	"ecobasket/internal/domain/model"
)

// ユーザーが支払いを中断した
var ErrCancelled = errors.New("payment cancelled")

// GatewayError はゲートウェイ自身の失敗通知。
// オーケストレーション上はキャンセル扱いだが、元の理由を持ち回る。
type GatewayError struct {
	Reason string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway failure: %s", e.Reason)
}

func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	ok := errors.As(err, &ge)
	return ge, ok
}

// Strategy は1回のチェックアウトの支払い回収方法。
// Beginは証明を返すか、ErrCancelled / GatewayError で抜ける。
// キャンセルは必ず観測できる（promiseを放置しない）。
type Strategy interface {
	Begin(ctx context.Context, order model.PendingOrder, delivery model.DeliveryInfo) (model.PaymentProof, error)
}

// Resolve はオンライン決済のストラテジーをプロセス起動時に1回だけ決める。
// 有効なゲートウェイキーがあれば本物のゲートウェイ、無ければQRシミュレーション。
func Resolve(cfg config.Config, in io.Reader, out io.Writer, logger *slog.Logger) Strategy {
	if cfg.GatewayConfigured() {
		logger.Info("payment strategy resolved", "strategy", "hosted_gateway")
		return NewHostedGateway(cfg, out, logger)
	}

	logger.Info("payment strategy resolved", "strategy", "upi_qr",
		"reason", "gateway key missing or placeholder")
	return NewUpiQr(cfg, in, out)
}

package payment

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"

	"ecobasket/internal/config"
	"ecobasket/internal/domain/model"
)

// HostedGateway は本物のオンラインゲートウェイ経由の決済。
// localhostにコールバック用の小さなechoサーバーを立てて、
// ゲートウェイのcheckoutウィジェットを埋め込んだページを配信する。
// ウィジェットの完了ハンドラがコールバックに結果をPOSTしてくる。
type HostedGateway struct {
	keyID        string
	merchantName string
	listenAddr   string
	out          io.Writer
	logger       *slog.Logger
}

func NewHostedGateway(cfg config.Config, out io.Writer, logger *slog.Logger) *HostedGateway {
	return &HostedGateway{
		keyID:        cfg.GatewayKeyID,
		merchantName: cfg.UPIPayeeName,
		listenAddr:   "127.0.0.1:0",
		out:          out,
		logger:       logger,
	}
}

// コールバックで受け取る結果
type gatewayCallback struct {
	Status    string `json:"status"` // success / failed / cancelled
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Reason    string `json:"reason"`
}

var checkoutPage = template.Must(template.New("checkout").Parse(`<!doctype html>
<html>
<body>
<script src="https://checkout.razorpay.com/v1/checkout.js"></script>
<script>
var post = function (body) {
  fetch('/callback', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify(body)
  }).then(function () { document.body.innerText = 'You can close this tab.'; });
};
var rzp = new Razorpay({
  key: {{.Key}},
  order_id: {{.OrderID}},
  amount: {{.Amount}},
  currency: {{.Currency}},
  name: {{.Name}},
  description: 'Order Payment',
  prefill: { contact: {{.Contact}} },
  handler: function (res) {
    post({
      status: 'success',
      orderId: res.razorpay_order_id,
      paymentId: res.razorpay_payment_id,
      signature: res.razorpay_signature
    });
  },
  modal: {
    ondismiss: function () { post({ status: 'cancelled' }); }
  }
});
rzp.on('payment.failed', function (res) {
  post({ status: 'failed', reason: res.error.description });
});
rzp.open();
</script>
</body>
</html>`))

func (s *HostedGateway) Begin(ctx context.Context, order model.PendingOrder, delivery model.DeliveryInfo) (model.PaymentProof, error) {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return model.PaymentProof{}, fmt.Errorf("start callback listener: %w", err)
	}

	results := make(chan gatewayCallback, 1)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/checkout", func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		return checkoutPage.Execute(c.Response(), map[string]interface{}{
			"Key":      s.keyID,
			"OrderID":  order.OrderID,
			"Amount":   order.Amount,
			"Currency": order.Currency,
			"Name":     s.merchantName,
			"Contact":  delivery.Phone,
		})
	})

	e.POST("/callback", func(c echo.Context) error {
		var cb gatewayCallback
		if err := c.Bind(&cb); err != nil {
			return c.NoContent(http.StatusBadRequest)
		}

		//最初の結果だけ採用する
		select {
		case results <- cb:
		default:
		}
		return c.NoContent(http.StatusNoContent)
	})

	srv := &http.Server{Handler: e}
	go func() {
		_ = srv.Serve(ln)
	}()
	defer srv.Close()

	fmt.Fprintf(s.out, "Open in your browser to pay: http://%s/checkout\n", ln.Addr().String())

	select {
	case <-ctx.Done():
		return model.PaymentProof{}, ErrCancelled

	case cb := <-results:
		switch cb.Status {
		case "success":
			return model.PaymentProof{
				OrderID:   cb.OrderID,
				PaymentID: cb.PaymentID,
				Signature: cb.Signature,
			}, nil
		case "failed":
			s.logger.Warn("gateway reported payment failure", "order_id", order.OrderID, "reason", cb.Reason)
			return model.PaymentProof{}, &GatewayError{Reason: cb.Reason}
		default:
			return model.PaymentProof{}, ErrCancelled
		}
	}
}

package payment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"ecobasket/internal/config"
	"ecobasket/internal/domain/model"
)

// 取引IDの最低文字数。これ未満は受け付けない。
const minTransactionIDLen = 8

// UpiQr はゲートウェイ未設定時の開発・デモ用決済。
// UPIディープリンクをQRコードとして表示して、支払い済みの証として
// 取引IDを手入力してもらう。暗号学的な証明ではないので
// 本番の資金管理には使わないこと。
type UpiQr struct {
	payeeID   string
	payeeName string
	note      string
	currency  string
	in        *bufio.Scanner
	out       io.Writer
}

func NewUpiQr(cfg config.Config, in io.Reader, out io.Writer) *UpiQr {
	return &UpiQr{
		payeeID:   cfg.UPIPayeeID,
		payeeName: cfg.UPIPayeeName,
		note:      cfg.UPINote,
		currency:  cfg.Currency,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// BuildUPILink はUPIのディープリンクを組み立てる。
// paとcuはそのまま、pnとtnだけパーセントエンコードする（UPIアプリの慣習）。
// 例: upi://pay?pa=merchant@bank&pn=Eco%20Basket&am=499&cu=INR&tn=Order%20Payment
func BuildUPILink(payeeID, payeeName string, amount int64, currency, note string) string {
	return "upi://pay" +
		"?pa=" + payeeID +
		"&pn=" + encodeComponent(payeeName) +
		"&am=" + strconv.FormatInt(amount, 10) +
		"&cu=" + currency +
		"&tn=" + encodeComponent(note)
}

// encodeComponent はスペースを%20にするパーセントエンコード。
// （QueryEscapeの"+"はUPIアプリが解釈しない）
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (s *UpiQr) Begin(ctx context.Context, order model.PendingOrder, _ model.DeliveryInfo) (model.PaymentProof, error) {
	currency := order.Currency
	if currency == "" {
		currency = s.currency
	}

	link := BuildUPILink(s.payeeID, s.payeeName, order.Amount, currency, s.note)

	//QRを端末に描画。失敗したらリンクだけ出す。
	if q, err := qrcode.New(link, qrcode.High); err == nil {
		fmt.Fprintln(s.out, q.ToSmallString(false))
	}
	fmt.Fprintf(s.out, "Scan & Pay: %s\n", link)
	fmt.Fprintf(s.out, "Amount: %d %s\n", order.Amount, currency)

	for {
		select {
		case <-ctx.Done():
			return model.PaymentProof{}, ErrCancelled
		default:
		}

		fmt.Fprintf(s.out, "Transaction ID / UTR (%d+ chars, 'cancel' to abort): ", minTransactionIDLen)

		if !s.in.Scan() {
			//EOFは明示的な中断として扱う
			return model.PaymentProof{}, ErrCancelled
		}

		txnID := strings.TrimSpace(s.in.Text())
		if txnID == "" || strings.EqualFold(txnID, "cancel") {
			return model.PaymentProof{}, ErrCancelled
		}
		if len(txnID) < minTransactionIDLen {
			fmt.Fprintln(s.out, "transaction id too short")
			continue
		}

		return model.PaymentProof{
			OrderID:   order.OrderID,
			PaymentID: txnID,
			Signature: "upi_qr_payment",
		}, nil
	}
}

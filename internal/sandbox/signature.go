package sandbox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// シミュレーション決済が名乗る署名。devモードでのみ受け付ける。
var simulatedSignatures = map[string]bool{
	"upi_qr_payment": true,
	"test_signature": true,
}

// ComputeSignature はゲートウェイ互換のHMAC-SHA256署名を計算する。
// 対象は "orderId|paymentId"。
func ComputeSignature(orderID, paymentID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature は証明の署名を検証する。
// allowSimulated=true のときはシミュレーション署名も通す。
func VerifySignature(orderID, paymentID, signature string, secret []byte, allowSimulated bool) bool {
	if allowSimulated && simulatedSignatures[signature] {
		return true
	}
	if len(secret) == 0 {
		return false
	}

	expected := ComputeSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

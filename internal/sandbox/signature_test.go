package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature_HMACRoundtrip(t *testing.T) {
	secret := []byte("test-gateway-secret")
	sig := ComputeSignature("order_123", "pay_456", secret)

	assert.True(t, VerifySignature("order_123", "pay_456", sig, secret, false))

	//別の注文・別の支払いには流用できない
	assert.False(t, VerifySignature("order_999", "pay_456", sig, secret, false))
	assert.False(t, VerifySignature("order_123", "pay_999", sig, secret, false))
}

func TestVerifySignature_SimulatedGatedByFlag(t *testing.T) {
	secret := []byte("test-gateway-secret")

	//devモードのみシミュレーション署名を通す
	assert.True(t, VerifySignature("o1", "txn-abc123", "upi_qr_payment", secret, true))
	assert.True(t, VerifySignature("o1", "cod", "test_signature", secret, true))

	assert.False(t, VerifySignature("o1", "txn-abc123", "upi_qr_payment", secret, false))
	assert.False(t, VerifySignature("o1", "cod", "test_signature", secret, false))
}

func TestVerifySignature_EmptySecretRejectsRealSignatures(t *testing.T) {
	sig := ComputeSignature("o1", "p1", []byte("s"))

	assert.False(t, VerifySignature("o1", "p1", sig, nil, false))
	//シミュレーションはシークレット無しでも通る
	assert.True(t, VerifySignature("o1", "p1", "upi_qr_payment", nil, true))
}

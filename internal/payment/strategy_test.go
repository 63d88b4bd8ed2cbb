package payment

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ecobasket/internal/config"
	"ecobasket/internal/domain/model"
)

func orderFixture() model.PendingOrder {
	return model.PendingOrder{OrderID: "order-1", Amount: 499, Currency: "INR"}
}

func deliveryFixture() model.DeliveryInfo {
	return model.DeliveryInfo{Address: "12 Green Lane", Phone: "9876543210"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestResolve_NoKeyFallsBackToUpiQr(t *testing.T) {
	cfg := config.Config{GatewayKeyID: ""}

	s := Resolve(cfg, strings.NewReader(""), &bytes.Buffer{}, testLogger())

	assert.IsType(t, &UpiQr{}, s)
}

func TestResolve_PlaceholderKeyFallsBackToUpiQr(t *testing.T) {
	//プレースホルダ値は未設定として扱う
	cfg := config.Config{GatewayKeyID: config.GatewayKeyPlaceholder}

	s := Resolve(cfg, strings.NewReader(""), &bytes.Buffer{}, testLogger())

	assert.IsType(t, &UpiQr{}, s)
}

func TestResolve_RealKeySelectsGateway(t *testing.T) {
	cfg := config.Config{GatewayKeyID: "rzp_test_abc123"}

	s := Resolve(cfg, strings.NewReader(""), &bytes.Buffer{}, testLogger())

	assert.IsType(t, &HostedGateway{}, s)
}

func TestCashOnDelivery_SentinelProof(t *testing.T) {
	s := NewCashOnDelivery()

	proof, err := s.Begin(context.Background(), orderFixture(), deliveryFixture())

	assert.NoError(t, err)
	assert.Equal(t, "order-1", proof.OrderID)
	assert.Equal(t, "cash_on_delivery", proof.Signature)
}

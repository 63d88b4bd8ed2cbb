package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ecobasket/internal/backend"
	"ecobasket/internal/config"
	"ecobasket/internal/domain/model"
	"ecobasket/internal/session"
)

func newTestClient(srv *httptest.Server, sess *session.Session) *Client {
	cfg := config.Config{APIBaseURL: srv.URL, HTTPTimeout: 5 * time.Second}
	return NewClient(cfg, sess)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(model.Cart{})
	}))
	defer srv.Close()

	c := newTestClient(srv, &session.Session{Token: "token-123"})
	_, err := c.FetchCart(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "Bearer token-123", gotAuth)
}

func TestClient_NoTokenWhenSignedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Product{})
	}))
	defer srv.Close()

	c := newTestClient(srv, &session.Session{})
	_, err := c.ListProducts(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_CreateOrder(t *testing.T) {
	var gotMethod, gotPath, gotIdemKey string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotIdemKey = r.Header.Get("X-Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(model.PendingOrder{OrderID: "pend-1", Amount: 499, Currency: "INR"})
	}))
	defer srv.Close()

	c := newTestClient(srv, &session.Session{Token: "t"})
	pending, err := c.CreateOrder(context.Background(), 499,
		model.DeliveryInfo{Address: "12 Green Lane", Phone: "9876543210"}, "key-abc")

	assert.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/payment/create-order", gotPath)
	assert.Equal(t, "key-abc", gotIdemKey)
	assert.Equal(t, float64(499), gotBody["amount"])
	assert.Equal(t, "12 Green Lane", gotBody["deliveryAddress"])
	assert.Equal(t, "9876543210", gotBody["deliveryPhone"])
	assert.Equal(t, "pend-1", pending.OrderID)
	assert.Equal(t, int64(499), pending.Amount)
}

func TestClient_CartPaths(t *testing.T) {
	type call struct{ method, path string }
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		_ = json.NewEncoder(w).Encode(model.Cart{})
	}))
	defer srv.Close()

	c := newTestClient(srv, &session.Session{Token: "t"})
	ctx := context.Background()

	assert.NoError(t, c.AddToCart(ctx, "p1", 2))
	assert.NoError(t, c.SetQuantity(ctx, "p1", 3))
	assert.NoError(t, c.RemoveFromCart(ctx, "p1"))

	assert.Equal(t, []call{
		{http.MethodPost, "/cart/add"},
		{http.MethodPut, "/cart/p1"},
		{http.MethodDelete, "/cart/p1"},
	}, calls)
}

func TestClient_VerifyPaymentBody(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(model.Order{ID: "o1", PaymentStatus: model.PaymentStatusCompleted})
	}))
	defer srv.Close()

	c := newTestClient(srv, &session.Session{Token: "t"})
	order, err := c.VerifyPayment(context.Background(), model.PaymentProof{
		OrderID: "pend-1", PaymentID: "pay-1", Signature: "sig",
	})

	assert.NoError(t, err)
	assert.Equal(t, "pend-1", gotBody["orderId"])
	assert.Equal(t, "pay-1", gotBody["paymentId"])
	assert.Equal(t, "sig", gotBody["signature"])
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cart":
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad request"})
		case "/products":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv, &session.Session{Token: "t"})
	ctx := context.Background()

	//非2xxはStatusErrorとしてメッセージ付きで返す
	_, err := c.FetchCart(ctx)
	se, ok := AsStatusError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "bad request", se.Message)

	//404は番兵エラーにする
	_, err = c.ListProducts(ctx)
	assert.ErrorIs(t, err, backend.ErrNotFound)

	//エラーボディが無ければステータス文言を使う
	_, err = c.ListOrders(ctx)
	se, ok = AsStatusError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), se.Message)
}

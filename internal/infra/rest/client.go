package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ecobasket/internal/backend"
	"ecobasket/internal/config"
	"ecobasket/internal/domain/model"
	"ecobasket/internal/session"
)

// 非2xx応答
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	ok := errors.As(err, &se)
	return se, ok
}

// Client はバックエンドREST APIのHTTP実装。
// 楽観更新もリトライもしない。失敗はそのまま返す。
type Client struct {
	base string
	http *http.Client
	sess *session.Session
}

func NewClient(cfg config.Config, sess *session.Session) *Client {
	return &Client{
		base: strings.TrimRight(cfg.APIBaseURL, "/"),
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		sess: sess,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// doJSON は1リクエストを実行してoutにデコードする。
// outがnilならボディは捨てる。
func (c *Client) doJSON(ctx context.Context, method, path string, header http.Header, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	//bearer認証（セッションがあれば）
	if c.sess != nil && c.sess.SignedIn() {
		req.Header.Set("Authorization", "Bearer "+c.sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return backend.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if er.Error == "" {
			er.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Status: resp.StatusCode, Message: er.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ---- AuthAPI ----

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (backend.AuthResult, error) {
	var out backend.AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/signup", nil, signUpRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (backend.AuthResult, error) {
	var out backend.AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/signin", nil, signInRequest{Email: email, Password: password}, &out)
	return out, err
}

// ---- CatalogAPI ----

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	err := c.doJSON(ctx, http.MethodGet, "/products", nil, nil, &out)
	return out, err
}

// ---- CartAPI ----

type addCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"qty"`
}

type updateCartRequest struct {
	Quantity int64 `json:"qty"`
}

func (c *Client) FetchCart(ctx context.Context) (model.Cart, error) {
	var out model.Cart
	err := c.doJSON(ctx, http.MethodGet, "/cart", nil, nil, &out)
	return out, err
}

func (c *Client) AddToCart(ctx context.Context, productID string, qty int64) error {
	return c.doJSON(ctx, http.MethodPost, "/cart/add", nil, addCartRequest{ProductID: productID, Quantity: qty}, nil)
}

func (c *Client) SetQuantity(ctx context.Context, productID string, qty int64) error {
	return c.doJSON(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), nil, updateCartRequest{Quantity: qty}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil, nil, nil)
}

// ---- PaymentAPI ----

type createOrderRequest struct {
	Amount          int64  `json:"amount"`
	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryPhone   string `json:"deliveryPhone"`
}

type createCODOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryPhone   string `json:"deliveryPhone"`
}

func (c *Client) CreateOrder(ctx context.Context, amount int64, delivery model.DeliveryInfo, idemKey string) (model.PendingOrder, error) {
	//二重送信防止キーはヘッダーで渡す
	h := http.Header{}
	if idemKey != "" {
		h.Set("X-Idempotency-Key", idemKey)
	}

	var out model.PendingOrder
	err := c.doJSON(ctx, http.MethodPost, "/payment/create-order", h, createOrderRequest{
		Amount:          amount,
		DeliveryAddress: delivery.Address,
		DeliveryPhone:   delivery.Phone,
	}, &out)
	return out, err
}

func (c *Client) CreateCODOrder(ctx context.Context, delivery model.DeliveryInfo) (model.Order, error) {
	var out model.Order
	err := c.doJSON(ctx, http.MethodPost, "/payment/create-cod-order", nil, createCODOrderRequest{
		DeliveryAddress: delivery.Address,
		DeliveryPhone:   delivery.Phone,
	}, &out)
	return out, err
}

func (c *Client) VerifyPayment(ctx context.Context, proof model.PaymentProof) (model.Order, error) {
	var out model.Order
	err := c.doJSON(ctx, http.MethodPost, "/payment/verify-payment", nil, proof, &out)
	return out, err
}

func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.doJSON(ctx, http.MethodGet, "/payment/orders", nil, nil, &out)
	return out, err
}

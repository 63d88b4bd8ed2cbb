package sandbox

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Server はサンドボックスAPI本体。
// ストアフロントが消費するREST面をそのまま提供する。
type Server struct {
	db             *gorm.DB
	jwtSecret      []byte
	gatewaySecret  []byte
	allowSimulated bool // devモードではシミュレーション署名も検証を通す
	currency       string
	tokenTTL       time.Duration
	logger         *slog.Logger
}

func NewServer(db *gorm.DB, jwtSecret, gatewaySecret []byte, allowSimulated bool, currency string, logger *slog.Logger) *Server {
	return &Server{
		db:             db,
		jwtSecret:      jwtSecret,
		gatewaySecret:  gatewaySecret,
		allowSimulated: allowSimulated,
		currency:       currency,
		tokenTTL:       24 * time.Hour,
		logger:         logger,
	}
}

// RegisterRoutes は全ルートを登録する。
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/signup", s.signUp)
	e.POST("/auth/signin", s.signIn)
	e.GET("/products", s.listProducts)

	authed := e.Group("", AuthJWT(s.jwtSecret))
	authed.GET("/cart", s.getCart)
	authed.POST("/cart/add", s.addToCart)
	authed.PUT("/cart/:productId", s.setQuantity)
	authed.DELETE("/cart/:productId", s.removeFromCart)
	authed.POST("/payment/create-order", s.createOrder)
	authed.POST("/payment/create-cod-order", s.createCODOrder)
	authed.POST("/payment/verify-payment", s.verifyPayment)
	authed.GET("/payment/orders", s.listOrders)
}

// ---- auth ----

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userJSON `json:"user"`
}

func (s *Server) signUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "name and email are required"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid email"})
	}
	//パスワード最低文字数（MVP: 8）
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "password too short"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	u := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(&u).Error; err != nil {
		//email重複
		return c.JSON(http.StatusConflict, errorResponse{Error: "email already used"})
	}

	return s.issueAuthResponse(c, u)
}

func (s *Server) signIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	var u User
	err := s.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
	}

	return s.issueAuthResponse(c, u)
}

func (s *Server) issueAuthResponse(c echo.Context, u User) error {
	token, err := IssueToken(s.jwtSecret, u.ID, time.Now(), s.tokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, authResponse{
		Token: token,
		User:  userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Phone: u.Phone},
	})
}

// ---- catalog ----

type productJSON struct {
	ID    string `json:"productId"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image,omitempty"`
}

func (s *Server) listProducts(c echo.Context) error {
	var products []Product
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&products).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, productJSON{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image})
	}
	return c.JSON(http.StatusOK, out)
}

// ---- cart ----

type cartItemJSON struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"qty"`
	Image     string `json:"image,omitempty"`
}

type cartJSON struct {
	Items []cartItemJSON `json:"items"`
}

type addCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"qty"`
}

type updateCartRequest struct {
	Quantity int64 `json:"qty"`
}

func (s *Server) getCart(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	out, err := s.buildCartJSON(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) addToCart(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	if req.ProductID == "" || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid quantity"})
	}

	var p Product
	err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	//同一商品は数量加算。unit_price_snapshotは追加時点の価格。
	var item CartItem
	err = s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = CartItem{
			UserID:            userID,
			ProductID:         req.ProductID,
			Quantity:          req.Quantity,
			UnitPriceSnapshot: p.Price,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
		}
	case err != nil:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	default:
		if err := s.db.Model(&item).Update("quantity", item.Quantity+req.Quantity).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
		}
	}

	out, err := s.buildCartJSON(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) setQuantity(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var req updateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	//0以下は保存しない
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid quantity"})
	}

	res := s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, c.Param("productId")).
		Update("quantity", req.Quantity)
	if res.Error != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	}

	out, err := s.buildCartJSON(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) removeFromCart(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	res := s.db.Where("user_id = ? AND product_id = ?", userID, c.Param("productId")).Delete(&CartItem{})
	if res.Error != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	}

	out, err := s.buildCartJSON(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) buildCartJSON(userID string) (cartJSON, error) {
	var items []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return cartJSON{}, err
	}

	out := cartJSON{Items: make([]cartItemJSON, 0, len(items))}
	for _, it := range items {
		var p Product
		if err := s.db.Where("id = ?", it.ProductID).First(&p).Error; err != nil {
			continue
		}
		out.Items = append(out.Items, cartItemJSON{
			ProductID: it.ProductID,
			Name:      p.Name,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Image:     p.Image,
		})
	}
	return out, nil
}

// ---- payment ----

type createOrderRequest struct {
	Amount          int64  `json:"amount"`
	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryPhone   string `json:"deliveryPhone"`
}

type createCODOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryPhone   string `json:"deliveryPhone"`
}

type pendingOrderJSON struct {
	OrderID   string    `json:"orderId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

type verifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type orderItemJSON struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"qty"`
	Image     string `json:"image,omitempty"`
}

type orderJSON struct {
	ID              string          `json:"id"`
	Items           []orderItemJSON `json:"items"`
	TotalAmount     int64           `json:"totalAmount"`
	PaymentStatus   string          `json:"paymentStatus"`
	DeliveryAddress string          `json:"deliveryAddress"`
	DeliveryPhone   string          `json:"deliveryPhone"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (s *Server) createOrder(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" || strings.TrimSpace(req.DeliveryPhone) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "delivery address and phone are required"})
	}

	//二重送信防止キー。同じキーなら同じ注文を返す。
	idemKey := c.Request().Header.Get("X-Idempotency-Key")
	if idemKey != "" {
		var existing Order
		err := s.db.Where("user_id = ? AND idempotency_key = ?", userID, idemKey).First(&existing).Error
		if err == nil {
			return c.JSON(http.StatusOK, pendingOrderJSON{
				OrderID:   existing.ID,
				Amount:    existing.TotalAmount,
				Currency:  existing.Currency,
				CreatedAt: existing.CreatedAt,
			})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
		}
	}

	order, status := s.createOrderFromCart(userID, "pending", req.DeliveryAddress, req.DeliveryPhone, idemKey)
	if status != http.StatusOK {
		return c.JSON(status, errorResponse{Error: statusMessage(status)})
	}

	return c.JSON(http.StatusOK, pendingOrderJSON{
		OrderID:   order.ID,
		Amount:    order.TotalAmount,
		Currency:  order.Currency,
		CreatedAt: order.CreatedAt,
	})
}

func (s *Server) createCODOrder(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var req createCODOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" || strings.TrimSpace(req.DeliveryPhone) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "delivery address and phone are required"})
	}

	//代引きは作成と同時に確定。カートもここで空にする。
	order, status := s.createOrderFromCart(userID, "completed", req.DeliveryAddress, req.DeliveryPhone, "")
	if status != http.StatusOK {
		return c.JSON(status, errorResponse{Error: statusMessage(status)})
	}

	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	out, err := s.toOrderJSON(order)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

// createOrderFromCart はカートをスナップショットして注文を作る。
// totalAmountは常にスナップショット価格×数量の合計（リクエストのamountは信用しない）。
func (s *Server) createOrderFromCart(userID, paymentStatus, address, phone, idemKey string) (Order, int) {
	var items []CartItem
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return Order{}, http.StatusInternalServerError
	}
	if len(items) == 0 {
		return Order{}, http.StatusBadRequest
	}

	order := Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Currency:        s.currency,
		PaymentStatus:   paymentStatus,
		DeliveryAddress: address,
		DeliveryPhone:   phone,
		IdempotencyKey:  idemKey,
	}

	orderItems := make([]OrderItem, 0, len(items))
	var total int64 = 0
	for _, it := range items {
		var p Product
		if err := s.db.Where("id = ?", it.ProductID).First(&p).Error; err != nil {
			continue
		}
		//スナップショット
		orderItems = append(orderItems, OrderItem{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Image:     p.Image,
		})
		total += it.UnitPriceSnapshot * it.Quantity
	}
	order.TotalAmount = total

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&orderItems).Error
	})
	if err != nil {
		return Order{}, http.StatusInternalServerError
	}

	s.logger.Info("order created", "order_id", order.ID, "status", paymentStatus, "total", total)
	return order, http.StatusOK
}

func (s *Server) verifyPayment(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}

	var order Order
	err := s.db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	//pending以外は二重検証なので拒否
	if order.PaymentStatus != "pending" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "order not pending"})
	}

	if !VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.gatewaySecret, s.allowSimulated) {
		//検証拒否。注文はfailedにする。
		_ = s.db.Model(&order).Updates(map[string]interface{}{"payment_status": "failed"}).Error
		s.logger.Warn("payment verification rejected", "order_id", order.ID)
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid signature"})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"payment_status": "completed",
			"payment_id":     req.PaymentID,
		}).Error; err != nil {
			return err
		}
		//確定したのでカートを空にする
		return tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	order.PaymentStatus = "completed"
	out, err := s.toOrderJSON(order)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) listOrders(c echo.Context) error {
	userID, ok := userIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	var orders []Order
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
	}

	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		oj, err := s.toOrderJSON(o)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "db error"})
		}
		out = append(out, oj)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) toOrderJSON(o Order) (orderJSON, error) {
	var items []OrderItem
	if err := s.db.Where("order_id = ?", o.ID).Order("id").Find(&items).Error; err != nil {
		return orderJSON{}, err
	}

	outItems := make([]orderItemJSON, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, orderItemJSON{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	return orderJSON{
		ID:              o.ID,
		Items:           outItems,
		TotalAmount:     o.TotalAmount,
		PaymentStatus:   o.PaymentStatus,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryPhone:   o.DeliveryPhone,
		CreatedAt:       o.CreatedAt,
	}, nil
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "cart empty"
	default:
		return "db error"
	}
}

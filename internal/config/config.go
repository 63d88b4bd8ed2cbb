package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ゲートウェイ未設定を表すプレースホルダ値。
// これが入っている場合も「未設定」として扱う。
const GatewayKeyPlaceholder = "your_razorpay_key_id_here"

// Configはストアフロント全体の設定
type Config struct {
	APIBaseURL  string        // バックエンドのベースURL
	HTTPTimeout time.Duration // 各リクエストのタイムアウト

	GatewayKeyID  string // ゲートウェイ公開キー（空ならQRシミュレーション）
	GatewaySecret string // ゲートウェイ秘密キー（サンドボックス検証用）

	UPIPayeeID   string // UPIの受取先ID（merchant@bank形式）
	UPIPayeeName string // 店舗表示名
	UPINote      string // 取引メモ

	Currency string // 通貨コード（INR）

	SessionFile string // セッション保存先（空ならデフォルト）

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	timeoutSec, err := atoiDefault("HTTP_TIMEOUT_SEC", 15)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIBaseURL:  os.Getenv("API_BASE_URL"),
		HTTPTimeout: time.Duration(timeoutSec) * time.Second,

		GatewayKeyID:  os.Getenv("RAZORPAY_KEY_ID"),
		GatewaySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		UPIPayeeID:   getenv("UPI_PAYEE_ID", "merchant@paytm"),
		UPIPayeeName: getenv("UPI_PAYEE_NAME", "Eco Basket"),
		UPINote:      getenv("UPI_NOTE", "Order Payment"),

		Currency: getenv("CURRENCY", "INR"),

		SessionFile: os.Getenv("SESSION_FILE"),

		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	//必須チェック
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}

	return cfg, nil
}

// GatewayConfigured はゲートウェイが本当に設定されているかを返す。
// 空またはプレースホルダならfalse（QRシミュレーションに倒す）。
func (c Config) GatewayConfigured() bool {
	return c.GatewayKeyID != "" && c.GatewayKeyID != GatewayKeyPlaceholder
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

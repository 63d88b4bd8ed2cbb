package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"ecobasket/internal/sandbox"
	"ecobasket/pkg/logger"
)

// サンドボックスサーバー。
// 本番バックエンドなしでストアフロントを一通り動かすための開発用API。
func main() {
	_ = godotenv.Load()

	env := getenv("GO_ENV", "dev")
	slogger := logger.New(logger.Options{
		Service: "ecobasket-sandbox",
		Env:     env,
		Level:   getenv("LOG_LEVEL", "info"),
	})

	db, err := sandbox.Connect()
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := sandbox.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	if err := sandbox.Seed(db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	jwtSecret := getenv("JWT_SECRET", "dev_secret_change_me")
	gatewaySecret := os.Getenv("RAZORPAY_KEY_SECRET")

	//devではシミュレーション署名（upi_qr_payment等）も検証を通す
	srv := sandbox.NewServer(
		db,
		[]byte(jwtSecret),
		[]byte(gatewaySecret),
		env != "prod",
		getenv("CURRENCY", "INR"),
		slogger,
	)

	e := echo.New()
	e.HideBanner = true
	srv.RegisterRoutes(e)

	addr := ":" + getenv("PORT", "8080")
	if err := e.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

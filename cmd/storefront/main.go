package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ecobasket/internal/config"
	"ecobasket/internal/infra/rest"
	"ecobasket/internal/session"
	"ecobasket/pkg/logger"
)

var Version = "dev"

// app はコマンドが共有する部品一式。
type app struct {
	cfg    config.Config
	sess   *session.Session
	client *rest.Client
	logger *slog.Logger
}

// buildApp は設定・セッション・APIクライアントを組み立てる。
func buildApp() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	slogger := logger.New(logger.Options{
		Service: "ecobasket",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	sess, err := session.Load(cfg.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	return &app{
		cfg:    cfg,
		sess:   sess,
		client: rest.NewClient(cfg, sess),
		logger: slogger,
	}, nil
}

func (a *app) requireSignIn() error {
	if !a.sess.SignedIn() {
		return session.ErrNotSignedIn
	}
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "storefront",
		Short:   "Eco Basket storefront client",
		Version: Version,
	}

	rootCmd.AddCommand(signUpCmd())
	rootCmd.AddCommand(signInCmd())
	rootCmd.AddCommand(signOutCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(cartCmd())
	rootCmd.AddCommand(checkoutCmd())
	rootCmd.AddCommand(ordersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

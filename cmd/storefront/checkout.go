package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ecobasket/internal/domain/model"
	"ecobasket/internal/payment"
	"ecobasket/internal/usecase"
)

func checkoutCmd() *cobra.Command {
	var method, address, phone string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Turn the cart into an order and pay",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSignIn(); err != nil {
				return err
			}

			var m model.PaymentMethod
			switch method {
			case "cod":
				m = model.PaymentMethodCOD
			case "online":
				m = model.PaymentMethodOnline
			default:
				return fmt.Errorf("unknown payment method %q (cod|online)", method)
			}

			//配送先未指定ならプロフィールの値を使う
			if address == "" {
				address = a.sess.User.Address
			}
			if phone == "" {
				phone = a.sess.User.Phone
			}

			//オンライン決済のストラテジーは設定で1回だけ決まる
			online := payment.Resolve(a.cfg, os.Stdin, os.Stdout, a.logger)

			uc := usecase.NewCheckoutUsecase(
				a.client,
				a.client,
				online,
				usecase.NewPaymentVerifier(a.client),
				a.cfg.HTTPTimeout*10,
				a.logger,
			)

			res, err := uc.Checkout(cmd.Context(), m, model.DeliveryInfo{Address: address, Phone: phone})
			if err != nil {
				return err
			}

			switch res.State {
			case usecase.StateCompleted:
				fmt.Printf("Order %s placed. Total ₹%d, status: %s\n",
					res.Order.ID, res.Order.TotalAmount, res.Order.PaymentStatus)
			case usecase.StateCancelled:
				if res.Reason != "" {
					fmt.Printf("Payment cancelled: %s\n", res.Reason)
				} else {
					fmt.Println("Payment cancelled.")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", "online", "payment method: cod or online")
	cmd.Flags().StringVar(&address, "address", "", "delivery address (defaults to profile)")
	cmd.Flags().StringVar(&phone, "phone", "", "delivery phone (defaults to profile)")

	return cmd
}

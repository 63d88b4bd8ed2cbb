package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecobasket/internal/usecase"
)

func ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSignIn(); err != nil {
				return err
			}

			orders, err := usecase.NewOrderUsecase(a.client).ListMyOrders(cmd.Context())
			if err != nil {
				return err
			}

			if len(orders) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}

			for _, o := range orders {
				fmt.Printf("%s  %s  ₹%d  %s\n",
					o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.TotalAmount, o.PaymentStatus)
				for _, it := range o.Items {
					fmt.Printf("    %-32s ₹%d × %d\n", it.Name, it.Price, it.Quantity)
				}
			}
			return nil
		},
	}
}

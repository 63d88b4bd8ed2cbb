package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			products, err := a.client.ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			for _, p := range products {
				fmt.Printf("%-24s %-32s ₹%d\n", p.ID, p.Name, p.Price)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ecobasket/internal/domain/model"
	"ecobasket/internal/usecase"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the server-side cart",
	}

	cmd.AddCommand(cartShowCmd())
	cmd.AddCommand(cartAddCmd())
	cmd.AddCommand(cartSetCmd())
	cmd.AddCommand(cartRemoveCmd())

	return cmd
}

func cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSignIn(); err != nil {
				return err
			}

			cart, err := usecase.NewCartUsecase(a.client).Fetch(cmd.Context())
			if err != nil {
				return err
			}

			printCart(cart)
			return nil
		},
	}
}

func cartAddCmd() *cobra.Command {
	var qty int64

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSignIn(); err != nil {
				return err
			}

			cart, err := usecase.NewCartUsecase(a.client).Add(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}

			printCart(cart)
			return nil
		},
	}

	cmd.Flags().Int64Var(&qty, "qty", 1, "quantity")
	return cmd
}

func cartSetCmd() *cobra.Command {
	var qty int64

	cmd := &cobra.Command{
		Use:   "set <product-id>",
		Short: "Set the quantity of a cart item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSignIn(); err != nil {
				return err
			}

			cart, err := usecase.NewCartUsecase(a.client).SetQuantity(cmd.Context(), args[0], qty)
			if err != nil {
				return err
			}

			printCart(cart)
			return nil
		},
	}

	cmd.Flags().Int64Var(&qty, "qty", 1, "quantity (minimum 1)")
	return cmd
}

func cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <product-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a product from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if err := a.requireSignIn(); err != nil {
				return err
			}

			cart, err := usecase.NewCartUsecase(a.client).Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printCart(cart)
			return nil
		},
	}
}

func printCart(cart model.Cart) {
	if cart.IsEmpty() {
		fmt.Println("Your cart is empty.")
		return
	}

	for _, it := range cart.Items {
		fmt.Printf("%-24s %-32s ₹%d × %d = ₹%d\n",
			it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.UnitPrice*it.Quantity)
	}
	fmt.Printf("Subtotal: ₹%d\n", cart.Subtotal())
}

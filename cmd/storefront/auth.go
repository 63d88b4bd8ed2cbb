package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func signUpCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			res, err := a.client.SignUp(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if err := a.sess.SignIn(res.Token, res.User); err != nil {
				return err
			}

			fmt.Printf("Signed up as %s <%s>\n", res.User.Name, res.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 chars)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func signInCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			res, err := a.client.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.sess.SignIn(res.Token, res.User); err != nil {
				return err
			}

			fmt.Printf("Signed in as %s <%s>\n", res.User.Name, res.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and discard the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			if err := a.sess.SignOut(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

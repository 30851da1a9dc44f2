package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keepmoney/internal/config"
	apphttp "keepmoney/internal/http"
)

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var password, name, surname, email string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		Long: `Add registers the user named by --user.

Example:
  keepmoneyctl user add -u mario --password s3cret --name Mario --surname Rossi`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			u, err := a.ledger.RegisterUser(cmd.Context(), username, password, name, surname, email)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(u)
			}
			a.printf("Registered user: %s\n", u.Username)
			return nil
		},
	}
	add.Flags().StringVar(&password, "password", "", "password (required)")
	add.Flags().StringVar(&name, "name", "", "first name (required)")
	add.Flags().StringVar(&surname, "surname", "", "surname (required)")
	add.Flags().StringVar(&email, "email", "", "email address")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show a user and the stored total",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			u, err := a.ledger.User(cmd.Context(), username)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(u)
			}
			a.printf("%s %s (%s) total %s\n", u.Name, u.Surname, u.Username, u.Total)
			return nil
		},
	}

	cmd.AddCommand(add, show)
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a password and print an API token",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			u, err := a.ledger.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if len(a.cfg.JWTSecret) < config.MinJWTSecretLength {
				return fmt.Errorf("JWT_SECRET must be at least %d characters to issue tokens", config.MinJWTSecretLength)
			}
			token, expires, err := apphttp.NewTokenIssuer([]byte(a.cfg.JWTSecret), a.cfg.TokenTTL).Issue(u.Username)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(map[string]any{"token": token, "expires_at": expires})
			}
			a.printf("%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

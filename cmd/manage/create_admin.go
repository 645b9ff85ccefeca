package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var adminRequest types.RegisterRequest

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator or promote an existing account",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminRequest.Email, "email", "", "Administrator email")
	createAdminCmd.Flags().StringVar(&adminRequest.Username, "username", "", "Administrator username")
	createAdminCmd.Flags().StringVar(&adminRequest.Password, "password", "", "Administrator password")
	createAdminCmd.Flags().StringVar(&adminRequest.FirstName, "first-name", "Admin", "First name")
	createAdminCmd.Flags().StringVar(&adminRequest.LastName, "last-name", "Admin", "Last name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}

	// Token settings are irrelevant here; only account storage is used.
	auth := service.NewAuthService(db, "unused", time.Hour, nil)
	if err := auth.CreateAdmin(cmd.Context(), adminRequest); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s is ready\n", adminRequest.Email)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// defaultTags is the tag catalog a fresh installation starts with.
var defaultTags = []model.Tag{
	{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
	{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
}

const demoPassword = "demo-password"

var demoUsers = []types.RegisterRequest{
	{Email: "john.doe@example.com", Username: "johndoe", FirstName: "John", LastName: "Doe"},
	{Email: "jane.smith@example.com", Username: "janesmith", FirstName: "Jane", LastName: "Smith"},
	{Email: "bob.wilson@example.com", Username: "bobwilson", FirstName: "Bob", LastName: "Wilson"},
}

var seedDemoUsers bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default tags and, optionally, demo accounts",
	Long: `Creates the breakfast, lunch and dinner tags when they are missing.
With --demo-users a few regular accounts sharing one password are added for
local development. Existing rows are left untouched.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemoUsers, "demo-users", false, "Also create demo user accounts")
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	tags := make([]model.Tag, len(defaultTags))
	copy(tags, defaultTags)
	res := db.WithContext(cmd.Context()).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if res.Error != nil {
		return fmt.Errorf("failed to create tags: %w", res.Error)
	}
	fmt.Fprintf(out, "Created %d of %d tags\n", res.RowsAffected, len(tags))

	if !seedDemoUsers {
		return nil
	}

	auth := service.NewAuthService(db, "unused", time.Hour, nil)
	for _, req := range demoUsers {
		req.Password = demoPassword
		if _, err := auth.Register(cmd.Context(), req); err != nil {
			if errors.Is(err, service.ErrConflict) {
				fmt.Fprintf(out, "User %s already exists, skipping\n", req.Email)
				continue
			}
			return fmt.Errorf("failed to create user %s: %w", req.Email, err)
		}
		fmt.Fprintf(out, "Created user %s\n", req.Email)
	}
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "Foodgram administration commands",
	Long: `Administrative tasks that run against the configured database:
loading the ingredient catalog and creating administrator accounts.`,
	SilenceUsage: true,
}

// openDB connects to the configured database with the schema migrated.
// Tests replace it with an in-memory database.
var openDB = func() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(string(cfg.Environment), cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		return nil, err
	}
	return db, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(loadIngredientsCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(seedCmd)
}

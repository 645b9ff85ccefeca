package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/model"
)

const rollbackSuffix = "_rollback.sql"

// migrationFiles lists the forward migrations of dir in name order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

// RunMigrations brings the schema up to date. SQLite databases are migrated
// from the gorm models; Postgres databases get every SQL file of
// migrationsDir not yet recorded in the migrations table, each in its own
// transaction.
func RunMigrations(db *gorm.DB, migrationsDir string) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info().Msg("using gorm auto-migration for sqlite")
		return db.AutoMigrate(model.All()...)
	}

	files, err := migrationFiles(migrationsDir)
	if err != nil {
		return err
	}
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, name := range files {
		var count int64
		if err := db.Table("migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			log.Debug().Str("migration", name).Msg("skipping migration (already applied)")
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return err
			}
			return tx.Exec("INSERT INTO migrations (name) VALUES (?)", name).Error
		})
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("applied migration")
	}

	return nil
}

// Rollback reverts the most recently applied migration using its
// <name>_rollback.sql companion file. It returns the reverted migration.
func Rollback(db *gorm.DB, migrationsDir string) (string, error) {
	if db.Dialector.Name() == "sqlite" {
		return "", errors.New("rollback is not supported for sqlite databases")
	}
	if err := ensureMigrationsTable(db); err != nil {
		return "", fmt.Errorf("failed to create migrations table: %w", err)
	}

	var last string
	if err := db.Table("migrations").Select("name").Order("applied_at DESC, id DESC").Limit(1).Scan(&last).Error; err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}
	if last == "" {
		return "", errors.New("no migrations to rollback")
	}

	path := filepath.Join(migrationsDir, strings.TrimSuffix(last, ".sql")+rollbackSuffix)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM migrations WHERE name = ?", last).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute rollback of %s: %w", last, err)
	}
	log.Info().Str("migration", last).Msg("rolled back migration")
	return last, nil
}

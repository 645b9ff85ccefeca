package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
)

var (
	ingredientsFile   string
	ingredientsFormat string
)

var loadIngredientsCmd = &cobra.Command{
	Use:   "load-ingredients",
	Short: "Load the ingredient catalog from a CSV or XLSX file",
	Long: `Reads rows of (name, measurement unit) and inserts the ones that are
not in the catalog yet. Invalid rows are reported and skipped.`,
	RunE: runLoadIngredients,
}

func init() {
	loadIngredientsCmd.Flags().StringVar(&ingredientsFile, "file", "data/ingredients.csv", "Path to the ingredients file")
	loadIngredientsCmd.Flags().StringVar(&ingredientsFormat, "format", "", "File format: csv or xlsx (detected from the extension when empty)")
}

func runLoadIngredients(cmd *cobra.Command, args []string) error {
	format := service.ImportFormat(strings.ToLower(ingredientsFormat))
	if format == "" {
		format = service.ImportFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(ingredientsFile)), "."))
	}

	f, err := os.Open(ingredientsFile)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ingredientsFile, err)
	}
	defer f.Close()

	rows, err := service.ReadIngredientRows(f, format)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}

	result, err := service.NewIngredientImporter(db).Import(cmd.Context(), rows)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rowErr := range result.Errors {
		fmt.Fprintf(out, "row %d: %s %q %s\n", rowErr.Row, rowErr.Field, rowErr.Value, rowErr.Error)
	}
	fmt.Fprintf(out, "Loaded %d ingredients, skipped %d of %d rows\n", result.Inserted, result.Skipped, result.TotalRows)
	return nil
}

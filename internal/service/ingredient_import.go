package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/model"
	"github.com/pageza/foodgram/backend/internal/types"
)

const importBatchSize = 500

// ImportFormat is the file format of an ingredient list.
type ImportFormat string

const (
	FormatCSV  ImportFormat = "csv"
	FormatXLSX ImportFormat = "xlsx"
)

// IngredientRow is one raw (name, measurement unit) line of an import file.
type IngredientRow struct {
	Name            string
	MeasurementUnit string
}

// ReadIngredientRows reads two-column ingredient rows without a header line.
// XLSX files are read from their first sheet.
func ReadIngredientRows(r io.Reader, format ImportFormat) ([]IngredientRow, error) {
	switch format {
	case FormatCSV, "":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return toRows(records), nil
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("xlsx file has no sheets")
		}
		records, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
		}
		return toRows(records), nil
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}

func toRows(records [][]string) []IngredientRow {
	rows := make([]IngredientRow, 0, len(records))
	for _, rec := range records {
		var row IngredientRow
		if len(rec) > 0 {
			row.Name = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			row.MeasurementUnit = strings.TrimSpace(rec[1])
		}
		rows = append(rows, row)
	}
	return rows
}

// IngredientImporter loads ingredient rows into the catalog.
type IngredientImporter struct {
	db *gorm.DB
}

func NewIngredientImporter(db *gorm.DB) *IngredientImporter {
	return &IngredientImporter{db: db}
}

// Import validates every row and inserts the valid ones in one transaction.
// Rows that already exist are skipped silently.
func (i *IngredientImporter) Import(ctx context.Context, rows []IngredientRow) (*types.ImportResult, error) {
	result := &types.ImportResult{TotalRows: len(rows)}

	valid := make([]model.Ingredient, 0, len(rows))
	for n, row := range rows {
		if rowErr := checkRow(n+1, row); rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			continue
		}
		valid = append(valid, model.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit})
	}

	if len(valid) > 0 {
		err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&valid, importBatchSize)
			if res.Error != nil {
				return res.Error
			}
			result.Inserted = res.RowsAffected
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("insert ingredients: %w", err)
		}
	}

	result.Skipped = result.TotalRows - int(result.Inserted)
	metrics.IngredientsImported.Add(float64(result.Inserted))
	log.Info().
		Int("total", result.TotalRows).
		Int64("inserted", result.Inserted).
		Int("invalid", len(result.Errors)).
		Msg("ingredients imported")
	return result, nil
}

func checkRow(n int, row IngredientRow) *types.ImportRowError {
	check := func(field, value string) *types.ImportRowError {
		switch {
		case value == "":
			return &types.ImportRowError{Row: n, Field: field, Value: value, Error: "cannot be blank"}
		case utf8.RuneCountInString(value) > model.MaxNameLength:
			return &types.ImportRowError{Row: n, Field: field, Value: value, Error: fmt.Sprintf("longer than %d characters", model.MaxNameLength)}
		}
		return nil
	}
	if err := check("name", row.Name); err != nil {
		return err
	}
	return check("measurement_unit", row.MeasurementUnit)
}

package types

import "github.com/google/uuid"

type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// ImportRowError describes a rejected row of an ingredient import. Rows are 1-based.
type ImportRowError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Value string `json:"value"`
	Error string `json:"error"`
}

// ImportResult summarizes an ingredient import.
type ImportResult struct {
	TotalRows int              `json:"total_rows"`
	Inserted  int64            `json:"inserted"`
	Skipped   int              `json:"skipped"`
	Errors    []ImportRowError `json:"errors,omitempty"`
}

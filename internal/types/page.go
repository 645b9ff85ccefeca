package types

const (
	DefaultPageLimit = 6
	MaxPageLimit     = 100
)

// PageParams selects a page of a listing. Page is 1-based.
type PageParams struct {
	Page  int
	Limit int
}

// Normalize clamps the parameters to valid values.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a listing together with navigation links.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

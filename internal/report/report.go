// Package report renders aggregated shopping lists as downloadable documents.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/types"
)

const Title = "Список ингредиентов:"

// Renderer writes a shopping list in one document format.
type Renderer interface {
	Render(w io.Writer, items []types.ShoppingListItem) error
	ContentType() string
	Filename() string
}

// FormatLine renders one aggregated row as "<total> <unit>. <name>;".
func FormatLine(item types.ShoppingListItem) string {
	return fmt.Sprintf("%d %s. %s;", item.TotalAmount, item.MeasurementUnit, item.Name)
}

// ForFormat picks the renderer for a format name. An empty name means pdf.
func ForFormat(format, fontPath string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "pdf":
		return &PDFRenderer{FontPath: fontPath}, nil
	case "txt":
		return TextRenderer{}, nil
	case "xlsx":
		return XLSXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// TextRenderer writes the list as plain UTF-8 text, one item per line.
type TextRenderer struct{}

func (TextRenderer) Render(w io.Writer, items []types.ShoppingListItem) error {
	if _, err := fmt.Fprintln(w, Title); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(w, FormatLine(item)); err != nil {
			return err
		}
	}
	return nil
}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }
func (TextRenderer) Filename() string    { return "shoplist.txt" }

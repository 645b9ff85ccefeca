package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pageza/foodgram/backend/internal/types"
)

var sampleItems = []types.ShoppingListItem{
	{Name: "Мука", MeasurementUnit: "г", TotalAmount: 500},
	{Name: "Яйца", MeasurementUnit: "шт", TotalAmount: 3},
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "500 г. Мука;", FormatLine(sampleItems[0]))
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format   string
		filename string
		wantErr  bool
	}{
		{"", "shoplist.pdf", false},
		{"pdf", "shoplist.pdf", false},
		{"TXT", "shoplist.txt", false},
		{"xlsx", "shoplist.xlsx", false},
		{"doc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := ForFormat(tt.format, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.filename, r.Filename())
		})
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextRenderer{}.Render(&buf, sampleItems))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{Title, "500 г. Мука;", "3 шт. Яйца;"}, lines)
}

// renderPDF renders items with page compression off so text operators can
// be inspected in the output.
func renderPDF(t *testing.T, r *PDFRenderer, items []types.ShoppingListItem) []byte {
	t.Helper()
	fpdf.SetDefaultCompression(false)
	t.Cleanup(func() { fpdf.SetDefaultCompression(true) })

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, items))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	return buf.Bytes()
}

// utf16be is how fpdf writes text drawn with a UTF-8 font.
func utf16be(s string) []byte {
	var out []byte
	for _, u := range utf16.Encode([]rune(s)) {
		out = append(out, byte(u>>8), byte(u))
	}
	return out
}

func TestPDFRendererKeepsCyrillicWithoutFontPath(t *testing.T) {
	items := []types.ShoppingListItem{{Name: "Соль", MeasurementUnit: "г", TotalAmount: 15}}

	for _, fontPath := range []string{"", "/nonexistent/DejaVuSerif.ttf"} {
		t.Run(fontPath, func(t *testing.T) {
			out := renderPDF(t, &PDFRenderer{FontPath: fontPath}, items)

			assert.True(t, bytes.Contains(out, utf16be(Title)), "title must survive")
			assert.True(t, bytes.Contains(out, utf16be("15 г. Соль;")), "item line must survive")
		})
	}
}

func TestPDFRendererPaginates(t *testing.T) {
	items := make([]types.ShoppingListItem, 100)
	for i := range items {
		items[i] = types.ShoppingListItem{Name: "salt", MeasurementUnit: "g", TotalAmount: int64(i + 1)}
	}

	var buf bytes.Buffer
	require.NoError(t, (&PDFRenderer{}).Render(&buf, items))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestXLSXRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXRenderer{}.Render(&buf, sampleItems))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Unit", "Amount"}, rows[0])
	assert.Equal(t, []string{"Мука", "г", "500"}, rows[1])
}

package report

import (
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Layout in points from the top-left corner of an A4 page.
const (
	pageHeight   = 842.0
	bottomMargin = 50.0
	titleX       = 150.0
	titleY       = 42.0
	underlineEnd = 400.0
	itemX        = 50.0
	firstItemY   = 92.0
	topItemY     = 50.0
	lineStep     = 25.0
	fontSize     = 14.0
)

const (
	customFontFamily  = "Custom"
	bundledFontFamily = "GoRegular"
)

// PDFRenderer draws the list on A4 pages. FontPath may point to a UTF-8 TTF
// font to use instead of the bundled Go Regular face.
type PDFRenderer struct {
	FontPath string
}

func (r *PDFRenderer) Render(w io.Writer, items []types.ShoppingListItem) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	r.setFont(pdf)

	pdf.AddPage()
	pdf.Text(titleX, titleY, Title)
	pdf.Line(titleX, titleY+5, underlineEnd, titleY+5)

	y := firstItemY
	for _, item := range items {
		if y > pageHeight-bottomMargin {
			pdf.AddPage()
			y = topItemY
		}
		pdf.Text(itemX, y, FormatLine(item))
		y += lineStep
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// setFont registers the configured TTF font, falling back to the bundled
// face when FontPath is empty or unreadable. Both cover Cyrillic.
func (r *PDFRenderer) setFont(pdf *fpdf.Fpdf) {
	if r.FontPath != "" {
		pdf.AddUTF8Font(customFontFamily, "", r.FontPath)
		if pdf.Ok() {
			pdf.SetFont(customFontFamily, "", fontSize)
			return
		}
		log.Warn().Err(pdf.Error()).Str("font", r.FontPath).Msg("falling back to bundled font")
		pdf.ClearError()
	}
	pdf.AddUTF8FontFromBytes(bundledFontFamily, "", goregular.TTF)
	pdf.SetFont(bundledFontFamily, "", fontSize)
}

func (r *PDFRenderer) ContentType() string { return "application/pdf" }
func (r *PDFRenderer) Filename() string    { return "shoplist.pdf" }

package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"pmp-reports/internal/render"
)

const (
	pdfMargin     = 15.0
	pdfHeaderH    = 30.0
	pdfLineH      = 6.0
	pdfLabelWidth = 55.0
)

// utf8Family name the configured TrueType font is registered under
const utf8Family = "report"

type rgb struct{ r, g, b int }

var (
	colorInk   = rgb{15, 23, 42}
	colorMuted = rgb{100, 116, 139}
	colorRule  = rgb{226, 232, 240}
	colorWhite = rgb{255, 255, 255}
	toneColors = map[render.Tone]rgb{
		render.ToneDanger:  {220, 38, 38},
		render.ToneWarning: {217, 119, 6},
		render.ToneSuccess: {22, 163, 74},
		render.ToneNeutral: {71, 85, 105},
	}
)

func toneColor(t render.Tone) rgb {
	if c, ok := toneColors[t]; ok {
		return c
	}
	return toneColors[render.ToneNeutral]
}

// pdfWriter one slide per landscape A4 page; long slides continue on the next page
type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	family string
	doc    *document
	width  float64
}

func encodePDF(doc *document) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.generatedAt)
	pdf.SetModificationDate(doc.generatedAt)
	pdf.SetTitle(doc.title, true)
	pdf.SetCreator("pmp-reports", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)

	w := &pdfWriter{pdf: pdf, doc: doc}
	w.useFont(doc.font)
	w.width, _ = pdf.GetPageSize()

	pdf.SetFooterFunc(w.footer)
	for _, v := range doc.views {
		w.slide(v)
		if pdf.Err() {
			break
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// useFont registers font when given. Without it text goes through the core
// Helvetica font, which only covers cp1252; other characters are lost.
func (w *pdfWriter) useFont(font *PDFFont) {
	if font == nil || len(font.Regular) == 0 {
		w.family = "Helvetica"
		w.tr = w.pdf.UnicodeTranslatorFromDescriptor("")
		return
	}
	bold := font.Bold
	if len(bold) == 0 {
		bold = font.Regular
	}
	w.pdf.AddUTF8FontFromBytes(utf8Family, "", font.Regular)
	w.pdf.AddUTF8FontFromBytes(utf8Family, "I", font.Regular)
	w.pdf.AddUTF8FontFromBytes(utf8Family, "B", bold)
	w.family = utf8Family
	w.tr = func(s string) string { return s }
}

func (w *pdfWriter) setFont(style string, size float64) { w.pdf.SetFont(w.family, style, size) }

func (w *pdfWriter) setText(c rgb) { w.pdf.SetTextColor(c.r, c.g, c.b) }
func (w *pdfWriter) setFill(c rgb) { w.pdf.SetFillColor(c.r, c.g, c.b) }
func (w *pdfWriter) setDraw(c rgb) { w.pdf.SetDrawColor(c.r, c.g, c.b) }

func (w *pdfWriter) contentWidth() float64 { return w.width - 2*pdfMargin }

func (w *pdfWriter) footer() {
	pdf := w.pdf
	pdf.SetY(-12)
	w.setFont("", 8)
	w.setText(colorMuted)
	pdf.CellFormat(w.contentWidth()/2, 5, w.tr(w.doc.title), "", 0, "L", false, 0, "")
	pdf.CellFormat(w.contentWidth()/2, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
}

func (w *pdfWriter) slide(v render.View) {
	pdf := w.pdf
	pdf.AddPage()
	pdf.Bookmark(w.tr(v.Title), 0, -1)

	w.setFill(colorInk)
	pdf.Rect(0, 0, w.width, pdfHeaderH, "F")
	pdf.SetXY(pdfMargin, 8)
	w.setFont("B", 20)
	w.setText(colorWhite)
	pdf.CellFormat(w.contentWidth(), 10, w.tr(v.Title), "", 1, "L", false, 0, "")
	if v.Subtitle != "" {
		pdf.SetX(pdfMargin)
		w.setFont("", 11)
		pdf.CellFormat(w.contentWidth(), 6, w.tr(v.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.SetY(pdfHeaderH + 6)

	if v.Hero != nil {
		w.line("Featured picture", firstNonBlank(v.Hero.Caption, v.Hero.ImageURL))
		if v.Hero.Caption != "" {
			w.line("Image", v.Hero.ImageURL)
		}
		pdf.Ln(2)
	}
	for _, f := range v.Summary {
		w.line(f.Label, f.Value)
	}
	if len(v.Summary) > 0 {
		pdf.Ln(3)
	}
	for _, c := range v.Cards {
		w.card(c)
	}
	if v.Empty != "" && len(v.Cards) == 0 {
		w.setFont("I", 11)
		w.setText(colorMuted)
		pdf.MultiCell(w.contentWidth(), pdfLineH, w.tr(v.Empty), "", "L", false)
	}
	if len(v.Footer) > 0 {
		pdf.Ln(6)
		for _, f := range v.Footer {
			w.line(f.Label, f.Value)
		}
	}
}

func (w *pdfWriter) line(label, value string) {
	pdf := w.pdf
	pdf.SetX(pdfMargin)
	w.setFont("B", 10)
	w.setText(colorMuted)
	pdf.CellFormat(pdfLabelWidth, pdfLineH, w.tr(label), "", 0, "L", false, 0, "")
	w.setFont("", 10)
	w.setText(colorInk)
	pdf.MultiCell(w.contentWidth()-pdfLabelWidth, pdfLineH, w.tr(value), "", "L", false)
}

func (w *pdfWriter) card(c render.Card) {
	pdf := w.pdf
	pdf.SetX(pdfMargin)

	titleWidth := w.contentWidth()
	if c.Badge != nil {
		w.setFont("B", 9)
		bw := pdf.GetStringWidth(w.tr(c.Badge.Text)) + 6
		titleWidth -= bw + 2
		y := pdf.GetY()
		pdf.SetXY(pdfMargin+titleWidth+2, y)
		w.setFill(toneColor(c.Badge.Tone))
		w.setText(colorWhite)
		pdf.CellFormat(bw, pdfLineH, w.tr(c.Badge.Text), "", 0, "C", true, 0, "")
		pdf.SetXY(pdfMargin, y)
	}
	w.setFont("B", 12)
	w.setText(colorInk)
	pdf.MultiCell(titleWidth, pdfLineH+1, w.tr(c.Title), "", "L", false)

	if c.Subtitle != "" {
		pdf.SetX(pdfMargin)
		w.setFont("I", 10)
		w.setText(colorMuted)
		pdf.MultiCell(w.contentWidth(), pdfLineH, w.tr(c.Subtitle), "", "L", false)
	}
	for _, f := range c.Fields {
		w.line(f.Label, f.Value)
	}
	if c.ImageURL != "" {
		w.line("Image", c.ImageURL)
	}

	y := pdf.GetY() + 2
	w.setDraw(colorRule)
	pdf.Line(pdfMargin, y, w.width-pdfMargin, y)
	pdf.SetY(y + 3)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

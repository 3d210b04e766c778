package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"pmp-reports/internal/render"
)

const maxSheetName = 31

// xlsxStyles style ids shared by every sheet
type xlsxStyles struct {
	title  int
	label  int
	header int
	muted  int
	tones  map[render.Tone]int
}

func newXLSXStyles(f *excelize.File) (*xlsxStyles, error) {
	var (
		s   = &xlsxStyles{tones: map[render.Tone]int{}}
		err error
	)
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16, Color: hexColor(colorInk)}}); err != nil {
		return nil, err
	}
	if s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: hexColor(colorMuted)}}); err != nil {
		return nil, err
	}
	if s.muted, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: hexColor(colorMuted)}}); err != nil {
		return nil, err
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	for _, tone := range []render.Tone{render.ToneDanger, render.ToneWarning, render.ToneSuccess, render.ToneNeutral} {
		id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: hexColor(toneColor(tone))}})
		if err != nil {
			return nil, err
		}
		s.tones[tone] = id
	}
	return s, nil
}

// encodeXLSX one sheet per slide, in deck order
func encodeXLSX(doc *document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	ts := doc.generatedAt.Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:          doc.title,
		Creator:        "pmp-reports",
		LastModifiedBy: "pmp-reports",
		Created:        ts,
		Modified:       ts,
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	names := SheetNames(doc.views)
	for i, v := range doc.views {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", names[i]); err != nil {
				return nil, fmt.Errorf("failed to rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(names[i]); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", names[i], err)
		}
		if err := writeSheet(f, names[i], v, styles); err != nil {
			return nil, fmt.Errorf("failed to write sheet %q: %w", names[i], err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows top-down
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) set(col int, value string, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	return w.f.SetCellStyle(w.sheet, cell, cell, style)
}

func (w *sheetWriter) pair(label, value string, st *xlsxStyles) error {
	if err := w.set(1, label, st.label); err != nil {
		return err
	}
	if err := w.set(2, value, 0); err != nil {
		return err
	}
	w.row++
	return nil
}

func writeSheet(f *excelize.File, sheet string, v render.View, st *xlsxStyles) error {
	w := &sheetWriter{f: f, sheet: sheet, row: 1}
	if err := w.set(1, v.Title, st.title); err != nil {
		return err
	}
	w.row++
	if v.Subtitle != "" {
		if err := w.set(1, v.Subtitle, st.muted); err != nil {
			return err
		}
		w.row++
	}
	w.row++

	if v.Hero != nil {
		if err := w.pair("Featured picture", firstNonBlank(v.Hero.Caption, v.Hero.ImageURL), st); err != nil {
			return err
		}
		if v.Hero.Caption != "" {
			if err := w.pair("Image", v.Hero.ImageURL, st); err != nil {
				return err
			}
		}
	}
	for _, fl := range v.Summary {
		if err := w.pair(fl.Label, fl.Value, st); err != nil {
			return err
		}
	}
	for _, fl := range v.Footer {
		if err := w.pair(fl.Label, fl.Value, st); err != nil {
			return err
		}
	}

	if len(v.Cards) > 0 {
		if w.row > 3 {
			w.row++
		}
		if err := writeCards(w, v.Cards, st); err != nil {
			return err
		}
	} else if v.Empty != "" {
		if err := w.set(1, v.Empty, st.muted); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "H", 22)
}

// writeCards card table; field columns are the union of field labels in first-seen order
func writeCards(w *sheetWriter, cards []render.Card, st *xlsxStyles) error {
	var (
		labels   []string
		column   = map[string]int{}
		hasSub   bool
		hasBadge bool
		hasImage bool
	)
	for _, c := range cards {
		hasSub = hasSub || c.Subtitle != ""
		hasBadge = hasBadge || c.Badge != nil
		hasImage = hasImage || c.ImageURL != ""
		for _, fl := range c.Fields {
			if _, ok := column[fl.Label]; !ok {
				column[fl.Label] = -1
				labels = append(labels, fl.Label)
			}
		}
	}

	header := []string{"Title"}
	subCol, badgeCol, imageCol := 0, 0, 0
	if hasSub {
		header = append(header, "Details")
		subCol = len(header)
	}
	if hasBadge {
		header = append(header, "Status")
		badgeCol = len(header)
	}
	for _, l := range labels {
		header = append(header, l)
		column[l] = len(header)
	}
	if hasImage {
		header = append(header, "Image")
		imageCol = len(header)
	}

	headerRow := w.row
	for i, h := range header {
		if err := w.set(i+1, h, st.header); err != nil {
			return err
		}
	}
	w.row++

	for _, c := range cards {
		if err := w.set(1, c.Title, 0); err != nil {
			return err
		}
		if subCol > 0 && c.Subtitle != "" {
			if err := w.set(subCol, c.Subtitle, 0); err != nil {
				return err
			}
		}
		if badgeCol > 0 && c.Badge != nil {
			if err := w.set(badgeCol, c.Badge.Text, st.tones[c.Badge.Tone]); err != nil {
				return err
			}
		}
		for _, fl := range c.Fields {
			if err := w.set(column[fl.Label], fl.Value, 0); err != nil {
				return err
			}
		}
		if imageCol > 0 && c.ImageURL != "" {
			if err := w.set(imageCol, c.ImageURL, 0); err != nil {
				return err
			}
		}
		w.row++
	}

	top := fmt.Sprintf("A%d", headerRow+1)
	return w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: top,
		ActivePane:  "bottomLeft",
	})
}

// SheetNames one valid, unique worksheet name per view
func SheetNames(views []render.View) []string {
	seen := map[string]bool{}
	out := make([]string, len(views))
	for i, v := range views {
		base := sheetName(v.Title)
		name := base
		for n := 2; seen[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
		}
		seen[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}

func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, title)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Slide"
	}
	return truncateRunes(name, maxSheetName)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

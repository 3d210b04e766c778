package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/render"
	"pmp-reports/internal/slides"
)

// Format export file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "pdf", "pptx"/"ppt" and "xlsx"/"excel", case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "pptx", "ppt", "powerpoint":
		return FormatPPTX, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidRequest, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Input everything an encoder needs; encoders never fetch anything themselves
type Input struct {
	Project  domain.Project
	Snapshot *domain.ReportSnapshot
	Month    int
	Year     int

	// Font optional TrueType font for PDF text beyond Western European scripts
	Font *PDFFont
}

// PDFFont TrueType font data embedded into PDF exports
type PDFFont struct {
	Regular []byte
	Bold    []byte // optional, Regular is used when empty
}

// LoadPDFFont reads the font files. An empty regular path returns nil, nil
// and PDFs fall back to the built-in cp1252 font.
func LoadPDFFont(regularPath, boldPath string) (*PDFFont, error) {
	if strings.TrimSpace(regularPath) == "" {
		return nil, nil
	}
	regular, err := os.ReadFile(regularPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF font: %w", err)
	}
	font := &PDFFont{Regular: regular}
	if strings.TrimSpace(boldPath) != "" {
		if font.Bold, err = os.ReadFile(boldPath); err != nil {
			return nil, fmt.Errorf("failed to read PDF bold font: %w", err)
		}
	}
	return font, nil
}

// Artifact finished export document
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Slides      []slides.Kind
}

// document is what every encoder consumes
type document struct {
	title       string
	period      domain.Period
	projectCode string
	generatedAt time.Time
	views       []render.View
	font        *PDFFont
}

type encoder func(doc *document) ([]byte, error)

var encoders = map[Format]encoder{
	FormatPDF:  encodePDF,
	FormatPPTX: encodePPTX,
	FormatXLSX: encodeXLSX,
}

// fallbackTime used when a snapshot carries no generation time
var fallbackTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Encode renders the report deck into format. Data is only returned when the
// whole document was written.
func Encode(format Format, in Input) (*Artifact, error) {
	enc, ok := encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidRequest, format)
	}
	period := domain.Period{Month: in.Month, Year: in.Year}
	if !period.Valid() {
		return nil, fmt.Errorf("%w: invalid report period %d/%d", domain.ErrInvalidRequest, in.Month, in.Year)
	}

	// shallow copy, the sections are only read
	var snap domain.ReportSnapshot
	if in.Snapshot != nil {
		snap = *in.Snapshot
	}
	if in.Project.ProjectID != "" || in.Project.ProjectName != "" {
		snap.Project = in.Project
	}

	deck := slides.Generate(&snap, period)
	doc := &document{
		title:       reportTitle(snap.Project, period),
		period:      period,
		projectCode: snap.Project.ProjectCode,
		generatedAt: snap.GeneratedAt.UTC(),
		views:       render.LayoutDeck(deck),
		font:        in.Font,
	}
	if snap.GeneratedAt.IsZero() || doc.generatedAt.Before(fallbackTime) {
		doc.generatedAt = fallbackTime
	}

	data, err := enc(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s export: %w", format, err)
	}
	return &Artifact{
		Filename:    Filename(snap.Project.ProjectCode, period, format),
		ContentType: format.ContentType(),
		Data:        data,
		Slides:      slides.Kinds(deck),
	}, nil
}

// Filename e.g. "PRJ-001_Report_March_2025.pdf"
func Filename(projectCode string, period domain.Period, format Format) string {
	code := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(projectCode))
	if code == "" {
		code = "Project"
	}
	return fmt.Sprintf("%s_Report_%s_%d.%s", code, period.MonthName(), period.Year, format)
}

func reportTitle(p domain.Project, period domain.Period) string {
	name := strings.TrimSpace(p.ProjectName)
	if name == "" {
		name = "Monthly Progress Report"
	}
	return name + " - " + period.Label()
}

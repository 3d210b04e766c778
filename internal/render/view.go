package render

import (
	"fmt"
	"strings"

	"pmp-reports/internal/slides"
)

// Tone badge colour class
type Tone string

const (
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
	ToneSuccess Tone = "success"
	ToneNeutral Tone = "neutral"
)

var toneByValue = map[string]Tone{
	"high":        ToneDanger,
	"very high":   ToneDanger,
	"critical":    ToneDanger,
	"open":        ToneDanger,
	"overdue":     ToneDanger,
	"failed":      ToneDanger,
	"fail":        ToneDanger,
	"delayed":     ToneDanger,
	"medium":      ToneWarning,
	"moderate":    ToneWarning,
	"in progress": ToneWarning,
	"pending":     ToneWarning,
	"partial":     ToneWarning,
	"on hold":     ToneWarning,
	"low":         ToneSuccess,
	"closed":      ToneSuccess,
	"completed":   ToneSuccess,
	"complete":    ToneSuccess,
	"done":        ToneSuccess,
	"approved":    ToneSuccess,
	"pass":        ToneSuccess,
	"passed":      ToneSuccess,
	"on track":    ToneSuccess,
}

// ToneFor maps a status/impact value to a tone, case-insensitively
func ToneFor(value string) Tone {
	v := strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(value)), " "))
	if t, ok := toneByValue[v]; ok {
		return t
	}
	return ToneNeutral
}

// Badge status pill on a card
type Badge struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

func badge(value slides.Text) *Badge {
	if value == "" {
		return nil
	}
	return &Badge{Text: string(value), Tone: ToneFor(string(value))}
}

// Card one list item
type Card struct {
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	Badge    *Badge         `json:"badge,omitempty"`
	Fields   []slides.Field `json:"fields,omitempty"`
	ImageURL string         `json:"imageUrl,omitempty"`
}

// Hero cover image
type Hero struct {
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption,omitempty"`
}

// View layout of one slide, shared by every output (HTML, terminal, PDF, PPTX, XLSX)
type View struct {
	Kind     slides.Kind    `json:"kind"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	Hero     *Hero          `json:"hero,omitempty"`
	Footer   []slides.Field `json:"footer,omitempty"`
	Summary  []slides.Field `json:"summary,omitempty"`
	Cards    []Card         `json:"cards,omitempty"`
	Empty    string         `json:"empty,omitempty"`
}

// Layout lays out one slide. Missing optional fields are left out.
func Layout(s slides.Slide) View {
	v := View{Kind: s.Kind(), Title: s.Title()}

	switch sl := s.(type) {
	case *slides.CoverSlide:
		v.Subtitle = joinNonEmpty(" | ", sl.ProjectCode, sl.ClientName, sl.Period)
		if sl.FeaturedPicture != nil && sl.FeaturedPicture.URL != "" {
			v.Hero = &Hero{ImageURL: string(sl.FeaturedPicture.URL), Caption: string(sl.FeaturedPicture.Caption)}
		}
		v.Footer = []slides.Field{
			{Key: "projectManager", Label: "Project Manager", Value: sl.ProjectManagerName},
			{Key: "projectDirector", Label: "Project Director", Value: sl.ProjectDirectorName},
		}

	case *slides.OverviewSlide:
		v.Subtitle = sl.Period
		v.Summary = overviewFields(sl)
		for _, c := range sl.Contacts {
			card := Card{
				Title:    c.Name,
				Subtitle: joinNonEmpty(", ", c.Position, c.Organization),
				Fields:   fields("role", c.Role, "email", c.Email, "phone", c.Phone),
			}
			if c.IsPrimary {
				card.Badge = &Badge{Text: "Primary", Tone: ToneNeutral}
			}
			v.Cards = append(v.Cards, card)
		}
		v.Empty = emptyIf(len(v.Cards), "No contacts recorded")

	case *slides.PlanningSlide:
		v.Summary = sl.Summary
		for _, m := range sl.Milestones {
			v.Cards = append(v.Cards, Card{
				Title:  string(m.Name),
				Badge:  badge(m.Status),
				Fields: fields("plannedDate", m.PlannedDate, "forecastDate", m.ForecastDate, "actualDate", m.ActualDate, "remarks", m.Remarks),
			})
		}
		v.Empty = emptyIf(len(v.Cards)+len(v.Summary), "No planning data recorded")

	case *slides.QualitySlide:
		v.Summary = sl.Summary
		for _, q := range sl.Items {
			v.Cards = append(v.Cards, Card{
				Title:    string(q.Title),
				Subtitle: string(q.Category),
				Badge:    badge(q.Status),
				Fields:   fields("date", q.Date, "remarks", q.Remarks),
			})
		}
		v.Empty = emptyIf(len(v.Cards)+len(v.Summary), "No quality records")

	case *slides.RisksSlide:
		v.Summary = sl.Summary
		for _, r := range sl.Risks {
			b := badge(r.Impact)
			if b == nil {
				b = badge(r.Status)
			}
			v.Cards = append(v.Cards, Card{
				Title:  string(r.RiskItem),
				Badge:  b,
				Fields: fields("likelihood", r.Likelihood, "owner", r.Owner, "mitigation", r.Mitigation, "status", statusIfNotBadge(r.Status, b), "remarks", r.Remarks),
			})
		}
		v.Empty = emptyIf(len(v.Cards), "No risks recorded")

	case *slides.AreaOfConcernsSlide:
		v.Summary = sl.Summary
		for _, c := range sl.Concerns {
			b := badge(c.Priority)
			if b == nil {
				b = badge(c.Status)
			}
			v.Cards = append(v.Cards, Card{
				Title:    string(c.Concern),
				Subtitle: string(c.Area),
				Badge:    b,
				Fields:   fields("actionRequired", c.ActionRequired, "responsible", c.Responsible, "dueDate", c.DueDate, "status", statusIfNotBadge(c.Status, b), "remarks", c.Remarks),
			})
		}
		v.Empty = emptyIf(len(v.Cards), "No areas of concern recorded")

	case *slides.HSESlide:
		v.Summary = sl.Summary
		for _, i := range sl.Incidents {
			b := badge(i.Severity)
			if b == nil {
				b = badge(i.Status)
			}
			v.Cards = append(v.Cards, Card{
				Title:  string(i.Title),
				Badge:  b,
				Fields: fields("date", i.Date, "status", statusIfNotBadge(i.Status, b), "remarks", i.Remarks),
			})
		}
		v.Empty = emptyIf(len(v.Cards)+len(v.Summary), "No HSE data recorded")

	case *slides.ChecklistSlide:
		for _, c := range sl.Items {
			v.Cards = append(v.Cards, Card{
				Title:    string(c.Item),
				Subtitle: string(c.Category),
				Badge:    badge(c.Status),
				Fields:   fields("remarks", c.Remarks),
			})
		}

	case *slides.StaffSlide:
		for _, d := range sl.Designations {
			names := make([]string, 0, len(d.Staff))
			for _, m := range d.Staff {
				if m.Name != "" {
					names = append(names, string(m.Name))
				}
			}
			card := Card{Title: string(d.Designation)}
			if len(names) == 0 {
				card.Fields = []slides.Field{{Key: "staff", Label: "Staff", Value: "Unassigned"}}
			} else {
				card.Fields = []slides.Field{{Key: "staff", Label: "Staff", Value: strings.Join(names, ", ")}}
			}
			v.Cards = append(v.Cards, card)
		}

	case *slides.LaboursSlide:
		for _, l := range sl.Labours {
			v.Cards = append(v.Cards, Card{
				Title:  string(l.Trade),
				Fields: fields("planned", l.Planned, "actual", l.Actual, "remarks", l.Remarks),
			})
		}

	case *slides.LabourSupplySlide:
		for _, l := range sl.Entries {
			v.Cards = append(v.Cards, Card{
				Title:    string(l.Supplier),
				Subtitle: string(l.Trade),
				Badge:    badge(l.Status),
				Fields:   fields("quantity", l.Quantity, "startDate", l.StartDate, "endDate", l.EndDate, "remarks", l.Remarks),
			})
		}

	case *slides.PlantsSlide:
		for _, p := range sl.Plants {
			v.Cards = append(v.Cards, Card{
				Title:    string(p.Name),
				Subtitle: string(p.Type),
				Badge:    badge(p.Status),
				Fields:   fields("quantity", p.Quantity, "remarks", p.Remarks),
			})
		}

	case *slides.AssetsSlide:
		for _, a := range sl.Assets {
			v.Cards = append(v.Cards, Card{
				Title:    string(a.Name),
				Subtitle: string(a.Category),
				Badge:    badge(a.Status),
				Fields:   fields("quantity", a.Quantity, "location", a.Location, "remarks", a.Remarks),
			})
		}

	case *slides.PicturesSlide:
		for _, p := range sl.Pictures {
			card := Card{Title: string(p.Caption), ImageURL: string(p.URL)}
			if p.IsFeatured {
				card.Badge = &Badge{Text: "Featured", Tone: ToneNeutral}
			}
			v.Cards = append(v.Cards, card)
		}

	case *slides.CloseOutSlide:
		for _, c := range sl.Items {
			v.Cards = append(v.Cards, Card{
				Title:  string(c.Item),
				Badge:  badge(c.Status),
				Fields: fields("responsible", c.Responsible, "dueDate", c.DueDate, "remarks", c.Remarks),
			})
		}

	case *slides.ClientFeedbackSlide:
		v.Summary = sl.Summary
		for _, f := range sl.Entries {
			v.Cards = append(v.Cards, Card{
				Title:    firstNonEmpty(string(f.Author), "Client"),
				Subtitle: string(f.Date),
				Badge:    badge(f.Status),
				Fields:   fields("rating", f.Rating, "comment", f.Comment),
			})
		}
		v.Empty = emptyIf(len(v.Cards)+len(v.Summary), "No client feedback recorded")
	}

	for i := range v.Cards {
		if v.Cards[i].Title == "" {
			v.Cards[i].Title = "Untitled"
		}
	}
	return v
}

// LayoutDeck lays out every slide
func LayoutDeck(deck []slides.Slide) []View {
	out := make([]View, len(deck))
	for i, s := range deck {
		out[i] = Layout(s)
	}
	return out
}

func overviewFields(sl *slides.OverviewSlide) []slides.Field {
	p := sl.Project
	out := []slides.Field{}
	add := func(key, label, value string) {
		if strings.TrimSpace(value) != "" {
			out = append(out, slides.Field{Key: key, Label: label, Value: value})
		}
	}
	add("projectCode", "Project Code", p.ProjectCode)
	add("projectName", "Project Name", p.ProjectName)
	if p.Client != nil {
		add("client", "Client", p.Client.Name)
	}
	add("description", "Description", p.Description)
	if p.ProjectDirector != nil {
		add("projectDirector", "Project Director", p.ProjectDirector.Name)
	}
	if p.ProjectManager != nil {
		add("projectManager", "Project Manager", p.ProjectManager.Name)
	}
	for _, c := range p.Consultants {
		add("consultant", fmt.Sprintf("%s Consultant", firstNonEmpty(c.Type, "Other")), c.Name)
	}
	add("startDate", "Start Date", p.StartDate)
	add("endDate", "End Date", p.EndDate)
	add("duration", "Duration", p.Duration)
	if p.ProjectValue != nil {
		add("projectValue", "Project Value", FormatAmount(*p.ProjectValue))
	}
	add("status", "Status", p.Status)
	return out
}

// FormatAmount 1250000.5 -> "1,250,000.50"
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// fields builds key/value pairs, dropping empty values
func fields(kv ...any) []slides.Field {
	var out []slides.Field
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		var value string
		switch v := kv[i+1].(type) {
		case slides.Text:
			value = string(v)
		case string:
			value = v
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		out = append(out, slides.Field{Key: key, Label: slides.Humanize(key), Value: value})
	}
	return out
}

// statusIfNotBadge status shown as a field only when the badge shows something else
func statusIfNotBadge(status slides.Text, b *Badge) slides.Text {
	if b != nil && b.Text == string(status) {
		return ""
	}
	return status
}

func emptyIf(n int, msg string) string {
	if n == 0 {
		return msg
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

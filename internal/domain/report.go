package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportSnapshot aggregate document for one (project, month, year).
// Sections hold the raw shape returned by their sub-resource and are nil when absent.
type ReportSnapshot struct {
	Project  Project          `json:"project"`
	Contacts []ProjectContact `json:"contacts"`

	Planning       json.RawMessage `json:"planning,omitempty"`
	Quality        json.RawMessage `json:"quality,omitempty"`
	Risks          json.RawMessage `json:"risks,omitempty"`
	AreaOfConcerns json.RawMessage `json:"areaOfConcerns,omitempty"`
	HSE            json.RawMessage `json:"hse,omitempty"`
	Checklist      json.RawMessage `json:"checklist,omitempty"`
	Staff          json.RawMessage `json:"staff,omitempty"`
	Labours        json.RawMessage `json:"labours,omitempty"`
	LabourSupply   json.RawMessage `json:"labourSupply,omitempty"`
	Plants         json.RawMessage `json:"plants,omitempty"`
	Assets         json.RawMessage `json:"assets,omitempty"`
	Pictures       json.RawMessage `json:"pictures,omitempty"`
	CloseOut       json.RawMessage `json:"closeOut,omitempty"`
	ClientFeedback json.RawMessage `json:"clientFeedback,omitempty"`

	GeneratedAt time.Time `json:"generatedAt"`
}

func (s *ReportSnapshot) field(name SectionName) *json.RawMessage {
	switch name {
	case SectionPlanning:
		return &s.Planning
	case SectionQuality:
		return &s.Quality
	case SectionRisks:
		return &s.Risks
	case SectionAreaOfConcerns:
		return &s.AreaOfConcerns
	case SectionHSE:
		return &s.HSE
	case SectionChecklist:
		return &s.Checklist
	case SectionStaff:
		return &s.Staff
	case SectionLabours:
		return &s.Labours
	case SectionLabourSupply:
		return &s.LabourSupply
	case SectionPlants:
		return &s.Plants
	case SectionAssets:
		return &s.Assets
	case SectionPictures:
		return &s.Pictures
	case SectionCloseOut:
		return &s.CloseOut
	case SectionClientFeedback:
		return &s.ClientFeedback
	}
	return nil
}

// Section returns the raw payload of name, nil when absent
func (s *ReportSnapshot) Section(name SectionName) json.RawMessage {
	if f := s.field(name); f != nil {
		return *f
	}
	return nil
}

// SetSection stores data under name; null or empty data clears the section
func (s *ReportSnapshot) SetSection(name SectionName, data json.RawMessage) {
	f := s.field(name)
	if f == nil {
		return
	}
	if IsNullJSON(data) {
		*f = nil
		return
	}
	*f = data
}

// HasSection reports whether name is present (non-null)
func (s *ReportSnapshot) HasSection(name SectionName) bool {
	return !IsNullJSON(s.Section(name))
}

// IsNullJSON true for empty input or a JSON null literal
func IsNullJSON(data json.RawMessage) bool {
	t := bytes.TrimSpace(data)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Period reporting month (1-12) and year
type Period struct {
	Month int `json:"reportMonth"`
	Year  int `json:"reportYear"`
}

// Valid month within 1..12 and a plausible year
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000 && p.Year <= 2100
}

// MonthName English month name, "" for an invalid month
func (p Period) MonthName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return time.Month(p.Month).String()
}

// Label e.g. "March 2025"
func (p Period) Label() string {
	return strings.TrimSpace(fmt.Sprintf("%s %d", p.MonthName(), p.Year))
}

// StoredReport persisted wrapper around a snapshot.
// ReportData is kept as opaque JSON; it is never updated in place.
type StoredReport struct {
	ReportID    string          `json:"id"`
	ProjectID   string          `json:"projectId"`
	UserID      string          `json:"userId"`
	ReportMonth int             `json:"reportMonth"`
	ReportYear  int             `json:"reportYear"`
	Version     int             `json:"version"`
	ReportData  json.RawMessage `json:"reportData,omitempty"`
	ShareToken  *string         `json:"shareToken"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	Project ProjectRef `json:"project"`
	User    *UserRef   `json:"user,omitempty"`
	Latest  bool       `json:"latest"`
}

// Period of the report
func (r *StoredReport) Period() Period {
	return Period{Month: r.ReportMonth, Year: r.ReportYear}
}

// Snapshot decodes ReportData; callers get their own copy
func (r *StoredReport) Snapshot() (*ReportSnapshot, error) {
	if IsNullJSON(r.ReportData) {
		return nil, fmt.Errorf("report %s has no report data", r.ReportID)
	}
	var snap ReportSnapshot
	if err := json.Unmarshal(r.ReportData, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode report data of %s: %w", r.ReportID, err)
	}
	return &snap, nil
}

// ShareURL public link for a share token
func ShareURL(origin, token string) string {
	return strings.TrimRight(origin, "/") + "/share/report/" + token
}
